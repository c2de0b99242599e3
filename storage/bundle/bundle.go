// Package bundle moves archived transactions between archives as a
// deterministic TAR file.
//
// Layout:
//
//	transactions/<cid>   archived transaction bytes
//	index.json           optional, non-authoritative summary
package bundle

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
)

// FormatVersion is the current bundle index schema version.
const FormatVersion = 1

const txDir = "transactions/"

var epoch0 = time.Unix(0, 0).UTC()

type ExportOptions struct {
	// IncludeIndex controls whether index.json is written.
	IncludeIndex bool
}

// Export writes the transactions ids to w. Entry order is lexicographic and
// TAR headers are normalized, so equal inputs give equal bundles. Every
// object must decode as a finalized transaction.
func Export(w io.Writer, a *storage.Archive, ids []cid.Cid, opts ExportOptions) error {
	if a == nil || a.CAS == nil {
		return fmt.Errorf("bundle: nil archive")
	}

	uniq := make(map[string]cid.Cid, len(ids))
	for _, id := range ids {
		if !id.Defined() {
			return storage.ErrInvalidCID
		}
		uniq[id.String()] = id
	}
	names := make([]string, 0, len(uniq))
	for s := range uniq {
		names = append(names, s)
	}
	sort.Strings(names)

	tw := tar.NewWriter(w)
	entries := make([]indexEntry, 0, len(names))
	for _, s := range names {
		b, actions, err := loadChecked(a, uniq[s])
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeFile(tw, txDir+s, b); err != nil {
			_ = tw.Close()
			return err
		}
		entries = append(entries, indexEntry{ID: s, Size: len(b), Actions: actions})
	}

	if opts.IncludeIndex {
		b, err := json.Marshal(index{Version: FormatVersion, Transactions: entries})
		if err != nil {
			_ = tw.Close()
			return err
		}
		if err := writeFile(tw, "index.json", append(b, '\n')); err != nil {
			_ = tw.Close()
			return err
		}
	}
	return tw.Close()
}

func loadChecked(a *storage.Archive, id cid.Cid) ([]byte, int, error) {
	b, err := a.CAS.Get(id)
	if err != nil {
		return nil, 0, err
	}
	if err := storage.Verify(id, b); err != nil {
		return nil, 0, err
	}
	tx, err := storage.Check(b)
	if err != nil {
		return nil, 0, fmt.Errorf("bundle: %s: %w", id, err)
	}
	return b, len(tx.Actions), nil
}

type ImportOptions struct {
	// IgnoreUnknown skips unknown TAR entries instead of failing.
	IgnoreUnknown bool
}

// Import reads a bundle from r into a and returns the imported IDs in bundle
// order. Each entry must match the CID in its name and decode as a finalized
// transaction.
func Import(r io.Reader, a *storage.Archive, opts ImportOptions) ([]cid.Cid, error) {
	if a == nil || a.CAS == nil {
		return nil, fmt.Errorf("bundle: nil archive")
	}

	tr := tar.NewReader(r)
	seen := map[string]struct{}{}
	var ids []cid.Cid
	for {
		h, err := tr.Next()
		if err == io.EOF {
			return ids, nil
		}
		if err != nil {
			return ids, err
		}
		name := cleanTarPath(h.Name)
		if name == "" {
			return ids, fmt.Errorf("bundle: invalid entry path: %q", h.Name)
		}
		if h.Typeflag != tar.TypeReg {
			if opts.IgnoreUnknown {
				continue
			}
			return ids, fmt.Errorf("bundle: unexpected tar entry type: %v (%s)", h.Typeflag, name)
		}
		if name == "index.json" {
			_, _ = io.Copy(io.Discard, tr)
			continue
		}
		if !strings.HasPrefix(name, txDir) {
			if opts.IgnoreUnknown {
				_, _ = io.Copy(io.Discard, tr)
				continue
			}
			return ids, fmt.Errorf("bundle: unknown entry: %s", name)
		}

		id, err := cidutil.Parse(strings.TrimPrefix(name, txDir))
		if err != nil {
			return ids, storage.ErrInvalidCID
		}
		if _, ok := seen[id.String()]; ok {
			return ids, fmt.Errorf("bundle: duplicate entry: %s", id)
		}
		seen[id.String()] = struct{}{}

		payload, err := io.ReadAll(tr)
		if err != nil {
			return ids, err
		}
		if err := storage.Verify(id, payload); err != nil {
			return ids, err
		}
		if _, err := a.StoreEncoded(payload); err != nil {
			return ids, fmt.Errorf("bundle: %s: %w", id, err)
		}
		ids = append(ids, id)
	}
}

type index struct {
	Version      int          `json:"version"`
	Transactions []indexEntry `json:"transactions"`
}

type indexEntry struct {
	ID      string `json:"id"`
	Size    int    `json:"size"`
	Actions int    `json:"actions"`
}

func writeFile(tw *tar.Writer, name string, content []byte) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(content)),
		ModTime:  epoch0,
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := io.Copy(tw, bytes.NewReader(content))
	return err
}

func cleanTarPath(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		return ""
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ""
		}
	}
	return name
}
