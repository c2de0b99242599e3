// Package ipfs archives transactions as raw blocks in a local Kubo repo by
// driving the "ipfs" CLI. No daemon is needed.
package ipfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ipfs/go-cid"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
)

// putArgs store a block under the archive's CID parameters (CIDv1, raw
// codec, sha2-256), so a transaction ID is also its IPFS block CID.
var putArgs = []string{"block", "put", "--quiet", "--cid-codec=raw", "--mhtype=sha2-256", "--mhlen=32"}

// CAS is a storage.CAS over the Kubo block commands.
type CAS struct {
	bin     string
	env     []string
	timeout time.Duration
}

var _ storage.CAS = (*CAS)(nil)

type Options struct {
	// Bin is the ipfs binary; "ipfs" on PATH when empty.
	Bin string
	// Repo, when set, is exported as IPFS_PATH.
	Repo string
	// Env adds variables to every command's environment.
	Env []string
	// Timeout bounds each command when non-zero.
	Timeout time.Duration
}

func New(opts Options) *CAS {
	c := &CAS{bin: opts.Bin, timeout: opts.Timeout}
	if c.bin == "" {
		c.bin = "ipfs"
	}
	c.env = append(os.Environ(), opts.Env...)
	if opts.Repo != "" {
		c.env = append(c.env, "IPFS_PATH="+opts.Repo)
	}
	return c
}

func (c *CAS) Put(b []byte) (cid.Cid, error) {
	want, err := cidutil.Sum(b)
	if err != nil {
		return cid.Undef, err
	}
	out, err := c.exec(b, putArgs...)
	if err != nil {
		return cid.Undef, err
	}
	got, err := cid.Decode(strings.TrimSpace(string(out)))
	if err != nil {
		return cid.Undef, fmt.Errorf("ipfs: block put printed %q: %w", bytes.TrimSpace(out), err)
	}
	if !got.Equals(want) {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return want, nil
}

func (c *CAS) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := c.exec(nil, "block", "get", id.String())
	if err != nil {
		return nil, err
	}
	if err := storage.Verify(id, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (c *CAS) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := c.exec(nil, "block", "stat", "--offline", id.String())
	return err == nil
}

// exec runs one ipfs command. A failure whose stderr says the block is
// missing is reported as storage.ErrNotFound.
func (c *CAS) exec(stdin []byte, args ...string) ([]byte, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, c.bin, args...)
	cmd.Env = c.env
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	msg := strings.TrimSpace(stderr.String())
	var exitErr *exec.ExitError
	switch {
	case !errors.As(err, &exitErr):
		return nil, fmt.Errorf("ipfs %s: %w", args[1], err)
	case strings.Contains(strings.ToLower(msg), "not found"):
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, msg)
	case msg != "":
		return nil, fmt.Errorf("ipfs %s: %s", args[1], msg)
	default:
		return nil, fmt.Errorf("ipfs %s: %w", args[1], err)
	}
}
