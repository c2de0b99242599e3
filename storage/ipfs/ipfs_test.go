package ipfs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"anoma.net/arm/cidutil"
	"anoma.net/arm/storage"
	"anoma.net/arm/storage/testkit"
)

// fakeIPFS implements the three block commands over a directory. It answers
// "block put" with $FAKE_CID, since a shell cannot compute CIDs.
const fakeIPFS = `#!/bin/sh
case "$1 $2" in
"block put")
	echo "$@" > "$FAKE_STORE/.put-args"
	cat > "$FAKE_STORE/$FAKE_CID"
	echo "$FAKE_CID"
	;;
"block get")
	if [ -f "$FAKE_STORE/$3" ]; then cat "$FAKE_STORE/$3"; else echo "Error: block not found locally" >&2; exit 1; fi
	;;
"block stat")
	[ -f "$FAKE_STORE/$4" ] || { echo "Error: block not found locally" >&2; exit 1; }
	;;
*)
	echo "unsupported: $*" >&2; exit 2
	;;
esac
`

func newFake(t *testing.T, claimedCID string) (*CAS, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake ipfs binary is a shell script")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "ipfs")
	require.NoError(t, os.WriteFile(bin, []byte(fakeIPFS), 0o755))
	store := filepath.Join(dir, "store")
	require.NoError(t, os.MkdirAll(store, 0o755))
	return New(Options{Bin: bin, Env: []string{"FAKE_STORE=" + store, "FAKE_CID=" + claimedCID}}), store
}

func TestPutGetHas(t *testing.T) {
	data := testkit.Object(t, 1)
	id, err := cidutil.Sum(data)
	require.NoError(t, err)
	c, store := newFake(t, id.String())

	require.False(t, c.Has(id))
	_, err = c.Get(id)
	require.ErrorIs(t, err, storage.ErrNotFound)

	got, err := c.Put(data)
	require.NoError(t, err)
	require.Equal(t, id, got)
	require.True(t, c.Has(id))
	args, err := os.ReadFile(filepath.Join(store, ".put-args"))
	require.NoError(t, err)
	require.Contains(t, string(args), "--cid-codec=raw")

	b, err := c.Get(id)
	require.NoError(t, err)
	require.Equal(t, data, b)
}

func TestPut_RejectsWrongCID(t *testing.T) {
	other, err := cidutil.Sum([]byte("other"))
	require.NoError(t, err)
	c, _ := newFake(t, other.String())
	_, err = c.Put([]byte("data"))
	require.ErrorIs(t, err, storage.ErrCIDMismatch)
}

func TestGet_RejectsTamperedBlock(t *testing.T) {
	id, err := cidutil.Sum([]byte("original"))
	require.NoError(t, err)
	c, store := newFake(t, id.String())
	require.NoError(t, os.WriteFile(filepath.Join(store, id.String()), []byte("tampered"), 0o644))
	_, err = c.Get(id)
	require.ErrorIs(t, err, storage.ErrCIDMismatch)
}

func TestMissingBinary(t *testing.T) {
	c := New(Options{Bin: filepath.Join(t.TempDir(), "no-such-ipfs")})
	id, err := cidutil.Sum([]byte("x"))
	require.NoError(t, err)
	require.False(t, c.Has(id))
	_, err = c.Put([]byte("x"))
	require.Error(t, err)
}

func TestArchiveOverIPFS(t *testing.T) {
	tx := testkit.Transaction(2)
	id, err := storage.TransactionID(tx)
	require.NoError(t, err)
	c, _ := newFake(t, id.String())

	a := storage.NewArchive(c)
	got, err := a.Store(tx)
	require.NoError(t, err)
	require.Equal(t, id, got)
	loaded, err := a.Load(id)
	require.NoError(t, err)
	require.Equal(t, tx, loaded)
}
