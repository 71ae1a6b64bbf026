package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase/internal/core"
)

func tempMemoFile(t *testing.T, name string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestDB3MemoRoundTrip(t *testing.T) {
	f := tempMemoFile(t, "notes.dbt")
	store, status := core.CreateDB3MemoStore(f)
	require.Equal(t, core.StatusOK, status)

	block, status := store.Write([]byte("first memo content"))
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, int32(1), block)

	block2, status := store.Write([]byte("second, longer than one block would need to be for a real test"))
	require.Equal(t, core.StatusOK, status)
	require.NotEqual(t, block, block2)

	got, status := store.Read(block)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, "first memo content", string(got))

	got2, status := store.Read(block2)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, "second, longer than one block would need to be for a real test", string(got2))
}

func TestDB3MemoReopenPreservesNextFree(t *testing.T) {
	f := tempMemoFile(t, "notes.dbt")
	store, status := core.CreateDB3MemoStore(f)
	require.Equal(t, core.StatusOK, status)
	block, status := store.Write([]byte("persisted"))
	require.Equal(t, core.StatusOK, status)
	require.NoError(t, store.Close())

	f2, err := os.OpenFile(f.Name(), os.O_RDWR, 0644)
	require.NoError(t, err)
	defer f2.Close()
	reopened, status := core.OpenDB3MemoStore(f2)
	require.Equal(t, core.StatusOK, status)

	got, status := reopened.Read(block)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, "persisted", string(got))

	next, status := reopened.Write([]byte("after reopen"))
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, block+1, next)
}

func TestVFPMemoRoundTrip(t *testing.T) {
	f := tempMemoFile(t, "notes.fpt")
	store, status := core.CreateVFPMemoStore(f, 4)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, 4*core.VFPMemoBlockSizeUnit, store.BlockSize())

	block, status := store.Write([]byte("vfp memo payload"))
	require.Equal(t, core.StatusOK, status)

	got, status := store.Read(block)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, "vfp memo payload", string(got))
}

func TestVFPMemoDefaultBlockSizeIsOneByte(t *testing.T) {
	f := tempMemoFile(t, "default.fpt")
	store, status := core.CreateVFPMemoStore(f, 0)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, core.VFPMemoDefaultBlockSize, store.BlockSize())
	require.Equal(t, 1, store.BlockSize())
}

func TestDB3MemoTerminatorSplitAcrossBlockBoundary(t *testing.T) {
	f := tempMemoFile(t, "split.dbt")
	store, status := core.CreateDB3MemoStore(f)
	require.Equal(t, core.StatusOK, status)

	// 511 content bytes puts the terminator's first 0x1A as the block's
	// last byte and its second 0x1A as the next block's first byte.
	content := make([]byte, core.DB3MemoBlockSize-1)
	for i := range content {
		content[i] = 'x'
	}
	block, status := store.Write(content)
	require.Equal(t, core.StatusOK, status)

	got, status := store.Read(block)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, content, got)
}
