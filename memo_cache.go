package xbase

import "github.com/mkfoss/xbase/internal/core"

// memoryMemoStore serves previously-materialized memo block contents from
// an in-memory cache, implementing core.MemoStore for a table kept alive
// read-only after Close(keepMemos=true). It never allocates new blocks.
type memoryMemoStore struct {
	blocks    map[int32][]byte
	blockSize int
}

func (m *memoryMemoStore) Read(block int32) ([]byte, core.Status) {
	if block <= 0 {
		return nil, core.StatusOK
	}
	content, ok := m.blocks[block]
	if !ok {
		return nil, core.StatusNotFound
	}
	return content, core.StatusOK
}

func (m *memoryMemoStore) Write([]byte) (int32, core.Status) {
	return 0, core.StatusIO
}

func (m *memoryMemoStore) BlockSize() int { return m.blockSize }

func (m *memoryMemoStore) Close() error { return nil }
