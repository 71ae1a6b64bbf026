package core

import "encoding/binary"

// DB3MemoBlockSize is the fixed block size of the dBase III/IV/Clipper .dbt
// memo file. Unlike the Visual FoxPro dialect, this block size is not
// configurable.
const DB3MemoBlockSize = 512

const db3MemoTerminator = 0x1A

// DB3MemoStore is the dBase III/IV/Clipper .dbt memo allocator: a 512-byte
// header holding the next free block number, followed by 512-byte blocks.
// Content within a block is terminated by two 0x1A bytes; content spanning
// more than one block simply continues past the terminator search into
// consecutive blocks until it is found, the scheme grounded on the
// teacher's readMemoContent.
type DB3MemoStore struct {
	file         memoFile
	nextFree     uint32
	headerDirty  bool
}

// OpenDB3MemoStore reads the 512-byte .dbt header from an existing file.
func OpenDB3MemoStore(f memoFile) (*DB3MemoStore, Status) {
	var hdr [512]byte
	n, err := f.ReadAt(hdr[:4], 0)
	if err != nil || n < 4 {
		return nil, StatusIO
	}
	return &DB3MemoStore{
		file:     f,
		nextFree: binary.LittleEndian.Uint32(hdr[:4]),
	}, StatusOK
}

// CreateDB3MemoStore initializes a new, empty .dbt file: block 0 reserved
// for the header, block 1 is the first free block.
func CreateDB3MemoStore(f memoFile) (*DB3MemoStore, Status) {
	s := &DB3MemoStore{file: f, nextFree: 1, headerDirty: true}
	if status := s.flushHeader(); status != StatusOK {
		return nil, status
	}
	return s, StatusOK
}

func (s *DB3MemoStore) BlockSize() int { return DB3MemoBlockSize }

func (s *DB3MemoStore) Read(block int32) ([]byte, Status) {
	if block <= 0 {
		return nil, StatusOK
	}
	offset := int64(block) * DB3MemoBlockSize
	var content []byte
	buf := make([]byte, DB3MemoBlockSize)
	havePending := false
	var pending byte
	for {
		n, err := s.file.ReadAt(buf, offset)
		if err != nil && n == 0 {
			return nil, StatusIO
		}
		chunk := buf[:n]
		// The terminator is two consecutive 0x1A bytes, which may straddle
		// a block boundary: carry the previous chunk's last byte forward
		// so that pair is still detected when it opens this chunk.
		if havePending && n > 0 && pending == db3MemoTerminator && chunk[0] == db3MemoTerminator {
			return content[:len(content)-1], StatusOK
		}
		if idx := indexOfTerminator(chunk); idx >= 0 {
			content = append(content, chunk[:idx]...)
			return content, StatusOK
		}
		content = append(content, chunk...)
		offset += int64(n)
		if n > 0 {
			pending = chunk[n-1]
			havePending = true
		}
		if n < DB3MemoBlockSize {
			return content, StatusOK
		}
	}
}

func indexOfTerminator(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == db3MemoTerminator && b[i+1] == db3MemoTerminator {
			return i
		}
	}
	return -1
}

func (s *DB3MemoStore) Write(content []byte) (int32, Status) {
	block := int32(s.nextFree)
	payload := append(append([]byte{}, content...), db3MemoTerminator, db3MemoTerminator)
	blocksUsed := (len(payload) + DB3MemoBlockSize - 1) / DB3MemoBlockSize
	if blocksUsed == 0 {
		blocksUsed = 1
	}
	padded := make([]byte, blocksUsed*DB3MemoBlockSize)
	copy(padded, payload)
	offset := int64(block) * DB3MemoBlockSize
	if _, err := s.file.WriteAt(padded, offset); err != nil {
		return 0, StatusIO
	}
	s.nextFree += uint32(blocksUsed)
	s.headerDirty = true
	if status := s.flushHeader(); status != StatusOK {
		return 0, status
	}
	return block, StatusOK
}

func (s *DB3MemoStore) flushHeader() Status {
	if !s.headerDirty {
		return StatusOK
	}
	var hdr [512]byte
	binary.LittleEndian.PutUint32(hdr[:4], s.nextFree)
	if _, err := s.file.WriteAt(hdr[:], 0); err != nil {
		return StatusIO
	}
	s.headerDirty = false
	return StatusOK
}

func (s *DB3MemoStore) Close() error {
	if status := s.flushHeader(); status != StatusOK {
		return statusError(status)
	}
	return s.file.Sync()
}
