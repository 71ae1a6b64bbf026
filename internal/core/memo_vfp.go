package core

import "encoding/binary"

// VFPMemoDefaultBlockSize is the on-disk block size used when a stored or
// requested block-size multiplier is 0: one byte per block, per the
// documented creation rule.
const VFPMemoDefaultBlockSize = 1

// VFPMemoBlockSizeUnit is the unit a non-zero block-size multiplier (1..32)
// is scaled by: requesting multiplier m yields a block size of m*512 bytes.
const VFPMemoBlockSizeUnit = 512

// VFPMemoMaxBlockSizeMultiplier is the largest accepted multiplier; values
// above this are clamped.
const VFPMemoMaxBlockSizeMultiplier = 32

// vfpBlockSizeFromMultiplier converts a caller-supplied block-size
// multiplier (as documented: 0 means 1 byte per block, 1..32 means that
// many 512-byte units) into the actual on-disk block size.
func vfpBlockSizeFromMultiplier(multiplier uint16) uint16 {
	if multiplier == 0 {
		return VFPMemoDefaultBlockSize
	}
	if multiplier > VFPMemoMaxBlockSizeMultiplier {
		multiplier = VFPMemoMaxBlockSizeMultiplier
	}
	return multiplier * VFPMemoBlockSizeUnit
}

const (
	vfpMemoTypeText  uint32 = 1
	vfpMemoTypePicture uint32 = 0
)

// VFPMemoStore is the Visual FoxPro .fpt memo allocator. The file begins
// with a 512-byte header (next-free-block counter and block size, both
// big-endian, at offsets 0 and 6) followed by fixed-size blocks. Each memo
// occupies one or more consecutive blocks; the first block of a memo
// carries an 8-byte record header (big-endian type, big-endian length) in
// front of its content, distinguishing this dialect from dBase III's
// terminator-delimited scheme.
type VFPMemoStore struct {
	file        memoFile
	nextFree    uint32
	blockSize   uint16
	headerDirty bool
}

func OpenVFPMemoStore(f memoFile) (*VFPMemoStore, Status) {
	var hdr [512]byte
	n, err := f.ReadAt(hdr[:8], 0)
	if err != nil || n < 8 {
		return nil, StatusIO
	}
	bs := binary.BigEndian.Uint16(hdr[6:8])
	if bs == 0 {
		bs = VFPMemoDefaultBlockSize
	}
	return &VFPMemoStore{
		file:      f,
		nextFree:  binary.BigEndian.Uint32(hdr[:4]),
		blockSize: bs,
	}, StatusOK
}

// CreateVFPMemoStore initializes a new .fpt file. blockSizeMultiplier is
// the documented creation knob: 0 defaults to 1 byte per block, 1..32
// multiplies 512 to get the actual block size.
func CreateVFPMemoStore(f memoFile, blockSizeMultiplier uint16) (*VFPMemoStore, Status) {
	blockSize := vfpBlockSizeFromMultiplier(blockSizeMultiplier)
	// The first free block is the first one wholly past the 512-byte header.
	firstFree := (512 + uint32(blockSize) - 1) / uint32(blockSize)
	s := &VFPMemoStore{file: f, nextFree: firstFree, blockSize: blockSize, headerDirty: true}
	if status := s.flushHeader(); status != StatusOK {
		return nil, status
	}
	return s, StatusOK
}

func (s *VFPMemoStore) BlockSize() int { return int(s.blockSize) }

func (s *VFPMemoStore) Read(block int32) ([]byte, Status) {
	if block <= 0 {
		return nil, StatusOK
	}
	offset := int64(block) * int64(s.blockSize)
	var recHdr [8]byte
	if _, err := s.file.ReadAt(recHdr[:], offset); err != nil {
		return nil, StatusIO
	}
	length := binary.BigEndian.Uint32(recHdr[4:8])
	content := make([]byte, length)
	if length > 0 {
		if _, err := s.file.ReadAt(content, offset+8); err != nil {
			return nil, StatusIO
		}
	}
	return content, StatusOK
}

func (s *VFPMemoStore) Write(content []byte) (int32, Status) {
	return s.writeTyped(content, vfpMemoTypeText)
}

func (s *VFPMemoStore) writeTyped(content []byte, memoType uint32) (int32, Status) {
	block := int32(s.nextFree)
	total := 8 + len(content)
	blocksUsed := (total + int(s.blockSize) - 1) / int(s.blockSize)
	if blocksUsed == 0 {
		blocksUsed = 1
	}
	buf := make([]byte, blocksUsed*int(s.blockSize))
	binary.BigEndian.PutUint32(buf[0:4], memoType)
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(content)))
	copy(buf[8:], content)

	offset := int64(block) * int64(s.blockSize)
	if _, err := s.file.WriteAt(buf, offset); err != nil {
		return 0, StatusIO
	}
	s.nextFree += uint32(blocksUsed)
	s.headerDirty = true
	if status := s.flushHeader(); status != StatusOK {
		return 0, status
	}
	return block, StatusOK
}

func (s *VFPMemoStore) flushHeader() Status {
	if !s.headerDirty {
		return StatusOK
	}
	var hdr [512]byte
	binary.BigEndian.PutUint32(hdr[:4], s.nextFree)
	binary.BigEndian.PutUint16(hdr[6:8], s.blockSize)
	if _, err := s.file.WriteAt(hdr[:], 0); err != nil {
		return StatusIO
	}
	s.headerDirty = false
	return StatusOK
}

func (s *VFPMemoStore) Close() error {
	if status := s.flushHeader(); status != StatusOK {
		return statusError(status)
	}
	return s.file.Sync()
}
