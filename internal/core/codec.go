package core

import "encoding/binary"

// Byte-level helpers shared by the header and field codecs. Kept as plain
// functions over []byte, the same level the teacher's F4Double/F4DateTime
// byte-packing operated at, generalized from one dialect to all four.

func putUint16LE(b []byte, v uint16) { binary.LittleEndian.PutUint16(b, v) }
func getUint16LE(b []byte) uint16    { return binary.LittleEndian.Uint16(b) }

func putUint32LE(b []byte, v uint32) { binary.LittleEndian.PutUint32(b, v) }
func getUint32LE(b []byte) uint32    { return binary.LittleEndian.Uint32(b) }

func putUint32BE(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func getUint32BE(b []byte) uint32    { return binary.BigEndian.Uint32(b) }

func putUint16BE(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func getUint16BE(b []byte) uint16    { return binary.BigEndian.Uint16(b) }

// padSpaces right-pads (or truncates) src to exactly n bytes using ASCII
// spaces, the fill byte for character and ASCII-numeric field types.
func padSpaces(src []byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	copy(out, src)
	return out
}

// leftPadSpaces right-aligns src within n bytes, space-filling the left.
func leftPadSpaces(src []byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = ' '
	}
	if len(src) > n {
		src = src[len(src)-n:]
	}
	copy(out[n-len(src):], src)
	return out
}

func isAllBytes(b []byte, c byte) bool {
	for _, x := range b {
		if x != c {
			return false
		}
	}
	return true
}

func trimTrailingSpaces(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return b[:end]
}

func trimTrailingWhitespace(b []byte) []byte {
	end := len(b)
	for end > 0 {
		c := b[end-1]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == 0 {
			end--
			continue
		}
		break
	}
	return b[:end]
}
