package core

import (
	"fmt"
	"time"
)

const (
	primaryHeaderSize  = 32
	fieldDescriptorSize = 32
	trailerSize         = 263
	fieldTerminator     = 0x0D
	fileEOFMarker       = 0x1A
)

// Header is the parsed 32-byte primary header.
type Header struct {
	VersionByte  byte
	Dialect      Dialect
	HasMemo      bool
	LastUpdate   time.Time // year/month/day only
	RecordCount  uint32
	HeaderLength uint16
	RecordLength uint16
	TableFlags   byte // VFP only
	Codepage     Codepage
}

// ParseHeader decodes the primary header and the field-descriptor block
// (terminated by 0x0D). buf must contain at least the header and
// field-descriptor bytes. The returned length includes the dialect
// trailer's size when the dialect has one; the trailer bytes themselves
// are neither read nor required to be in buf.
func ParseHeader(buf []byte) (*Header, []FieldDescriptor, int, Status) {
	if len(buf) < primaryHeaderSize {
		return nil, nil, 0, StatusData
	}
	versionByte := buf[0]
	dialect, hasMemo, ok := DialectFromVersion(versionByte)
	if !ok {
		return nil, nil, 0, StatusData
	}
	year := int(buf[1])
	if year < 80 {
		year += 2000
	} else {
		year += 1900
	}
	month := time.Month(buf[2])
	day := int(buf[3])

	hdr := &Header{
		VersionByte:  versionByte,
		Dialect:      dialect,
		HasMemo:      hasMemo,
		LastUpdate:   safeDate(year, month, day),
		RecordCount:  getUint32LE(buf[4:8]),
		HeaderLength: getUint16LE(buf[8:10]),
		RecordLength: getUint16LE(buf[10:12]),
		TableFlags:   buf[28],
		Codepage:     Codepage(buf[29]),
	}

	fields, consumed, status := parseFieldDescriptors(buf[primaryHeaderSize:], dialect)
	if status != StatusOK {
		return nil, nil, 0, status
	}
	total := primaryHeaderSize + consumed
	if dialect.HasTrailer() {
		total += trailerSize
	}
	return hdr, fields, total, StatusOK
}

func safeDate(year int, month time.Month, day int) time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// parseFieldDescriptors reads consecutive 32-byte descriptors until the
// 0x0D terminator. It tolerates a descriptor block whose length is not an
// exact multiple of 32 as long as the terminator is found at a 32-byte
// boundary, per §4.4's "read" tolerance note.
func parseFieldDescriptors(buf []byte, d Dialect) ([]FieldDescriptor, int, Status) {
	var fields []FieldDescriptor
	offset := 0
	recOffset := 1
	for {
		if offset >= len(buf) {
			return nil, 0, StatusData
		}
		if buf[offset] == fieldTerminator {
			offset++
			return fields, offset, StatusOK
		}
		if offset+fieldDescriptorSize > len(buf) {
			return nil, 0, StatusData
		}
		raw := buf[offset : offset+fieldDescriptorSize]
		fd := FieldDescriptor{
			Name:     trimFieldName(raw[0:11]),
			Type:     FieldType(raw[11]),
			Length:   int(raw[16]),
			Decimals: int(raw[17]),
			Flags:    FieldFlag(raw[18]),
		}
		if !fd.Type.Valid() {
			return nil, 0, StatusData
		}
		if d.UsesStoredFieldOffsets() {
			fd.Start = int(getUint32LE(raw[12:16]))
		} else {
			fd.Start = recOffset
		}
		recOffset += fd.Length
		fields = append(fields, fd)
		offset += fieldDescriptorSize
	}
}

func trimFieldName(raw []byte) string {
	end := 0
	for end < len(raw) && raw[end] != 0 {
		end++
	}
	return string(raw[:end])
}

// WriteHeader emits the primary header, field-descriptor block, 0x0D
// terminator, and (if the dialect requires one) a zeroed trailer.
func WriteHeader(hdr *Header, fields []FieldDescriptor) []byte {
	headerLen := primaryHeaderSize + len(fields)*fieldDescriptorSize + 1
	if hdr.Dialect.HasTrailer() {
		headerLen += trailerSize
	}
	out := make([]byte, headerLen)

	out[0] = hdr.VersionByte
	y := hdr.LastUpdate.Year()
	if y >= 2000 {
		out[1] = byte(y - 2000)
	} else if y >= 1900 {
		out[1] = byte(y - 1900)
	}
	out[2] = byte(hdr.LastUpdate.Month())
	out[3] = byte(hdr.LastUpdate.Day())
	putUint32LE(out[4:8], hdr.RecordCount)
	putUint16LE(out[8:10], hdr.HeaderLength)
	putUint16LE(out[10:12], hdr.RecordLength)
	out[28] = hdr.TableFlags
	out[29] = byte(hdr.Codepage)

	pos := primaryHeaderSize
	for _, fd := range fields {
		desc := out[pos : pos+fieldDescriptorSize]
		copy(desc[0:11], []byte(fd.Name))
		desc[11] = byte(fd.Type)
		if hdr.Dialect.UsesStoredFieldOffsets() {
			putUint32LE(desc[12:16], uint32(fd.Start))
		}
		desc[16] = byte(fd.Length)
		desc[17] = byte(fd.Decimals)
		desc[18] = byte(fd.Flags)
		pos += fieldDescriptorSize
	}
	out[pos] = fieldTerminator
	pos++
	// trailer bytes (if any) are left zeroed: no retrieved source documents
	// semantic content beyond its 263-byte size.
	return out
}

// ComputeHeaderLength returns the header length WriteHeader's output will
// occupy for a given dialect and field count, used before the header's own
// bytes exist yet (to size the first record's file offset during create).
func ComputeHeaderLength(d Dialect, numFields int) uint16 {
	n := primaryHeaderSize + numFields*fieldDescriptorSize + 1
	if d.HasTrailer() {
		n += trailerSize
	}
	return uint16(n)
}

func (fd FieldDescriptor) String() string {
	return fmt.Sprintf("%-10s %c(%d,%d)", fd.Name, fd.Type, fd.Length, fd.Decimals)
}
