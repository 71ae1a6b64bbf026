package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase/internal/core"
)

func TestWriteHeaderThenParseHeaderRoundTrip(t *testing.T) {
	fields := []core.FieldDescriptor{
		{Name: "NAME", Type: core.Character, Length: 20},
		{Name: "QTY", Type: core.Numeric, Length: 8, Decimals: 2},
	}
	core.AssignOffsets(fields)
	hdr := &core.Header{
		VersionByte:  core.VersionForDialect(core.VisualFoxPro, false),
		Dialect:      core.VisualFoxPro,
		LastUpdate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		RecordCount:  7,
		HeaderLength: core.ComputeHeaderLength(core.VisualFoxPro, len(fields)),
		RecordLength: uint16(core.RecordLength(fields)),
		Codepage:     core.CodepageWindowsANSI,
	}

	buf := core.WriteHeader(hdr, fields)
	require.Equal(t, int(hdr.HeaderLength), len(buf))

	parsed, parsedFields, total, status := core.ParseHeader(buf)
	require.Equal(t, core.StatusOK, status)
	require.Equal(t, hdr.RecordCount, parsed.RecordCount)
	require.Equal(t, hdr.RecordLength, parsed.RecordLength)
	require.Equal(t, core.VisualFoxPro, parsed.Dialect)
	require.Equal(t, 2024, parsed.LastUpdate.Year())
	require.Equal(t, total, int(hdr.HeaderLength))

	require.Len(t, parsedFields, 2)
	require.Equal(t, "NAME", parsedFields[0].Name)
	require.Equal(t, core.Character, parsedFields[0].Type)
	require.Equal(t, 20, parsedFields[0].Length)
	require.Equal(t, "QTY", parsedFields[1].Name)
	require.Equal(t, 2, parsedFields[1].Decimals)
}

func TestParseHeaderRejectsShortBuffer(t *testing.T) {
	_, _, _, status := core.ParseHeader([]byte{0x03, 0x01})
	require.Equal(t, core.StatusData, status)
}

func TestParseHeaderRejectsUnknownVersionByte(t *testing.T) {
	buf := make([]byte, 40)
	buf[0] = 0xFE
	_, _, _, status := core.ParseHeader(buf)
	require.Equal(t, core.StatusData, status)
}
