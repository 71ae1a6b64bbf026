package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase/internal/core"
)

func TestCharacterRoundTrip(t *testing.T) {
	raw, status := core.EncodeCharacter("hello", 10, core.CodepageWindowsANSI, false)
	require.Equal(t, core.StatusOK, status)
	require.Len(t, raw, 10)
	require.Equal(t, "hello", core.DecodeCharacter(raw, core.CodepageWindowsANSI, false))
}

func TestCharacterOverflow(t *testing.T) {
	_, status := core.EncodeCharacter("too long for field", 5, core.CodepageWindowsANSI, false)
	require.Equal(t, core.StatusOverflow, status)
}

func TestNumericRoundTripAndEmpty(t *testing.T) {
	raw, status := core.EncodeNumeric(42.5, 10, 2)
	require.Equal(t, core.StatusOK, status)
	nv := core.DecodeNumeric(raw)
	require.False(t, nv.Empty)
	require.False(t, nv.Overflow)
	require.InDelta(t, 42.5, nv.Value, 0.0001)

	empty := core.DecodeNumeric([]byte("          "))
	require.True(t, empty.Empty)
}

func TestNumericOverflow(t *testing.T) {
	_, status := core.EncodeNumeric(99999999999, 4, 0)
	require.Equal(t, core.StatusOverflow, status)
}

func TestIntegerRoundTrip(t *testing.T) {
	raw := core.EncodeInteger(-12345)
	require.Equal(t, int32(-12345), core.DecodeInteger(raw))
}

func TestDateRoundTripAndEmpty(t *testing.T) {
	d := core.NewDate(2024, time.March, 15)
	raw := core.EncodeDate(d)
	got := core.DecodeDate(raw)
	require.True(t, got.Valid())
	require.Equal(t, 2024, got.Time().Year())

	blank := core.DecodeDate([]byte("        "))
	require.False(t, blank.Valid())
}

func TestDateTimeRoundTrip(t *testing.T) {
	ts := time.Date(2024, time.March, 15, 13, 45, 30, 0, time.UTC)
	dt := core.NewDateTime(ts)
	raw := core.EncodeDateTime(dt)
	got := core.DecodeDateTime(raw)
	require.True(t, got.Valid())
	require.Equal(t, ts.Unix(), got.Time().Unix())
}

func TestLogicalRoundTrip(t *testing.T) {
	for _, v := range []core.Logical{core.LogicalTrue, core.LogicalFalse, core.LogicalUnknown} {
		raw := core.EncodeLogical(v)
		got, status := core.DecodeLogical(raw)
		require.Equal(t, core.StatusOK, status)
		require.Equal(t, v, got)
	}
}

func TestDecodeLogicalRejectsBadByte(t *testing.T) {
	_, status := core.DecodeLogical([]byte{'X'})
	require.Equal(t, core.StatusBadData, status)
}

func TestMemoBlockDbaseVsVFP(t *testing.T) {
	raw := core.EncodeMemoBlock(7, 10, core.DBaseIII)
	require.Equal(t, int32(7), core.DecodeMemoBlock(raw, core.DBaseIII))

	raw2 := core.EncodeMemoBlock(7, 4, core.VisualFoxPro)
	require.Equal(t, int32(7), core.DecodeMemoBlock(raw2, core.VisualFoxPro))
}
