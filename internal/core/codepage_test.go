package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkfoss/xbase/internal/core"
)

func TestCodepageByNameResolvesShortAndLongForm(t *testing.T) {
	cp, ok := core.CodepageByName("cp1252")
	require.True(t, ok)
	require.Equal(t, core.CodepageWindowsANSI, cp)

	cp, ok = core.CodepageByName("windows ansi")
	require.True(t, ok)
	require.Equal(t, core.CodepageWindowsANSI, cp)

	_, ok = core.CodepageByName("no-such-codepage")
	require.False(t, ok)
}

func TestCodepageDecodeEncodeRoundTripsEveryByteValue(t *testing.T) {
	raw := make([]byte, 256)
	for i := range raw {
		raw[i] = byte(i)
	}
	cp := core.CodepageWindowsANSI
	require.Equal(t, raw, cp.Encode(cp.Decode(raw)))
}

func TestCodepageStringFallsBackOnUnknownID(t *testing.T) {
	require.Equal(t, "Unknown Codepage", core.Codepage(0xFF).String())
}
