package xbase

import "github.com/mkfoss/xbase/internal/core"

// Config holds process-wide defaults for opening and creating tables. It
// replaces the mutable module-level codepage/locale state the original
// design notes flagged, with an explicit struct passed at construction
// instead.
type Config struct {
	// Dialect is used by CreateTable when the caller passes
	// core.DialectUnknown.
	Dialect core.Dialect

	// Codepage is the configured default codepage. CreateTable always uses
	// its codepage argument and OpenTable always uses the codepage byte
	// stored in the header (0x00 included); neither reads this field.
	Codepage core.Codepage

	// Logger receives warning/info diagnostics. A nil Logger is replaced
	// with a no-op sink.
	Logger Logger

	// StrictFieldNames makes RenameField reject a non-standard new name
	// (characters outside A-Z0-9_, a leading '_' or digit, or more than 10
	// characters) with a FieldSpecError instead of accepting it with a
	// logged warning. CreateTable and AddFields do not check names against
	// this rule.
	StrictFieldNames bool

	// RejectNonASCII is the default input-decoding policy for character
	// field bytes: when set, and the table's codepage is CodepageDefault
	// ("no translation"), a decoded Character byte with the high bit set
	// raises NonUnicodeError instead of being passed through unchanged.
	// Memo payloads are not checked.
	RejectNonASCII bool

	// BackupDir is the directory CreateBackup writes to. Empty means next
	// to the table file, the original's only documented behavior.
	BackupDir string

	// LenientLogical makes an unrecognized logical byte decode to
	// core.LogicalUnknown instead of raising BadDataError.
	LenientLogical bool

	// VFPMemoBlockSizeMultiplier is CreateTable's default block-size
	// multiplier for a new Visual FoxPro/FoxPro2 .fpt memo file, used when
	// the caller doesn't request a specific one: 0 means 1 byte per block,
	// 1..32 means that many 512-byte units per block.
	VFPMemoBlockSizeMultiplier uint16
}

// DefaultConfig returns the engine's default configuration: Visual FoxPro
// dialect, Windows ANSI codepage, a no-op logger, lenient field names.
func DefaultConfig() Config {
	return Config{
		Dialect:          core.VisualFoxPro,
		Codepage:         core.CodepageWindowsANSI,
		Logger:           noopLogger{},
		StrictFieldNames: false,
	}
}

func (c Config) logger() Logger {
	if c.Logger == nil {
		return noopLogger{}
	}
	return c.Logger
}
