package value

import (
	"path/filepath"
	"strings"
)

// Format tags which codec parses and emits a file's bytes.
type Format int

const (
	Unknown Format = iota
	JSON
	YAML
	TOML
	INI
	Text
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	case INI:
		return "ini"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Structured reports whether the format is parsed into a structured Value
// (Map/Seq/scalar) as opposed to a single opaque Str.
func (f Format) Structured() bool {
	switch f {
	case JSON, YAML, TOML, INI:
		return true
	default:
		return false
	}
}

// DetectFormat infers a file's format from its extension. Unknown
// extensions fall back to Text, matching spec.md's "unknown ⇒ Text" rule.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	case ".ini", ".cfg":
		return INI
	default:
		return Text
	}
}

// ParseError reports a format-specific parse failure. The codecs in this
// package set Format and Reason only: Offset is left at 0 (the library's
// own message in Reason may carry a position), and no file path is
// recorded.
type ParseError struct {
	Format Format
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return e.Format.String() + " parse error at offset " + itoa(e.Offset) + ": " + e.Reason
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
