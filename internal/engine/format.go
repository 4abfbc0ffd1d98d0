package engine

import (
	"fmt"
	"strings"
)

// Format identifies one of the supported archive container formats.
type Format int

const (
	FormatZip Format = iota + 1
	FormatTar
	FormatSevenZip
)

// Formats lists every supported format in a stable order.
var Formats = []Format{FormatZip, FormatTar, FormatSevenZip}

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTar:
		return "tar"
	case FormatSevenZip:
		return "7z"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatZip:
		return ".zip"
	case FormatTar:
		return ".tar"
	case FormatSevenZip:
		return ".7z"
	default:
		return ""
	}
}

// MediaType returns the MIME type registered for the format.
func (f Format) MediaType() string {
	switch f {
	case FormatZip:
		return "application/zip"
	case FormatTar:
		return "application/x-tar"
	case FormatSevenZip:
		return "application/x-7z-compressed"
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	switch f {
	case FormatZip, FormatTar, FormatSevenZip:
		return true
	default:
		return false
	}
}

func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFormat, int(f))
	}
	return []byte(f.String()), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFormat parses a format name such as "zip", "tar", "7z" or ".7z".
func ParseFormat(name string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "zip":
		return FormatZip, nil
	case "tar":
		return FormatTar, nil
	case "7z", "sevenz", "sevenzip":
		return FormatSevenZip, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatFromExtension maps a file extension (with the dot) to a format.
func FormatFromExtension(ext string) (Format, bool) {
	for _, f := range Formats {
		if strings.EqualFold(f.Extension(), ext) {
			return f, true
		}
	}
	return 0, false
}
