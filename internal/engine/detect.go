package engine

import (
	"github.com/gabriel-vasile/mimetype"
)

// Detect classifies buf by its magic signature. Containers derived from zip
// (jar, docx, epub, ...) are reported as FormatZip.
func Detect(buf []byte) (Format, error) {
	if len(buf) == 0 {
		return 0, ErrUnrecognizedFormat
	}

	for m := mimetype.Detect(buf); m != nil; m = m.Parent() {
		if f, ok := FormatFromExtension(m.Extension()); ok {
			return f, nil
		}
	}

	return 0, ErrUnrecognizedFormat
}
