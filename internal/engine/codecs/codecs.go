// Package codecs adapts the zip, tar and 7z codec libraries to the shared
// entry model.
package codecs

import (
	"fmt"
	"io"
	"time"

	"github.com/chrontax/cra/internal/engine"
	"go.uber.org/zap"
)

// Options configures the codec adapters. The zero value is usable: it
// selects the default methods, the wall clock, the process owner and no
// entry size limit.
type Options struct {
	Logger         *zap.Logger
	Clock          func() time.Time
	Owner          *Owner
	ZipMethod      ZipMethod
	SevenZipMethod SevenZipMethod
	// MaxEntrySize limits the decoded size of a single file entry. Zero means
	// unlimited.
	MaxEntrySize int64
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) now() time.Time {
	if o.Clock == nil {
		return time.Now()
	}
	return o.Clock()
}

// For returns the codec for format.
func For(format engine.Format, opts Options) (engine.Codec, error) {
	switch format {
	case engine.FormatZip:
		return NewZipCodec(opts), nil
	case engine.FormatTar:
		return NewTarCodec(opts), nil
	case engine.FormatSevenZip:
		return NewSevenZipCodec(opts), nil
	default:
		return nil, fmt.Errorf("%w: %d", engine.ErrUnknownFormat, int(format))
	}
}

// checkDeclaredSize rejects an entry whose declared size exceeds the limit
// before any content is read.
func (o Options) checkDeclaredSize(format engine.Format, name string, size uint64) error {
	if o.MaxEntrySize > 0 && size > uint64(o.MaxEntrySize) {
		return &engine.IOError{
			Format: format,
			Name:   name,
			Err:    fmt.Errorf("%w: declared size %d exceeds limit of %d bytes", engine.ErrEntryTooLarge, size, o.MaxEntrySize),
		}
	}
	return nil
}

// readContent reads an entry's content to the end, enforcing the size limit
// on the bytes actually produced as well.
func (o Options) readContent(format engine.Format, name string, r io.Reader, sizeHint uint64) ([]byte, error) {
	if o.MaxEntrySize > 0 {
		r = io.LimitReader(r, o.MaxEntrySize+1)
	}

	buf := make([]byte, 0, capacityHint(sizeHint, o.MaxEntrySize))
	data, err := readAll(r, buf)
	if err != nil {
		return nil, &engine.IOError{Format: format, Name: name, Err: err}
	}

	if o.MaxEntrySize > 0 && int64(len(data)) > o.MaxEntrySize {
		return nil, &engine.IOError{
			Format: format,
			Name:   name,
			Err:    fmt.Errorf("%w: content exceeds limit of %d bytes", engine.ErrEntryTooLarge, o.MaxEntrySize),
		}
	}

	return data, nil
}

// maxPrealloc caps the capacity allocated up front from a declared size, which
// comes from untrusted archive headers.
const maxPrealloc = 64 << 20

func capacityHint(size uint64, limit int64) int {
	if limit > 0 && size > uint64(limit) {
		size = uint64(limit)
	}
	if size > maxPrealloc {
		size = maxPrealloc
	}
	return int(size)
}

// readAll is io.ReadAll appending to buf, which always yields a non-nil slice.
func readAll(r io.Reader, buf []byte) ([]byte, error) {
	for {
		if len(buf) == cap(buf) {
			buf = append(buf, 0)[:len(buf)]
		}
		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if err != nil {
			if err == io.EOF {
				return buf, nil
			}
			return buf, err
		}
	}
}
