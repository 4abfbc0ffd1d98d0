package cra

import (
	"time"

	"github.com/chrontax/cra/internal/engine/codecs"
	"go.uber.org/zap"
)

type (
	// Owner is the user and group written into tar headers.
	Owner = codecs.Owner

	// ZipMethod is the compression method for zip file entries.
	ZipMethod = codecs.ZipMethod

	// SevenZipMethod is the coder used for 7z file content.
	SevenZipMethod = codecs.SevenZipMethod
)

const (
	ZipDeflate = codecs.ZipDeflate
	ZipStore   = codecs.ZipStore
	ZipZstd    = codecs.ZipZstd

	SevenZipDeflate = codecs.SevenZipDeflate
	SevenZipCopy    = codecs.SevenZipCopy
	SevenZipZstd    = codecs.SevenZipZstd
)

var (
	ParseZipMethod      = codecs.ParseZipMethod
	ParseSevenZipMethod = codecs.ParseSevenZipMethod
	CurrentOwner        = codecs.CurrentOwner
)

// Option configures a Reader or a Writer. Options that only concern one side
// are ignored by the other.
type Option func(*codecs.Options)

// WithLogger sets the logger used for debug output. The default discards logs.
func WithLogger(logger *zap.Logger) Option {
	return func(o *codecs.Options) {
		o.Logger = logger
	}
}

// WithClock sets the time source for modification times written by a Writer.
func WithClock(clock func() time.Time) Option {
	return func(o *codecs.Options) {
		o.Clock = clock
	}
}

// WithTarOwner fixes the owner written into tar headers instead of resolving
// the current process owner.
func WithTarOwner(owner Owner) Option {
	return func(o *codecs.Options) {
		o.Owner = &owner
	}
}

// WithZipMethod selects the zip compression method. Defaults to Deflate.
func WithZipMethod(method ZipMethod) Option {
	return func(o *codecs.Options) {
		o.ZipMethod = method
	}
}

// WithSevenZipMethod selects the 7z coder. Defaults to Deflate.
func WithSevenZipMethod(method SevenZipMethod) Option {
	return func(o *codecs.Options) {
		o.SevenZipMethod = method
	}
}

// WithMaxEntrySize makes a Reader reject any file entry larger than size
// bytes with ErrEntryTooLarge. Zero disables the limit.
func WithMaxEntrySize(size int64) Option {
	return func(o *codecs.Options) {
		o.MaxEntrySize = size
	}
}

func buildOptions(opts []Option) codecs.Options {
	var o codecs.Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
