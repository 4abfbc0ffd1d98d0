package cra

import (
	"fmt"
	"io"
	"slices"

	"github.com/chrontax/cra/internal/engine/codecs"
	"go.uber.org/zap"
)

// Writer accumulates entries in insertion order and encodes them on demand.
type Writer struct {
	format  Format
	opts    codecs.Options
	logger  *zap.Logger
	entries []Entry
}

// NewWriter returns an empty writer for format.
func NewWriter(format Format, opts ...Option) *Writer {
	o := buildOptions(opts)
	return &Writer{
		format: format,
		opts:   o,
		logger: o.Logger.Named("writer"),
	}
}

// Format returns the format the writer encodes to.
func (w *Writer) Format() Format {
	return w.format
}

// Push appends one entry.
func (w *Writer) Push(entry Entry) {
	w.entries = append(w.entries, entry)
}

// Extend appends entries in order.
func (w *Writer) Extend(entries ...Entry) {
	w.entries = append(w.entries, entries...)
}

// Entries returns a copy of the accumulated entry list.
func (w *Writer) Entries() []Entry {
	return slices.Clone(w.entries)
}

// Len returns the number of accumulated entries.
func (w *Writer) Len() int {
	return len(w.entries)
}

// Archive encodes the current entries into a complete archive. It leaves the
// writer untouched, so it can be called again after further pushes.
func (w *Writer) Archive() ([]byte, error) {
	codec, err := codecs.For(w.format, w.opts)
	if err != nil {
		return nil, err
	}

	buf, err := codec.Encode(w.entries)
	if err != nil {
		return nil, fmt.Errorf("failed to write %s archive: %w", w.format, err)
	}

	w.logger.Debug("wrote archive",
		zap.Stringer("format", w.format),
		zap.Int("entries", len(w.entries)),
		zap.Int("bytes", len(buf)),
	)

	return buf, nil
}

// WriteTo encodes the archive and writes it to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	buf, err := w.Archive()
	if err != nil {
		return 0, err
	}
	n, err := dst.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write archive: %w", err)
	}
	return int64(n), nil
}
