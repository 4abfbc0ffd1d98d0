package cra

import (
	"fmt"
	"iter"
	"slices"

	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/engine/codecs"
	"go.uber.org/zap"
)

// Reader holds every entry of a decoded archive. The format and the entry
// list never change after construction. Entries can be inspected any number
// of times through Entries and At, or consumed once through Next or All.
type Reader struct {
	format  Format
	entries []Entry
	cursor  int
}

// NewReader detects the format of buf and decodes all of its entries.
//
// WithMaxEntrySize bounds entry content only. A 7z header is parsed before any
// limit applies, and a corrupt one declaring huge item counts can make the
// 7z decoder allocate until the process runs out of memory. Only read 7z
// archives from sources you trust to be well formed.
func NewReader(buf []byte, opts ...Option) (*Reader, error) {
	format, err := engine.Detect(buf)
	if err != nil {
		return nil, err
	}
	return NewReaderFormat(buf, format, opts...)
}

// NewReaderFormat decodes buf as format without sniffing its signature.
func NewReaderFormat(buf []byte, format Format, opts ...Option) (*Reader, error) {
	o := buildOptions(opts)
	logger := o.Logger.Named("reader")

	codec, err := codecs.For(format, o)
	if err != nil {
		return nil, err
	}

	entries, err := codec.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s archive: %w", format, err)
	}

	logger.Debug("read archive",
		zap.Stringer("format", format),
		zap.Int("entries", len(entries)),
		zap.Int("bytes", len(buf)),
	)

	return &Reader{format: format, entries: entries}, nil
}

// Format returns the detected archive format.
func (r *Reader) Format() Format {
	return r.format
}

// Entries returns all entries in container order, independent of the cursor.
// The returned slice is a copy; the entries' content is shared and must not be
// modified.
func (r *Reader) Entries() []Entry {
	return slices.Clone(r.entries)
}

// Len returns the number of entries.
func (r *Reader) Len() int {
	return len(r.entries)
}

// At returns the entry at index i.
func (r *Reader) At(i int) Entry {
	return r.entries[i]
}

// Next returns a copy of the entry under the cursor and advances it. It
// returns false once every entry has been consumed; the cursor never rewinds.
func (r *Reader) Next() (Entry, bool) {
	if r.cursor >= len(r.entries) {
		return nil, false
	}
	r.cursor++
	return engine.Clone(r.entries[r.cursor-1]), true
}

// Remaining returns the number of entries Next has yet to return.
func (r *Reader) Remaining() int {
	return len(r.entries) - r.cursor
}

// All returns a sequence that drains the cursor, yielding the same entries
// Next would. Breaking out early leaves the rest for a later call.
func (r *Reader) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for {
			entry, ok := r.Next()
			if !ok || !yield(entry) {
				return
			}
		}
	}
}
