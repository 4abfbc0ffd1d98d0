package archivers

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/engine/codecs"
)

// CodecArchiver buffers entries and encodes them with a format codec on Close.
type CodecArchiver struct {
	codec   engine.Codec
	entries []engine.Entry
	closed  bool
}

// NewArchiver creates an archiver for the given format.
func NewArchiver(format engine.Format, opts codecs.Options) (engine.Archiver, error) {
	codec, err := codecs.For(format, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s archiver: %w", format, err)
	}
	return &CodecArchiver{codec: codec}, nil
}

// AddFile adds a file entry to the archive.
func (a *CodecArchiver) AddFile(ctx context.Context, filename string, data io.Reader) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	content, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to read file data: %w", err)
	}

	a.entries = append(a.entries, engine.NewFile(filename, content))
	return nil
}

// AddDirectory adds a directory entry to the archive.
func (a *CodecArchiver) AddDirectory(ctx context.Context, name string) error {
	if a.closed {
		return fmt.Errorf("archiver is closed")
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}

	a.entries = append(a.entries, engine.NewDirectory(name))
	return nil
}

// Close encodes the collected entries and returns a reader over the archive.
func (a *CodecArchiver) Close() (io.Reader, error) {
	if a.closed {
		return nil, fmt.Errorf("archiver already closed")
	}
	a.closed = true

	buf, err := a.codec.Encode(a.entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode archive: %w", err)
	}

	return bytes.NewReader(buf), nil
}

// Extension returns the file extension for the archive format.
func (a *CodecArchiver) Extension() string {
	return a.codec.Format().Extension()
}
