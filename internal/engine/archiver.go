package engine

import (
	"context"
	"io"
)

// Archiver collects entries into an archive.
type Archiver interface {
	// AddFile adds a file entry whose content is read from data.
	AddFile(ctx context.Context, filename string, data io.Reader) error

	// AddDirectory adds a directory entry.
	AddDirectory(ctx context.Context, name string) error

	// Close finalizes the archive and returns a reader for the complete archive data.
	Close() (io.Reader, error)

	// Extension returns the file extension for this archive type (e.g., ".7z").
	Extension() string
}
