package engine

import (
	"context"
	"io"
)

// Named identifies a source or sink in logs and errors. Kind is the backend
// ("filesystem", "s3", ...) and Name adds its target.
type Named interface {
	Name() string
	Kind() string
}

// Closer releases a source or sink. Sinks that buffer flush here.
type Closer interface {
	Close(context.Context) error
}

// Sink receives named blobs, such as a finished archive or an extracted file.
type Sink interface {
	Named
	Closer
	Write(ctx context.Context, path string, data io.Reader) error
}

// DirectorySink is a Sink that can also record directory entries.
type DirectorySink interface {
	Sink
	WriteDirectory(ctx context.Context, name string) error
}

// Source loads a whole archive into memory.
type Source interface {
	Named
	Closer
	Read(ctx context.Context, path string) ([]byte, error)
}
