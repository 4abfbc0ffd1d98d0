package sources

import (
	"context"
	"fmt"
	"io"

	"github.com/chrontax/cra/internal/engine"
)

// StreamSource reads an archive from a stream such as stdin. The path is
// ignored and the stream can only be read once.
type StreamSource struct {
	r io.Reader
}

func NewStreamSource(r io.Reader) engine.Source {
	return &StreamSource{r: r}
}

func (s *StreamSource) Name() string {
	return "stream"
}

func (s *StreamSource) Kind() string {
	return "stream"
}

func (s *StreamSource) Read(ctx context.Context, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	return data, nil
}

func (s *StreamSource) Close(ctx context.Context) error {
	return nil
}
