package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrStreamUsed is returned when a second blob is written to a StreamSink.
// Two archives back to back on one stream cannot be told apart.
var ErrStreamUsed = errors.New("stream sink already written")

// StreamSink copies a single blob to a writer, typically stdout. The path
// passed to Write is ignored.
type StreamSink struct {
	w       io.Writer
	written bool
}

func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

func (s *StreamSink) Name() string {
	return "stream"
}

func (s *StreamSink) Kind() string {
	return "stream"
}

func (s *StreamSink) Write(ctx context.Context, _ string, data io.Reader) error {
	if s.written {
		return ErrStreamUsed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.written = true

	if _, err := io.Copy(s.w, data); err != nil {
		return fmt.Errorf("failed to copy to stream: %w", err)
	}
	return nil
}

func (s *StreamSink) Close(context.Context) error {
	return nil
}
