package sinks

import (
	"context"
	"fmt"
	"io"

	"github.com/chrontax/cra/internal/engine"
)

// ArchiveSink turns a series of writes into one archive. Each Write becomes a
// file entry and each WriteDirectory a directory entry, in call order. Close
// encodes the archive and hands it to the inner sink under archiveName.
type ArchiveSink struct {
	inner       engine.Sink
	archiver    engine.Archiver
	archiveName string
	entries     int
}

func NewArchiveSink(inner engine.Sink, archiver engine.Archiver, archiveName string) *ArchiveSink {
	return &ArchiveSink{
		inner:       inner,
		archiver:    archiver,
		archiveName: archiveName,
	}
}

func (s *ArchiveSink) Name() string {
	return fmt.Sprintf("archive(%s)->%s", s.archiveName, s.inner.Name())
}

func (s *ArchiveSink) Kind() string {
	return "archive"
}

// Entries returns the number of entries added so far.
func (s *ArchiveSink) Entries() int {
	return s.entries
}

func (s *ArchiveSink) Write(ctx context.Context, path string, data io.Reader) error {
	if err := s.archiver.AddFile(ctx, path, data); err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", path, err)
	}
	s.entries++
	return nil
}

func (s *ArchiveSink) WriteDirectory(ctx context.Context, name string) error {
	if err := s.archiver.AddDirectory(ctx, name); err != nil {
		return fmt.Errorf("failed to add directory %s to archive: %w", name, err)
	}
	s.entries++
	return nil
}

// Close encodes the archive, writes it to the inner sink and closes that sink.
func (s *ArchiveSink) Close(ctx context.Context) error {
	archive, err := s.archiver.Close()
	if err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := s.inner.Write(ctx, s.archiveName, archive); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", s.archiveName, s.inner.Name(), err)
	}
	return s.inner.Close(ctx)
}
