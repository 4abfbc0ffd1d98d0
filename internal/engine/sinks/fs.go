package sinks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	defaultFileMode os.FileMode = 0o644
	defaultDirMode  os.FileMode = 0o755
)

// FilesystemSink writes blobs as files below the root of an afero filesystem.
// Paths use forward slashes like archive entry names and are converted to the
// host separator. Callers are responsible for rejecting names that escape the
// root; wrap the filesystem in afero.NewBasePathFs to confine it.
type FilesystemSink struct {
	fs afero.Fs
}

func NewFilesystemSink(fs afero.Fs) *FilesystemSink {
	return &FilesystemSink{fs: fs}
}

// NewDirectorySink creates dir when it is missing and returns a sink rooted
// at it.
func NewDirectorySink(dir string) (*FilesystemSink, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return NewFilesystemSink(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

func (s *FilesystemSink) Name() string {
	return fmt.Sprintf("filesystem(%s)", s.fs.Name())
}

func (s *FilesystemSink) Kind() string {
	return "filesystem"
}

// Write creates or truncates the file at path, creating parent directories.
func (s *FilesystemSink) Write(ctx context.Context, path string, data io.Reader) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	local := filepath.FromSlash(path)
	if parent := filepath.Dir(local); parent != "." {
		if err := s.fs.MkdirAll(parent, defaultDirMode); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", parent, err)
		}
	}

	f, err := s.fs.OpenFile(local, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, defaultFileMode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", local, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if _, err = io.Copy(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", local, err)
	}
	return nil
}

// WriteDirectory creates the directory name and its parents.
func (s *FilesystemSink) WriteDirectory(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	local := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if err := s.fs.MkdirAll(local, defaultDirMode); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", local, err)
	}
	return nil
}

func (s *FilesystemSink) Close(context.Context) error {
	return nil
}
