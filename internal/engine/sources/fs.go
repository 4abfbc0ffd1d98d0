package sources

import (
	"context"
	"fmt"

	"github.com/chrontax/cra/internal/engine"
	"github.com/spf13/afero"
)

type FilesystemSource struct {
	fs afero.Fs
}

func NewFilesystemSource(fs afero.Fs) engine.Source {
	return &FilesystemSource{fs: fs}
}

func (s *FilesystemSource) Name() string {
	return fmt.Sprintf("filesystem(%s)", s.fs.Name())
}

func (s *FilesystemSource) Kind() string {
	return "filesystem"
}

func (s *FilesystemSource) Read(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	return data, nil
}

func (s *FilesystemSource) Close(ctx context.Context) error {
	return nil
}
