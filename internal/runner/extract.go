package runner

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/engine/filter"
	"go.uber.org/zap"
)

// ExtractResult counts what Extract wrote.
type ExtractResult struct {
	Files       int
	Directories int
	Skipped     int
}

// Extract writes entries through sink, normally a filesystem sink rooted at
// the destination directory. Entries rejected by f are skipped. A name that is
// absolute or escapes the root fails the whole extraction before anything is
// written.
func Extract(ctx context.Context, logger *zap.Logger, sink engine.DirectorySink, entries []engine.Entry, f *filter.Filter) (ExtractResult, error) {
	var result ExtractResult

	selected := make([]engine.Entry, 0, len(entries))
	for _, entry := range entries {
		ok, err := f.Match(entry)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Skipped++
			continue
		}
		if _, err := LocalName(entry.Path()); err != nil {
			return result, err
		}
		selected = append(selected, entry)
	}

	for _, entry := range selected {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		local, _ := LocalName(entry.Path())
		name := filepath.ToSlash(local)
		switch e := entry.(type) {
		case engine.Directory:
			if err := sink.WriteDirectory(ctx, name); err != nil {
				return result, fmt.Errorf("failed to extract %s: %w", e.Name, err)
			}
			result.Directories++
		case engine.File:
			if err := sink.Write(ctx, name, bytes.NewReader(e.Data)); err != nil {
				return result, fmt.Errorf("failed to extract %s: %w", e.Name, err)
			}
			result.Files++
		}
		logger.Debug("extracted entry", zap.String("name", name))
	}

	return result, sink.Close(ctx)
}

// LocalName converts an archive entry name into a relative OS path, rejecting
// names that are absolute or would escape the extraction root.
func LocalName(name string) (string, error) {
	trimmed := strings.TrimSuffix(strings.ReplaceAll(name, `\`, "/"), "/")
	if trimmed == "" || trimmed == "." {
		return "", fmt.Errorf("invalid entry name %q", name)
	}

	local := filepath.FromSlash(trimmed)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("entry name %q escapes the extraction directory", name)
	}

	return filepath.Clean(local), nil
}
