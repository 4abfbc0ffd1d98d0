package runner

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/chrontax/cra/internal/engine"
	"github.com/spf13/afero"
)

// CollectEntries walks each root in fs and returns its directories and files
// as archive entries, in walk order. Names are slash separated and relative to
// the parent of the root, so collecting "site" yields "site", "site/index.html"
// and so on. A root of "." contributes its children only.
func CollectEntries(fs afero.Fs, roots ...string) ([]engine.Entry, error) {
	var entries []engine.Entry

	for _, root := range roots {
		clean := filepath.Clean(root)
		base := filepath.Base(clean)
		if base == "." || base == string(filepath.Separator) || base == ".." {
			base = ""
		}

		err := afero.Walk(fs, clean, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(clean, p)
			if err != nil {
				return err
			}
			name := path.Join(base, filepath.ToSlash(rel))
			if name == "." || name == "" {
				return nil
			}

			switch {
			case info.IsDir():
				entries = append(entries, engine.NewDirectory(name))
			case info.Mode().IsRegular():
				data, err := afero.ReadFile(fs, p)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", p, err)
				}
				entries = append(entries, engine.NewFile(name, data))
			default:
				// Symlinks, devices and sockets have no entry representation.
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to collect %s: %w", root, err)
		}
	}

	return entries, nil
}

// TrimDirSlash strips the trailing slash some formats report on directory
// names, so entries can be re-encoded into a format that adds its own.
func TrimDirSlash(entries []engine.Entry) []engine.Entry {
	out := make([]engine.Entry, len(entries))
	for i, e := range entries {
		if d, ok := e.(engine.Directory); ok && strings.HasSuffix(d.Name, "/") && d.Name != "/" {
			out[i] = engine.NewDirectory(strings.TrimSuffix(d.Name, "/"))
			continue
		}
		out[i] = e
	}
	return out
}
