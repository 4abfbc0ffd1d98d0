package codecs

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/chrontax/cra/internal/engine"
	"go.uber.org/zap"
)

// tarMode is the permission mode written for every tar entry.
const tarMode = 0o766

// TarCodec reads and writes uncompressed tar archives.
type TarCodec struct {
	opts   Options
	logger *zap.Logger
}

// NewTarCodec creates a tar codec.
func NewTarCodec(opts Options) *TarCodec {
	return &TarCodec{opts: opts, logger: opts.logger().Named("tar")}
}

func (c *TarCodec) Format() engine.Format {
	return engine.FormatTar
}

// Decode returns the entries of a tar archive in stream order. Anything that
// is not a directory, including links and devices, decodes as a File with
// whatever content the record carries.
func (c *TarCodec) Decode(buf []byte) ([]engine.Entry, error) {
	tr := tar.NewReader(bytes.NewReader(buf))

	var entries []engine.Entry
	for {
		h, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &engine.CodecError{Format: engine.FormatTar, Op: "decode", Err: err}
		}

		if h.Typeflag == tar.TypeDir {
			entries = append(entries, engine.NewDirectory(h.Name))
			continue
		}

		if h.Size < 0 {
			return nil, &engine.CodecError{Format: engine.FormatTar, Op: "decode", Err: fmt.Errorf("negative size for %q", h.Name)}
		}
		if err := c.opts.checkDeclaredSize(engine.FormatTar, h.Name, uint64(h.Size)); err != nil {
			return nil, err
		}

		data, err := c.opts.readContent(engine.FormatTar, h.Name, tr, uint64(h.Size))
		if err != nil {
			return nil, err
		}
		entries = append(entries, engine.NewFile(h.Name, data))
	}

	if entries == nil {
		entries = []engine.Entry{}
	}

	c.logger.Debug("decoded archive", zap.Int("entries", len(entries)))
	return entries, nil
}

// Encode writes entries as a GNU tar archive. Every header gets the fixed
// mode, the clock's time truncated to seconds, and the configured owner.
func (c *TarCodec) Encode(entries []engine.Entry) ([]byte, error) {
	owner, err := c.opts.owner()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tar owner: %w", err)
	}
	modTime := c.opts.now().Truncate(time.Second)

	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)

	for _, entry := range entries {
		header := &tar.Header{
			Format:  tar.FormatGNU,
			Mode:    tarMode,
			ModTime: modTime,
			Uid:     owner.UID,
			Gid:     owner.GID,
			Uname:   owner.User,
			Gname:   owner.Group,
		}

		var data []byte
		switch e := entry.(type) {
		case engine.Directory:
			header.Typeflag = tar.TypeDir
			header.Name = e.Name
		case engine.File:
			header.Typeflag = tar.TypeReg
			header.Name = e.Name
			header.Size = int64(len(e.Data))
			data = e.Data
		default:
			return nil, &engine.CodecError{Format: engine.FormatTar, Op: "encode", Err: fmt.Errorf("unsupported entry type %T", entry)}
		}

		if err := tw.WriteHeader(header); err != nil {
			return nil, &engine.CodecError{Format: engine.FormatTar, Op: "encode", Err: fmt.Errorf("failed to write tar header for %q: %w", header.Name, err)}
		}
		if _, err := tw.Write(data); err != nil {
			return nil, &engine.IOError{Format: engine.FormatTar, Name: header.Name, Err: err}
		}
	}

	if err := tw.Close(); err != nil {
		return nil, &engine.CodecError{Format: engine.FormatTar, Op: "encode", Err: fmt.Errorf("failed to close tar writer: %w", err)}
	}

	c.logger.Debug("encoded archive", zap.Int("entries", len(entries)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
