package codecs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chrontax/cra/internal/engine"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

// ZipMethod selects the compression method for zip file entries.
type ZipMethod string

const (
	ZipDeflate ZipMethod = "deflate"
	ZipStore   ZipMethod = "store"
	ZipZstd    ZipMethod = "zstd"
)

// ParseZipMethod parses a zip method name. An empty name selects Deflate.
func ParseZipMethod(name string) (ZipMethod, error) {
	switch m := ZipMethod(strings.ToLower(name)); m {
	case "":
		return ZipDeflate, nil
	case ZipDeflate, ZipStore, ZipZstd:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported zip method: %s", name)
	}
}

func (m ZipMethod) id() (uint16, error) {
	switch m {
	case "", ZipDeflate:
		return zip.Deflate, nil
	case ZipStore:
		return zip.Store, nil
	case ZipZstd:
		return zstd.ZipMethodWinZip, nil
	default:
		return 0, fmt.Errorf("unsupported zip method: %s", m)
	}
}

// ZipCodec reads and writes zip archives with klauspost/compress/zip.
type ZipCodec struct {
	opts   Options
	logger *zap.Logger
}

// NewZipCodec creates a zip codec.
func NewZipCodec(opts Options) *ZipCodec {
	return &ZipCodec{opts: opts, logger: opts.logger().Named("zip")}
}

func (c *ZipCodec) Format() engine.Format {
	return engine.FormatZip
}

// Decode returns the entries of a zip archive in central directory order.
// Directory names keep the trailing slash zip uses to mark them.
func (c *ZipCodec) Decode(buf []byte) ([]engine.Entry, error) {
	// Names are kept opaque; extraction does its own path checks.
	r, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &engine.CodecError{Format: engine.FormatZip, Op: "decode", Err: err}
	}
	r.RegisterDecompressor(zstd.ZipMethodWinZip, zstd.ZipDecompressor())

	entries := make([]engine.Entry, 0, len(r.File))
	for _, f := range r.File {
		entry, err := c.decodeFile(f)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	c.logger.Debug("decoded archive", zap.Int("entries", len(entries)))
	return entries, nil
}

func (c *ZipCodec) decodeFile(f *zip.File) (engine.Entry, error) {
	if f.FileInfo().IsDir() {
		return engine.NewDirectory(f.Name), nil
	}

	if err := c.opts.checkDeclaredSize(engine.FormatZip, f.Name, f.UncompressedSize64); err != nil {
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &engine.CodecError{Format: engine.FormatZip, Op: "decode", Err: fmt.Errorf("failed to open %q: %w", f.Name, err)}
	}
	defer func() { _ = rc.Close() }()

	data, err := c.opts.readContent(engine.FormatZip, f.Name, rc, f.UncompressedSize64)
	if err != nil {
		return nil, err
	}

	return engine.NewFile(f.Name, data), nil
}

// Encode writes entries into a new zip archive. Directory names get a
// trailing slash if they lack one, since that is how zip marks directories.
func (c *ZipCodec) Encode(entries []engine.Entry) ([]byte, error) {
	method, err := c.opts.ZipMethod.id()
	if err != nil {
		return nil, &engine.CodecError{Format: engine.FormatZip, Op: "encode", Err: err}
	}

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	modified := c.opts.now()
	for _, entry := range entries {
		if err := c.encodeEntry(w, entry, method, modified); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, &engine.CodecError{Format: engine.FormatZip, Op: "encode", Err: fmt.Errorf("failed to close zip writer: %w", err)}
	}

	c.logger.Debug("encoded archive", zap.Int("entries", len(entries)), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (c *ZipCodec) encodeEntry(w *zip.Writer, entry engine.Entry, method uint16, modified time.Time) error {
	switch e := entry.(type) {
	case engine.Directory:
		name := e.Name
		if !strings.HasSuffix(name, "/") {
			name += "/"
		}
		if _, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store, Modified: modified}); err != nil {
			return &engine.CodecError{Format: engine.FormatZip, Op: "encode", Err: fmt.Errorf("failed to add directory %q: %w", e.Name, err)}
		}
	case engine.File:
		fw, err := w.CreateHeader(&zip.FileHeader{Name: e.Name, Method: method, Modified: modified})
		if err != nil {
			return &engine.CodecError{Format: engine.FormatZip, Op: "encode", Err: fmt.Errorf("failed to add file %q: %w", e.Name, err)}
		}
		if _, err := fw.Write(e.Data); err != nil {
			return &engine.IOError{Format: engine.FormatZip, Name: e.Name, Err: err}
		}
	default:
		return &engine.CodecError{Format: engine.FormatZip, Op: "encode", Err: fmt.Errorf("unsupported entry type %T", entry)}
	}
	return nil
}
