package codecs

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/chrontax/cra/internal/engine"
	"github.com/chrontax/cra/internal/sevenz"
	"go.uber.org/zap"
)

// SevenZipMethod selects the coder used for 7z file content.
type SevenZipMethod string

const (
	SevenZipDeflate SevenZipMethod = "deflate"
	SevenZipCopy    SevenZipMethod = "copy"
	SevenZipZstd    SevenZipMethod = "zstd"
)

// ParseSevenZipMethod parses a 7z method name. An empty name selects Deflate.
func ParseSevenZipMethod(name string) (SevenZipMethod, error) {
	switch m := SevenZipMethod(strings.ToLower(name)); m {
	case "":
		return SevenZipDeflate, nil
	case SevenZipDeflate, SevenZipCopy, SevenZipZstd:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported 7z method: %s", name)
	}
}

func (m SevenZipMethod) coder() (sevenz.Coder, error) {
	switch m {
	case "", SevenZipDeflate:
		return sevenz.Deflate, nil
	case SevenZipCopy:
		return sevenz.Copy, nil
	case SevenZipZstd:
		return sevenz.Zstd, nil
	default:
		return sevenz.Coder{}, fmt.Errorf("unsupported 7z method: %s", m)
	}
}

// SevenZipCodec decodes 7z archives with bodgit/sevenzip and encodes them
// with the in-module container writer.
type SevenZipCodec struct {
	opts   Options
	logger *zap.Logger
}

// NewSevenZipCodec creates a 7z codec.
func NewSevenZipCodec(opts Options) *SevenZipCodec {
	return &SevenZipCodec{opts: opts, logger: opts.logger().Named("7z")}
}

func (c *SevenZipCodec) Format() engine.Format {
	return engine.FormatSevenZip
}

// Decode returns the entries of a 7z archive in header order. Directory names
// carry the trailing slash the decoder reports. Only archives without a
// password are supported; encrypted ones fail as codec errors. Header counts
// are trusted by the decoder, so a corrupt header can exhaust memory before
// MaxEntrySize is consulted.
func (c *SevenZipCodec) Decode(buf []byte) ([]engine.Entry, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, &engine.CodecError{Format: engine.FormatSevenZip, Op: "decode", Err: err}
	}

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

func (c *SevenZipCodec) decodeFile(f *sevenzip.File) (engine.Entry, error) {
	if f.FileInfo().IsDir() {
		return engine.NewDirectory(f.Name), nil
	}

	if err := c.opts.checkDeclaredSize(engine.FormatSevenZip, f.Name, f.UncompressedSize); err != nil {
		return nil, err
	}

	rc, err := f.Open()
	if err != nil {
		return nil, &engine.CodecError{Format: engine.FormatSevenZip, Op: "decode", Err: fmt.Errorf("failed to open %q: %w", f.Name, err)}
	}
	defer func() { _ = rc.Close() }()

	data, err := c.opts.readContent(engine.FormatSevenZip, f.Name, rc, f.UncompressedSize)
	if err != nil {
		return nil, err
	}

	return engine.NewFile(f.Name, data), nil
}

// Encode writes entries into a new 7z archive stamped with the clock's time.
func (c *SevenZipCodec) Encode(entries []engine.Entry) ([]byte, error) {
	coder, err := c.opts.SevenZipMethod.coder()
	if err != nil {
		return nil, &engine.CodecError{Format: engine.FormatSevenZip, Op: "encode", Err: err}
	}

	w := sevenz.NewWriter(coder)
	modified := c.opts.now()

	for _, entry := range entries {
		switch e := entry.(type) {
		case engine.Directory:
			err = w.AddDirectory(e.Name, modified)
		case engine.File:
			err = w.AddFile(e.Name, e.Data, modified)
		default:
			err = fmt.Errorf("unsupported entry type %T", entry)
		}
		if err != nil {
			return nil, &engine.CodecError{Format: engine.FormatSevenZip, Op: "encode", Err: err}
		}
	}

	out, err := w.Finish()
	if err != nil {
		return nil, &engine.CodecError{Format: engine.FormatSevenZip, Op: "encode", Err: err}
	}

	c.logger.Debug("encoded archive", zap.Int("entries", len(entries)), zap.String("method", coder.Name), zap.Int("bytes", len(out)))
	return out, nil
}
