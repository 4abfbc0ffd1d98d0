// Package sevenz writes 7z archives.
//
// Each non-empty file is compressed into its own folder with a single coder.
// Directories and zero-length files are stored as empty streams. The header
// database is written unencoded after the packed streams.
package sevenz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/text/encoding/unicode"
)

// Signature is the magic prefix of every 7z archive.
var Signature = []byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c}

const (
	versionMajor = 0
	versionMinor = 4

	signatureHeaderSize = 32

	attrDirectory = 0x10
	attrArchive   = 0x20

	// filetimeEpochOffset is the number of 100ns intervals between
	// 1601-01-01 and 1970-01-01.
	filetimeEpochOffset = 116444736000000000
)

// ErrFinished is returned when the writer is used after Finish.
var ErrFinished = errors.New("7z writer already finished")

// Coder describes the single compression method applied to each folder.
type Coder struct {
	Name       string
	ID         []byte
	Properties []byte
	NewWriter  func(w io.Writer) (io.WriteCloser, error)
}

var (
	// Copy stores content uncompressed.
	Copy = Coder{
		Name: "copy",
		ID:   []byte{0x00},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return nopWriteCloser{w}, nil
		},
	}

	// Deflate compresses content with deflate.
	Deflate = Coder{
		Name: "deflate",
		ID:   []byte{0x04, 0x01, 0x08},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.DefaultCompression)
		},
	}

	// Zstd compresses content with Zstandard.
	Zstd = Coder{
		Name: "zstd",
		ID:   []byte{0x04, 0xf7, 0x11, 0x01},
		NewWriter: func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		},
	}
)

type file struct {
	name     string
	dir      bool
	modified time.Time
	size     uint64
	packSize uint64
	crc      uint32
}

func (f file) emptyStream() bool {
	return f.dir || f.size == 0
}

// Writer builds a 7z archive in memory.
type Writer struct {
	coder    Coder
	packed   bytes.Buffer
	files    []file
	finished bool
}

// NewWriter returns a writer that compresses files with coder.
func NewWriter(coder Coder) *Writer {
	return &Writer{coder: coder}
}

// AddDirectory appends a directory record.
func (w *Writer) AddDirectory(name string, modified time.Time) error {
	if w.finished {
		return ErrFinished
	}
	w.files = append(w.files, file{name: name, dir: true, modified: modified})
	return nil
}

// AddFile compresses data into a new folder and appends a file record.
func (w *Writer) AddFile(name string, data []byte, modified time.Time) error {
	if w.finished {
		return ErrFinished
	}

	f := file{name: name, modified: modified, size: uint64(len(data))}
	if len(data) > 0 {
		start := w.packed.Len()

		cw, err := w.coder.NewWriter(&w.packed)
		if err != nil {
			return fmt.Errorf("failed to create %s encoder: %w", w.coder.Name, err)
		}
		if _, err := cw.Write(data); err != nil {
			return fmt.Errorf("failed to compress %q: %w", name, err)
		}
		if err := cw.Close(); err != nil {
			return fmt.Errorf("failed to finish %s stream for %q: %w", w.coder.Name, name, err)
		}

		f.packSize = uint64(w.packed.Len() - start)
		f.crc = crc32.ChecksumIEEE(data)
	}

	w.files = append(w.files, f)
	return nil
}

// Finish writes the signature header, packed streams and header database
// and returns the complete archive.
func (w *Writer) Finish() ([]byte, error) {
	if w.finished {
		return nil, ErrFinished
	}
	w.finished = true

	header, err := w.header()
	if err != nil {
		return nil, err
	}

	out := make([]byte, signatureHeaderSize, signatureHeaderSize+w.packed.Len()+len(header))
	copy(out, Signature)
	out[6] = versionMajor
	out[7] = versionMinor

	binary.LittleEndian.PutUint64(out[12:20], uint64(w.packed.Len()))
	binary.LittleEndian.PutUint64(out[20:28], uint64(len(header)))
	binary.LittleEndian.PutUint32(out[28:32], crc32.ChecksumIEEE(header))
	binary.LittleEndian.PutUint32(out[8:12], crc32.ChecksumIEEE(out[12:32]))

	out = append(out, w.packed.Bytes()...)
	out = append(out, header...)
	return out, nil
}

func (w *Writer) header() ([]byte, error) {
	var b headerBuffer
	b.id(idHeader)

	var streams []file
	for _, f := range w.files {
		if !f.emptyStream() {
			streams = append(streams, f)
		}
	}
	if len(streams) > 0 {
		b.id(idMainStreamsInfo)
		w.writeStreamsInfo(&b, streams)
	}

	if err := w.writeFilesInfo(&b); err != nil {
		return nil, err
	}

	b.id(idEnd)
	return b.Bytes(), nil
}

func (w *Writer) writeStreamsInfo(b *headerBuffer, streams []file) {
	b.id(idPackInfo)
	b.number(0)
	b.number(uint64(len(streams)))
	b.id(idSize)
	for _, s := range streams {
		b.number(s.packSize)
	}
	b.id(idEnd)

	b.id(idUnpackInfo)
	b.id(idFolder)
	b.number(uint64(len(streams)))
	b.WriteByte(0) // not external
	for range streams {
		w.writeFolder(b)
	}
	b.id(idCodersUnpackSize)
	for _, s := range streams {
		b.number(s.size)
	}
	b.id(idEnd)

	// One substream per folder, so only the digests need listing.
	b.id(idSubStreamsInfo)
	b.id(idCRC)
	b.WriteByte(1) // all defined
	for _, s := range streams {
		b.uint32(s.crc)
	}
	b.id(idEnd)

	b.id(idEnd)
}

func (w *Writer) writeFolder(b *headerBuffer) {
	b.number(1) // coders

	flags := byte(len(w.coder.ID))
	if len(w.coder.Properties) > 0 {
		flags |= 0x20
	}
	b.WriteByte(flags)
	b.Write(w.coder.ID)
	if len(w.coder.Properties) > 0 {
		b.number(uint64(len(w.coder.Properties)))
		b.Write(w.coder.Properties)
	}
}

func (w *Writer) writeFilesInfo(b *headerBuffer) error {
	b.id(idFilesInfo)
	b.number(uint64(len(w.files)))
	if len(w.files) == 0 {
		b.id(idEnd)
		return nil
	}

	emptyStream := make([]bool, len(w.files))
	var emptyFile []bool
	for i, f := range w.files {
		if f.emptyStream() {
			emptyStream[i] = true
			emptyFile = append(emptyFile, !f.dir)
		}
	}
	if anySet(emptyStream) {
		b.property(idEmptyStream, bitVector(emptyStream))
		if anySet(emptyFile) {
			b.property(idEmptyFile, bitVector(emptyFile))
		}
	}

	names, err := encodeNames(w.files)
	if err != nil {
		return err
	}
	b.property(idName, names)

	var times headerBuffer
	times.WriteByte(1) // all defined
	times.WriteByte(0) // not external
	for _, f := range w.files {
		times.uint64(filetime(f.modified))
	}
	b.property(idMTime, times.Bytes())

	var attrs headerBuffer
	attrs.WriteByte(1)
	attrs.WriteByte(0)
	for _, f := range w.files {
		if f.dir {
			attrs.uint32(attrDirectory)
		} else {
			attrs.uint32(attrArchive)
		}
	}
	b.property(idWinAttributes, attrs.Bytes())

	b.id(idEnd)
	return nil
}

// encodeNames returns the kName payload: an external flag followed by
// NUL-terminated UTF-16LE names.
func encodeNames(files []file) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()

	out := []byte{0}
	for _, f := range files {
		name, err := enc.Bytes([]byte(f.name))
		if err != nil {
			return nil, fmt.Errorf("failed to encode name %q: %w", f.name, err)
		}
		out = append(out, name...)
		out = append(out, 0, 0)
	}
	return out, nil
}

func filetime(t time.Time) uint64 {
	if t.IsZero() {
		return 0
	}
	ft := t.UnixNano()/100 + filetimeEpochOffset
	if ft < 0 {
		return 0
	}
	return uint64(ft)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
