// Package cra reads and writes zip, tar and 7z archives through a single
// entry model.
//
// An archive is a sequence of entries, each either a File (name and content)
// or a Directory (name only). A Reader detects the format of an in-memory
// archive and decodes every entry up front; a Writer accumulates entries and
// encodes them into the format chosen at construction.
//
//	w := cra.NewWriter(cra.Tar)
//	w.Push(cra.NewFile("hello.txt", []byte("hi\n")))
//	w.Push(cra.NewDirectory("docs"))
//	buf, err := w.Archive()
//
//	r, err := cra.NewReader(buf)
//	for entry := range r.All() {
//	    switch e := entry.(type) {
//	    case cra.File:
//	        fmt.Println(e.Name, len(e.Data))
//	    case cra.Directory:
//	        fmt.Println(e.Name + "/")
//	    }
//	}
//
// Entry names are passed through as each codec reports them. Zip marks
// directories with a trailing slash and the 7z reader reports them the same
// way, so a Directory written as "docs" reads back as "docs/" from both. Tar
// keeps names verbatim.
package cra

import (
	"github.com/chrontax/cra/internal/engine"
)

type (
	// Format identifies an archive container format.
	Format = engine.Format

	// Entry is an archive member: a File or a Directory.
	Entry = engine.Entry

	// File is a regular file with its full content.
	File = engine.File

	// Directory is a directory marker.
	Directory = engine.Directory

	// CodecError wraps a structural failure reported by a format codec.
	CodecError = engine.CodecError

	// IOError wraps a failure reading or writing a single entry's content.
	IOError = engine.IOError
)

const (
	Zip      = engine.FormatZip
	Tar      = engine.FormatTar
	SevenZip = engine.FormatSevenZip
)

var (
	// ErrUnrecognizedFormat is returned when a buffer matches no supported format.
	ErrUnrecognizedFormat = engine.ErrUnrecognizedFormat

	// ErrUnknownFormat is returned for unsupported format names or values.
	ErrUnknownFormat = engine.ErrUnknownFormat

	// ErrOwnerLookup is returned when tar owner metadata cannot be resolved.
	ErrOwnerLookup = engine.ErrOwnerLookup

	// ErrEntryTooLarge is returned when an entry exceeds WithMaxEntrySize.
	ErrEntryTooLarge = engine.ErrEntryTooLarge
)

var (
	NewFile      = engine.NewFile
	NewDirectory = engine.NewDirectory
	Equal        = engine.Equal
	EqualEntries = engine.EqualEntries
	Clone        = engine.Clone
	ParseFormat  = engine.ParseFormat

	// FormatFromExtension maps ".zip", ".tar" or ".7z" to a format.
	FormatFromExtension = engine.FormatFromExtension
)

// Detect returns the format of an archive held in buf.
func Detect(buf []byte) (Format, error) {
	return engine.Detect(buf)
}
