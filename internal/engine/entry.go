package engine

import "bytes"

// Entry is one member of an archive. The only implementations are File and
// Directory; consumers switch on the concrete type.
type Entry interface {
	// Path returns the entry name exactly as stored in the archive.
	Path() string

	isEntry()
}

// File is a regular file with its fully decoded content.
type File struct {
	Name string
	Data []byte
}

// Directory is a directory marker. It carries no content.
type Directory struct {
	Name string
}

func (f File) Path() string      { return f.Name }
func (d Directory) Path() string { return d.Name }

func (File) isEntry()      {}
func (Directory) isEntry() {}

// NewFile returns a File entry. A nil data slice is stored as an empty one so
// that constructed entries compare equal to decoded ones.
func NewFile(name string, data []byte) File {
	if data == nil {
		data = []byte{}
	}
	return File{Name: name, Data: data}
}

// NewDirectory returns a Directory entry.
func NewDirectory(name string) Directory {
	return Directory{Name: name}
}

// Equal compares two entries structurally. Nil and empty file content are
// considered equal.
func Equal(a, b Entry) bool {
	switch a := a.(type) {
	case File:
		b, ok := b.(File)
		return ok && a.Name == b.Name && bytes.Equal(a.Data, b.Data)
	case Directory:
		b, ok := b.(Directory)
		return ok && a.Name == b.Name
	default:
		return a == nil && b == nil
	}
}

// EqualEntries compares two entry sequences element-wise.
func EqualEntries(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of e.
func Clone(e Entry) Entry {
	switch e := e.(type) {
	case File:
		return NewFile(e.Name, bytes.Clone(e.Data))
	case Directory:
		return e
	default:
		return nil
	}
}

// Size returns the content length of a File and zero for a Directory.
func Size(e Entry) int64 {
	if f, ok := e.(File); ok {
		return int64(len(f.Data))
	}
	return 0
}

// IsDir reports whether e is a Directory.
func IsDir(e Entry) bool {
	_, ok := e.(Directory)
	return ok
}
