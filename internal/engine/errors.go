package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnrecognizedFormat is returned when a buffer's signature matches none
	// of the supported archive formats.
	ErrUnrecognizedFormat = errors.New("unrecognized archive format")

	// ErrUnknownFormat is returned when a format name or value is not supported.
	ErrUnknownFormat = errors.New("unknown archive format")

	// ErrOwnerLookup is returned when the current user or group cannot be
	// resolved for tar metadata.
	ErrOwnerLookup = errors.New("failed to resolve archive owner")

	// ErrEntryTooLarge is returned when an entry exceeds the configured size limit.
	ErrEntryTooLarge = errors.New("archive entry too large")
)

// CodecError wraps a structural failure reported by a format codec, such as
// a corrupt container or an unsupported feature.
type CodecError struct {
	Format Format
	Op     string // "decode" or "encode"
	Err    error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Format, e.Op, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// IOError wraps a failure while reading or writing the content of a single
// entry.
type IOError struct {
	Format Format
	Name   string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s entry %q: %v", e.Format, e.Name, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
