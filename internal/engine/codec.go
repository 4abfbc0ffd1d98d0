package engine

// Codec converts between one container format's binary layout and the shared
// entry model.
type Codec interface {
	// Format returns the container format handled by this codec.
	Format() Format

	// Decode opens buf as an archive and returns every entry in container order.
	Decode(buf []byte) ([]Entry, error)

	// Encode serializes entries, in order, into a finalized archive.
	Encode(entries []Entry) ([]byte, error)
}
