package codecs

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/chrontax/cra/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testClock = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 500, time.UTC) }
	testOwner = Owner{UID: 1000, GID: 1000, User: "builder", Group: "builders"}
)

func testOptions() Options {
	return Options{Clock: testClock, Owner: &testOwner}
}

func sampleEntries() []engine.Entry {
	return []engine.Entry{
		engine.NewFile("hmmm", []byte("twoja stara\n")),
		engine.NewDirectory("uwu"),
		engine.NewFile("uwu/owo", nil),
		engine.NewFile("big.bin", bytes.Repeat([]byte("0123456789abcdef"), 4096)),
	}
}

// slashDirs applies the trailing slash zip and 7z report for directories.
func slashDirs(entries []engine.Entry) []engine.Entry {
	out := make([]engine.Entry, len(entries))
	for i, e := range entries {
		if d, ok := e.(engine.Directory); ok {
			out[i] = engine.NewDirectory(d.Name + "/")
			continue
		}
		out[i] = e
	}
	return out
}

func TestFor(t *testing.T) {
	for _, format := range engine.Formats {
		t.Run(format.String(), func(t *testing.T) {
			codec, err := For(format, Options{})
			require.NoError(t, err)
			assert.Equal(t, format, codec.Format())
		})
	}

	_, err := For(engine.Format(99), Options{})
	require.ErrorIs(t, err, engine.ErrUnknownFormat)
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		format engine.Format
		opts   func(*Options)
	}{
		{name: "zip deflate", format: engine.FormatZip},
		{name: "zip store", format: engine.FormatZip, opts: func(o *Options) { o.ZipMethod = ZipStore }},
		{name: "zip zstd", format: engine.FormatZip, opts: func(o *Options) { o.ZipMethod = ZipZstd }},
		{name: "tar", format: engine.FormatTar},
		{name: "7z deflate", format: engine.FormatSevenZip},
		{name: "7z copy", format: engine.FormatSevenZip, opts: func(o *Options) { o.SevenZipMethod = SevenZipCopy }},
		{name: "7z zstd", format: engine.FormatSevenZip, opts: func(o *Options) { o.SevenZipMethod = SevenZipZstd }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := testOptions()
			if tt.opts != nil {
				tt.opts(&opts)
			}
			codec, err := For(tt.format, opts)
			require.NoError(t, err)

			buf, err := codec.Encode(sampleEntries())
			require.NoError(t, err)

			detected, err := engine.Detect(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.format, detected)

			got, err := codec.Decode(buf)
			require.NoError(t, err)

			want := sampleEntries()
			if tt.format != engine.FormatTar {
				want = slashDirs(want)
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestRoundTrip_Empty(t *testing.T) {
	for _, format := range engine.Formats {
		t.Run(format.String(), func(t *testing.T) {
			codec, err := For(format, testOptions())
			require.NoError(t, err)

			buf, err := codec.Encode(nil)
			require.NoError(t, err)
			assert.NotEmpty(t, buf)

			got, err := codec.Decode(buf)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}

func TestDecode_Corrupt(t *testing.T) {
	garbage := []byte(strings.Repeat("definitely not an archive ", 40))

	for _, format := range engine.Formats {
		t.Run(format.String(), func(t *testing.T) {
			codec, err := For(format, testOptions())
			require.NoError(t, err)

			_, err = codec.Decode(garbage)
			require.Error(t, err)

			var codecErr *engine.CodecError
			require.True(t, errors.As(err, &codecErr), "got %T: %v", err, err)
			assert.Equal(t, format, codecErr.Format)
			assert.Equal(t, "decode", codecErr.Op)
		})
	}
}

func TestDecode_Truncated(t *testing.T) {
	for _, format := range engine.Formats {
		t.Run(format.String(), func(t *testing.T) {
			codec, err := For(format, testOptions())
			require.NoError(t, err)

			buf, err := codec.Encode(sampleEntries())
			require.NoError(t, err)

			_, err = codec.Decode(buf[:len(buf)/2])
			require.Error(t, err)
		})
	}
}

func TestDecode_MaxEntrySize(t *testing.T) {
	for _, format := range engine.Formats {
		t.Run(format.String(), func(t *testing.T) {
			codec, err := For(format, testOptions())
			require.NoError(t, err)
			buf, err := codec.Encode(sampleEntries())
			require.NoError(t, err)

			opts := testOptions()
			opts.MaxEntrySize = 1024
			limited, err := For(format, opts)
			require.NoError(t, err)

			_, err = limited.Decode(buf)
			require.ErrorIs(t, err, engine.ErrEntryTooLarge)

			var ioErr *engine.IOError
			require.ErrorAs(t, err, &ioErr)
			assert.Equal(t, "big.bin", ioErr.Name)

			opts.MaxEntrySize = 1 << 20
			relaxed, err := For(format, opts)
			require.NoError(t, err)
			_, err = relaxed.Decode(buf)
			require.NoError(t, err)
		})
	}
}

func TestReadContent_LimitOnActualBytes(t *testing.T) {
	opts := Options{MaxEntrySize: 4}

	// Declared size lies: the reader yields more than announced.
	_, err := opts.readContent(engine.FormatTar, "liar", strings.NewReader("0123456789"), 2)
	require.ErrorIs(t, err, engine.ErrEntryTooLarge)

	data, err := opts.readContent(engine.FormatTar, "ok", strings.NewReader("0123"), 100)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123"), data)

	data, err = Options{}.readContent(engine.FormatTar, "empty", strings.NewReader(""), 0)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestCapacityHint(t *testing.T) {
	assert.Equal(t, 10, capacityHint(10, 0))
	assert.Equal(t, 5, capacityHint(10, 5))
	assert.Equal(t, maxPrealloc, capacityHint(1<<40, 0))
}

func TestParseMethods(t *testing.T) {
	zm, err := ParseZipMethod("")
	require.NoError(t, err)
	assert.Equal(t, ZipDeflate, zm)

	zm, err = ParseZipMethod("ZSTD")
	require.NoError(t, err)
	assert.Equal(t, ZipZstd, zm)

	_, err = ParseZipMethod("bzip2")
	require.Error(t, err)

	sm, err := ParseSevenZipMethod("copy")
	require.NoError(t, err)
	assert.Equal(t, SevenZipCopy, sm)

	_, err = ParseSevenZipMethod("lzma2")
	require.Error(t, err)
}

func TestEncode_UnsupportedMethod(t *testing.T) {
	opts := testOptions()
	opts.ZipMethod = "bzip2"
	opts.SevenZipMethod = "ppmd"

	_, err := NewZipCodec(opts).Encode(sampleEntries())
	var codecErr *engine.CodecError
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, "encode", codecErr.Op)

	_, err = NewSevenZipCodec(opts).Encode(sampleEntries())
	require.ErrorAs(t, err, &codecErr)
	assert.Equal(t, engine.FormatSevenZip, codecErr.Format)
}
