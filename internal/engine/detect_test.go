package engine

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipBytes(t *testing.T, names ...string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, name := range names {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func tarBytes(t *testing.T, name string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	tw := tar.NewWriter(buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: 2, Typeflag: tar.TypeReg}))
	_, err := tw.Write([]byte("hi"))
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func TestDetect(t *testing.T) {
	sevenZipHeader := append([]byte{'7', 'z', 0xbc, 0xaf, 0x27, 0x1c, 0, 4}, make([]byte, 24)...)

	tests := []struct {
		name    string
		buf     []byte
		want    Format
		wantErr bool
	}{
		{name: "zip", buf: zipBytes(t, "a.txt"), want: FormatZip},
		{name: "jar is zip", buf: zipBytes(t, "META-INF/MANIFEST.MF"), want: FormatZip},
		{name: "tar", buf: tarBytes(t, "a.txt"), want: FormatTar},
		{name: "7z signature", buf: sevenZipHeader, want: FormatSevenZip},
		{name: "empty", buf: nil, wantErr: true},
		{name: "plain text", buf: []byte("just some text, not an archive"), wantErr: true},
		{name: "gzip", buf: []byte{0x1f, 0x8b, 0x08, 0, 0, 0, 0, 0, 0, 0x03}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.buf)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnrecognizedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestErrors(t *testing.T) {
	codecErr := &CodecError{Format: FormatZip, Op: "decode", Err: ErrEntryTooLarge}
	assert.Equal(t, "zip decode: archive entry too large", codecErr.Error())
	assert.ErrorIs(t, codecErr, ErrEntryTooLarge)

	ioErr := &IOError{Format: FormatTar, Name: "a.txt", Err: ErrEntryTooLarge}
	assert.Equal(t, `tar entry "a.txt": archive entry too large`, ioErr.Error())
	assert.ErrorIs(t, ioErr, ErrEntryTooLarge)
}
