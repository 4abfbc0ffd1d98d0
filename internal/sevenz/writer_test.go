package sevenz

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"testing"
	"time"

	"github.com/bodgit/sevenzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendNumber(t *testing.T) {
	tests := []struct {
		v    uint64
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x80}},
		{0x3fff, []byte{0xbf, 0xff}},
		{0x4000, []byte{0xc0, 0x00, 0x40}},
		{0x1fffff, []byte{0xdf, 0xff, 0xff}},
		{0x200000, []byte{0xe0, 0x00, 0x00, 0x20}},
		{1 << 56, []byte{0xff, 0, 0, 0, 0, 0, 0, 0, 0x01}},
		{^uint64(0), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, appendNumber(nil, tt.v), "value %#x", tt.v)
	}
}

func TestBitVector(t *testing.T) {
	assert.Equal(t, []byte{0xa0}, bitVector([]bool{true, false, true}))
	assert.Equal(t, []byte{0x00, 0x80}, bitVector([]bool{false, false, false, false, false, false, false, false, true}))
	assert.Empty(t, bitVector(nil))
	assert.True(t, anySet([]bool{false, true}))
	assert.False(t, anySet([]bool{false}))
}

func TestFiletime(t *testing.T) {
	assert.Equal(t, uint64(filetimeEpochOffset), filetime(time.Unix(0, 0)))
	assert.Equal(t, uint64(filetimeEpochOffset+10_000_000), filetime(time.Unix(1, 0)))
	assert.Equal(t, uint64(0), filetime(time.Time{}))
}

func TestWriter_SignatureHeader(t *testing.T) {
	w := NewWriter(Copy)
	require.NoError(t, w.AddFile("a.txt", []byte("abc"), time.Unix(1700000000, 0)))
	buf, err := w.Finish()
	require.NoError(t, err)

	assert.Equal(t, Signature, buf[:6])
	assert.Equal(t, []byte{0, 4}, buf[6:8])
	assert.Equal(t, crc32.ChecksumIEEE(buf[12:32]), binary.LittleEndian.Uint32(buf[8:12]))

	offset := binary.LittleEndian.Uint64(buf[12:20])
	size := binary.LittleEndian.Uint64(buf[20:28])
	assert.Equal(t, uint64(3), offset, "copy coder stores the content verbatim")
	assert.Equal(t, []byte("abc"), buf[32:35])
	assert.Equal(t, uint64(len(buf)), signatureHeaderSize+offset+size)

	header := buf[signatureHeaderSize+offset:]
	assert.Equal(t, crc32.ChecksumIEEE(header), binary.LittleEndian.Uint32(buf[28:32]))
	assert.Equal(t, byte(idHeader), header[0])
	assert.Equal(t, byte(idEnd), header[len(header)-1])
}

func TestWriter_ReadBack(t *testing.T) {
	modified := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

	for _, coder := range []Coder{Copy, Deflate, Zstd} {
		t.Run(coder.Name, func(t *testing.T) {
			w := NewWriter(coder)
			require.NoError(t, w.AddFile("first.txt", []byte("first file\n"), modified))
			require.NoError(t, w.AddDirectory("nested", modified))
			require.NoError(t, w.AddFile("nested/empty", nil, modified))
			require.NoError(t, w.AddFile("nested/zażółć.txt", bytes.Repeat([]byte("gęślą jaźń "), 500), modified))

			buf, err := w.Finish()
			require.NoError(t, err)

			r, err := sevenzip.NewReader(bytes.NewReader(buf), int64(len(buf)))
			require.NoError(t, err)
			require.Len(t, r.File, 4)

			wantNames := []string{"first.txt", "nested/", "nested/empty", "nested/zażółć.txt"}
			wantDirs := []bool{false, true, false, false}
			for i, f := range r.File {
				assert.Equal(t, wantNames[i], f.Name)
				assert.Equal(t, wantDirs[i], f.FileInfo().IsDir(), f.Name)
				assert.True(t, modified.Equal(f.Modified), "%s modified %s", f.Name, f.Modified)
			}

			contents := map[string]string{}
			for _, f := range r.File {
				if f.FileInfo().IsDir() {
					continue
				}
				rc, err := f.Open()
				require.NoError(t, err)
				data, err := io.ReadAll(rc)
				require.NoError(t, err)
				require.NoError(t, rc.Close())
				contents[f.Name] = string(data)
			}

			assert.Equal(t, "first file\n", contents["first.txt"])
			assert.Empty(t, contents["nested/empty"])
			assert.Equal(t, string(bytes.Repeat([]byte("gęślą jaźń "), 500)), contents["nested/zażółć.txt"])
		})
	}
}

func TestWriter_OnlyEmptyStreams(t *testing.T) {
	w := NewWriter(Deflate)
	require.NoError(t, w.AddDirectory("a", time.Time{}))
	require.NoError(t, w.AddFile("a/b", []byte{}, time.Time{}))
	buf, err := w.Finish()
	require.NoError(t, err)

	assert.Equal(t, uint64(0), binary.LittleEndian.Uint64(buf[12:20]))

	r, err := sevenzip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, err)
	require.Len(t, r.File, 2)
	assert.True(t, r.File[0].FileInfo().IsDir())
	assert.False(t, r.File[1].FileInfo().IsDir())
}

func TestWriter_Empty(t *testing.T) {
	buf, err := NewWriter(Copy).Finish()
	require.NoError(t, err)

	header := buf[signatureHeaderSize:]
	assert.Equal(t, []byte{idHeader, idFilesInfo, 0x00, idEnd, idEnd}, header)

	r, err := sevenzip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	require.NoError(t, err)
	assert.Empty(t, r.File)
}

func TestWriter_Finished(t *testing.T) {
	w := NewWriter(Copy)
	_, err := w.Finish()
	require.NoError(t, err)

	_, err = w.Finish()
	require.ErrorIs(t, err, ErrFinished)
	require.ErrorIs(t, w.AddFile("x", []byte("x"), time.Time{}), ErrFinished)
	require.ErrorIs(t, w.AddDirectory("x", time.Time{}), ErrFinished)
}
