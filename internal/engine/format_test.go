package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "zip", want: FormatZip},
		{input: "ZIP", want: FormatZip},
		{input: ".zip", want: FormatZip},
		{input: "tar", want: FormatTar},
		{input: " tar ", want: FormatTar},
		{input: "7z", want: FormatSevenZip},
		{input: ".7z", want: FormatSevenZip},
		{input: "sevenzip", want: FormatSevenZip},
		{input: "rar", wantErr: true},
		{input: "", wantErr: true},
		{input: "tar.gz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_Strings(t *testing.T) {
	tests := []struct {
		format    Format
		name      string
		ext       string
		mediaType string
	}{
		{FormatZip, "zip", ".zip", "application/zip"},
		{FormatTar, "tar", ".tar", "application/x-tar"},
		{FormatSevenZip, "7z", ".7z", "application/x-7z-compressed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.format.Valid())
			assert.Equal(t, tt.name, tt.format.String())
			assert.Equal(t, tt.ext, tt.format.Extension())
			assert.Equal(t, tt.mediaType, tt.format.MediaType())

			parsed, err := ParseFormat(tt.format.String())
			require.NoError(t, err)
			assert.Equal(t, tt.format, parsed)
		})
	}

	assert.False(t, Format(0).Valid())
	assert.Equal(t, "format(42)", Format(42).String())
	assert.Empty(t, Format(42).Extension())
}

func TestFormat_Text(t *testing.T) {
	var f Format
	require.NoError(t, f.UnmarshalText([]byte("7z")))
	assert.Equal(t, FormatSevenZip, f)

	text, err := f.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "7z", string(text))

	require.ErrorIs(t, f.UnmarshalText([]byte("cpio")), ErrUnknownFormat)

	_, err = Format(0).MarshalText()
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromExtension(t *testing.T) {
	f, ok := FormatFromExtension(".TAR")
	assert.True(t, ok)
	assert.Equal(t, FormatTar, f)

	_, ok = FormatFromExtension(".gz")
	assert.False(t, ok)
}
