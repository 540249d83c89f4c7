package upload_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/photoshare/core/upload"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAllowed(t *testing.T) {
	t.Parallel()
	for _, ct := range []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/bmp", "image/webp", "IMAGE/PNG; q=1"} {
		assert.True(t, upload.Allowed(ct), ct)
	}
	for _, ct := range []string{"", "image/svg+xml", "text/plain", "application/pdf"} {
		assert.False(t, upload.Allowed(ct), ct)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		file    string
		size    int64
		ct      string
		wantErr error
	}{
		{"ok", "a.png", 10, "image/png", nil},
		{"unknown size", "a.png", -1, "image/png", nil},
		{"at limit", "a.jpg", upload.MaxSize, "image/jpeg", nil},
		{"no name", " ", 10, "image/png", upload.ErrNoName},
		{"empty", "a.png", 0, "image/png", upload.ErrEmpty},
		{"too large", "a.png", upload.MaxSize + 1, "image/png", upload.ErrTooLarge},
		{"bad type", "a.txt", 10, "text/plain", upload.ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := upload.Validate(tt.file, tt.size, tt.ct)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFromBytes(t *testing.T) {
	t.Parallel()

	t.Run("png is sniffed and body is intact", func(t *testing.T) {
		t.Parallel()
		data := pngBytes(t)
		f, err := upload.FromBytes("dir/photo.jpg", data)
		require.NoError(t, err)

		assert.Equal(t, upload.FieldName, f.Field)
		assert.Equal(t, "photo.jpg", f.FileName)
		assert.Equal(t, "image/png", f.ContentType)
		assert.Equal(t, int64(len(data)), f.Size)

		got, err := io.ReadAll(f.Body)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.NoError(t, f.Close())
	})

	t.Run("text is rejected despite extension", func(t *testing.T) {
		t.Parallel()
		_, err := upload.FromBytes("photo.png", []byte("definitely not an image"))
		assert.ErrorIs(t, err, upload.ErrUnsupportedType)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := upload.FromBytes("photo.png", nil)
		assert.ErrorIs(t, err, upload.ErrEmpty)
	})
}

func TestNew_UnknownSize(t *testing.T) {
	t.Parallel()
	data := pngBytes(t)
	f, err := upload.New("p.png", bytes.NewReader(data), -1)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), f.Size)
}

func TestNew_UnknownSizeOverLimit(t *testing.T) {
	t.Parallel()
	data := append(pngBytes(t), bytes.Repeat([]byte{0}, int(upload.MaxSize))...)
	_, err := upload.New("big.png", bytes.NewReader(data), -1)
	assert.ErrorIs(t, err, upload.ErrTooLarge)
}

func TestNew_UnknownSizeMeasured(t *testing.T) {
	t.Parallel()
	data := append(pngBytes(t), bytes.Repeat([]byte{0}, 8000)...)
	f, err := upload.New("p.png", bytes.NewReader(data), -1)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), f.Size)
	assert.Equal(t, "image/png", f.ContentType)

	got, err := io.ReadAll(f.Body)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestNew_LargeBody(t *testing.T) {
	t.Parallel()
	data := append(pngBytes(t), bytes.Repeat([]byte{0}, 8000)...)
	f, err := upload.New("p.png", bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	got, err := io.ReadAll(f.Body)
	require.NoError(t, err)
	assert.Len(t, got, len(data))
}

func TestOpen(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t), 0o600))
	f, err := upload.Open(path)
	require.NoError(t, err)
	assert.Equal(t, "photo.png", f.FileName)
	require.NoError(t, f.Close())

	bad := filepath.Join(dir, "notes.png")
	require.NoError(t, os.WriteFile(bad, []byte(strings.Repeat("x", 100)), 0o600))
	_, err = upload.Open(bad)
	assert.ErrorIs(t, err, upload.ErrUnsupportedType)

	_, err = upload.Open(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
