package upload

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// FieldName is the multipart field the server reads the photo from.
const FieldName = "uploadedphoto"

// MaxSize is the largest accepted file, 10 MiB.
const MaxSize int64 = 10 << 20

// sniffLen matches mimetype's default read limit.
const sniffLen = 3072

var (
	ErrNoName          = errors.New("upload: file name is required")
	ErrEmpty           = errors.New("upload: file is empty")
	ErrTooLarge        = errors.New("upload: file exceeds the size limit")
	ErrUnsupportedType = errors.New("upload: unsupported file type")
)

var allowed = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/webp",
}

// Allowed reports whether contentType is one of the accepted image types.
// Parameters such as charset are ignored.
func Allowed(contentType string) bool {
	ct, _, _ := strings.Cut(contentType, ";")
	ct = strings.ToLower(strings.TrimSpace(ct))
	for _, a := range allowed {
		if ct == a {
			return true
		}
	}
	return false
}

// File is a validated photo ready to be sent as a single multipart attachment.
type File struct {
	Field       string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader

	closer io.Closer
}

// Close releases the underlying file, if any.
func (f File) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// Validate checks name, size and content type. size < 0 means unknown and is
// not checked; New always passes a measured size.
func Validate(name string, size int64, contentType string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNoName
	}
	if size == 0 {
		return ErrEmpty
	}
	if size > MaxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, size, MaxSize)
	}
	if !Allowed(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	return nil
}

// New sniffs the content type from r and validates the result. The returned
// File reads the sniffed prefix followed by the rest of r. When size is
// negative (unknown) r is read up to MaxSize+1 bytes to measure it.
func New(name string, r io.Reader, size int64) (File, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("upload: read %s: %w", name, err)
	}
	head = head[:n]
	if size < 0 {
		if n == sniffLen {
			rest, err := io.ReadAll(io.LimitReader(r, MaxSize+1-int64(n)))
			if err != nil {
				return File{}, fmt.Errorf("upload: read %s: %w", name, err)
			}
			head = append(head, rest...)
		}
		size = int64(len(head))
	}

	ct := mimetype.Detect(head).String()
	if err := Validate(name, size, ct); err != nil {
		return File{}, err
	}

	return File{
		Field:       FieldName,
		FileName:    filepath.Base(name),
		ContentType: ct,
		Size:        size,
		Body:        io.MultiReader(bytes.NewReader(head), r),
	}, nil
}

// FromBytes validates an in-memory file.
func FromBytes(name string, data []byte) (File, error) {
	return New(name, bytes.NewReader(data), int64(len(data)))
}

// Open validates the file at path. The caller must Close the result.
func Open(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("upload: %w", err)
	}
	st, err := fh.Stat()
	if err != nil {
		_ = fh.Close()
		return File{}, fmt.Errorf("upload: %w", err)
	}

	f, err := New(path, fh, st.Size())
	if err != nil {
		_ = fh.Close()
		return File{}, err
	}
	f.closer = fh
	return f, nil
}
