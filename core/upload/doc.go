// Package upload validates photo files before they are handed to the API
// client. The client sends what it is given; checking type and size is the
// caller's job, and this package is how callers do it.
//
// The content type is sniffed from the file's first bytes with
// gabriel-vasile/mimetype rather than trusted from the extension:
//
//	f, err := upload.Open("/tmp/sunset.jpg")
//	if err != nil {
//		// errors.Is(err, upload.ErrUnsupportedType), upload.ErrTooLarge, ...
//	}
//	defer f.Close()
//	photo, err := store.UploadPhoto(ctx, f)
//
// Accepted types are JPEG, PNG, GIF, BMP and WebP up to MaxSize bytes.
package upload
