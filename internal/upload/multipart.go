package upload

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
)

// fileField is the multipart field name the grading server expects.
const fileField = "file"

// buildMultipart produces the request body for an image reference.
// Two input forms must yield an equivalent multipart entry: an
// inline-encoded payload ("data:<mediatype>;base64,<data>") and a path
// to an image file on disk.
func buildMultipart(imageRef string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	var err error
	if isInlineRef(imageRef) {
		err = writeInlinePart(w, imageRef)
	} else {
		err = writeFilePart(w, imageRef)
	}
	if err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// isInlineRef reports whether the reference carries the image bytes
// inline rather than naming a file.
func isInlineRef(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// writeInlinePart decodes a base64 data URI into a form file part.
func writeInlinePart(w *multipart.Writer, ref string) error {
	meta, data, ok := strings.Cut(ref, ",")
	if !ok {
		return &Error{Kind: KindBadRequest, Message: "malformed inline image reference"}
	}
	if !strings.HasSuffix(meta, ";base64") {
		return &Error{Kind: KindBadRequest, Message: "inline image reference is not base64-encoded"}
	}

	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return &Error{Kind: KindBadRequest, Message: "invalid base64 image data", Err: err}
	}

	part, err := w.CreateFormFile(fileField, inlineFilename(meta))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	_, err = part.Write(decoded)
	return err
}

// writeFilePart streams a file from disk into a form file part.
func writeFilePart(w *multipart.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &Error{Kind: KindBadRequest, Message: "image file not readable", Err: err}
	}
	defer f.Close()

	part, err := w.CreateFormFile(fileField, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("copy image file: %w", err)
	}
	return nil
}

// inlineFilename derives a filename from the data URI media type so
// both input forms produce an equivalent part.
func inlineFilename(meta string) string {
	mediaType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	ext := ".jpg"
	switch mediaType {
	case "image/png":
		ext = ".png"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return "upload" + ext
}
