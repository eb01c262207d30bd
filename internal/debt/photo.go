package debt

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
)

const dataURIPrefix = "data:"

// PhotoFromFile converts an uploaded file into the data URI the ledger
// stores. Images are embedded as-is; a PDF receipt has its first page
// rendered to PNG so that everything at rest is an image payload.
func PhotoFromFile(content []byte, maxBytes int64) (string, error) {
	if len(content) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(content)) > maxBytes {
		return "", &FileTooLargeError{Size: int64(len(content)), Limit: maxBytes}
	}

	mime := http.DetectContentType(content)
	switch {
	case strings.HasPrefix(mime, "image/"):
		return encodeDataURI(mime, content), nil
	case mime == "application/pdf":
		return pdfToPhoto(content)
	default:
		return "", fmt.Errorf("%w (got %s)", ErrUnsupportedMedia, mime)
	}
}

// pdfToPhoto renders the first page of a PDF to a PNG data URI.
func pdfToPhoto(content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return "", errors.New("PDF has no pages")
	}

	img, err := doc.Image(0)
	if err != nil {
		return "", fmt.Errorf("failed to render PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	return encodeDataURI("image/png", buf.Bytes()), nil
}

func encodeDataURI(mime string, content []byte) string {
	return dataURIPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// decodeDataURI returns the decoded payload of an image data URI, or an
// error describing why the URI is not acceptable.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, dataURIPrefix+"image/") {
		return nil, errors.New("photo must be an image data URI")
	}
	rest := uri[len(dataURIPrefix):]
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errors.New("photo data URI must be base64 encoded")
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("photo data URI has invalid base64 payload")
	}
	return decoded, nil
}

// unionPhotos merges photo lists keeping existing order first, then new
// ones, with duplicates removed by exact payload equality. Merging the
// same payload twice is a no-op.
func unionPhotos(existing, added []string) []string {
	seen := make(map[string]bool, len(existing)+len(added))
	merged := make([]string, 0, len(existing)+len(added))
	for _, lists := range [][]string{existing, added} {
		for _, uri := range lists {
			if seen[uri] {
				continue
			}
			seen[uri] = true
			merged = append(merged, uri)
		}
	}
	return merged
}
