package extractor

import (
	"errors"
	"fmt"
	"mime"
	"strings"
)

const (
	MediaTypePDF   = "application/pdf"
	MediaTypePlain = "text/plain"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrExtractionFailed     = errors.New("text extraction failed")
)

// Extract returns the text content of data according to its declared media
// type. Only PDF and plain text are supported.
func Extract(data []byte, mediaType string) (string, error) {
	var (
		text string
		err  error
	)

	switch normalizeMediaType(mediaType) {
	case MediaTypePDF:
		text, err = ExtractPDF(data)
	case MediaTypePlain:
		text, err = ExtractTXT(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
	}

	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return text, nil
}

// normalizeMediaType drops parameters such as charset.
func normalizeMediaType(mediaType string) string {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mediaType))
	}
	return parsed
}
