package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

func ExtractTXT(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty text file")
	}

	text, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text file: %w", err)
	}

	text = cleanText(text)

	if text == "" {
		return "", fmt.Errorf("no text could be extracted from file")
	}

	return text, nil
}

// decodeText prefers UTF-8. BOM-marked UTF-16 and legacy Windows-1252 input
// are transcoded.
func decodeText(data []byte) (string, error) {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return string(data[3:]), nil
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return transcode(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	}

	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return transcode(data, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	return transcode(data, charmap.Windows1252.NewDecoder())
}

func transcode(data []byte, t transform.Transformer) (string, error) {
	decoded, _, err := transform.Bytes(t, data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// cleanText normalizes line endings and strips NUL bytes. Line content is
// left untouched.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")

	return strings.TrimSpace(text)
}
