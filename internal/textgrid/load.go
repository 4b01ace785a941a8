package textgrid

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}

	errInvalidUTF8 = errors.New("content is not valid UTF-8")
)

// Load reads and parses the TextGrid at path. Every failure is a
// *LoadError naming the file.
func Load(path string, opts Options) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Name: filepath.Base(path), Err: err}
	}
	return Parse(path, raw, opts)
}

// Parse decodes raw file content and parses it. The document keeps raw
// as-is so Save reproduces it byte for byte.
func Parse(path string, raw []byte, opts Options) (*Document, error) {
	text, err := decode(raw)
	if err != nil {
		return nil, &LoadError{Name: filepath.Base(path), Err: err}
	}

	doc := ParseText(path, text, opts)
	doc.raw = raw
	return doc, nil
}

// Praat writes either UTF-8 or BOM-marked UTF-16 text files.
func decode(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, bomUTF16BE) || bytes.HasPrefix(raw, bomUTF16LE) {
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decode UTF-16: %w", err)
		}
		return string(out), nil
	}

	body := bytes.TrimPrefix(raw, bomUTF8)
	if !utf8.Valid(body) {
		return "", errInvalidUTF8
	}
	return string(body), nil
}
