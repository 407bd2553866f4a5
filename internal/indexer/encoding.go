package indexer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

// decodeText decodes raw file bytes through a small ordered fallback chain:
// UTF-8, BOM-marked UTF-16, then Windows-1252. The first encoding that
// decodes cleanly wins. Content that still looks binary after the chain is
// a decode failure.
func decodeText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	if bytes.HasPrefix(data, []byte{0xFE, 0xFF}) || bytes.HasPrefix(data, []byte{0xFF, 0xFE}) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		out, err := dec.Bytes(data)
		if err != nil {
			return "", fmt.Errorf("indexer: utf-16 decode: %w", apperr.ErrDecodeFailure)
		}
		return string(out), nil
	}

	if utf8.Valid(data) {
		if bytes.IndexByte(data, 0) >= 0 {
			return "", fmt.Errorf("indexer: binary content: %w", apperr.ErrDecodeFailure)
		}
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}

	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil || bytes.IndexByte(out, 0) >= 0 {
		return "", fmt.Errorf("indexer: no supported encoding matched: %w", apperr.ErrDecodeFailure)
	}
	return string(out), nil
}
