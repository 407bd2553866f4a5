package indexer

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"github.com/eristoddle/mdquery-sub000/internal/apperr"
)

func TestDecodeText_UTF8(t *testing.T) {
	got, err := decodeText([]byte("# Héllo\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Héllo\n" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeText_UTF8BOMStripped(t *testing.T) {
	got, err := decodeText([]byte("\xef\xbb\xbf# Title\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Title\n" {
		t.Errorf("got %q, want BOM removed", got)
	}
}

func TestDecodeText_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte("# Wide\n"))
	if err != nil {
		t.Fatal(err)
	}
	got, err := decodeText(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != "# Wide\n" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeText_Windows1252Fallback(t *testing.T) {
	// 0xE9 is é in Windows-1252 and invalid as standalone UTF-8.
	got, err := decodeText([]byte("caf\xe9\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "café\n" {
		t.Errorf("got %q", got)
	}
}

func TestDecodeText_BinaryRejected(t *testing.T) {
	_, err := decodeText([]byte{0x00, 0x01, 0x02, 0xff})
	if !errors.Is(err, apperr.ErrDecodeFailure) {
		t.Errorf("err = %v, want ErrDecodeFailure", err)
	}
}

func TestDecodeText_Empty(t *testing.T) {
	got, err := decodeText(nil)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
