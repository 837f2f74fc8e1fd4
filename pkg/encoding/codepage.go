// Package encoding provides text encoding utilities for A.I.M. file formats.
//
// Names inside game files are stored as fixed-width, NUL-padded strings in a
// single-byte code page (Windows-1251 for the original Russian releases).
package encoding

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DefaultCodePage is the code page of the original game data.
const DefaultCodePage = "Windows 1251"

var current = charmap.Windows1251

// SetCodePage selects the code page used to decode fixed strings.
// The name must match a charmap name such as "Windows 1251" or "Windows 1252".
func SetCodePage(name string) error {
	cm, err := lookup(name)
	if err != nil {
		return err
	}
	current = cm
	return nil
}

// CodePage returns the name of the active code page.
func CodePage() string {
	return current.String()
}

// CodePages lists all supported code page names.
func CodePages() []string {
	var names []string
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			names = append(names, cm.String())
		}
	}
	return names
}

func lookup(name string) (*charmap.Charmap, error) {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok && strings.EqualFold(cm.String(), name) {
			return cm, nil
		}
	}
	return nil, fmt.Errorf("unknown code page %q", name)
}

// DecodeBytes converts code-page bytes to a UTF-8 string.
// Returns the input unchanged if conversion fails.
func DecodeBytes(data []byte) string {
	result, _, err := transform.Bytes(current.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EncodeString converts a UTF-8 string to code-page bytes.
// Characters outside the code page are replaced by the encoder.
func EncodeString(s string) []byte {
	result, _, err := transform.Bytes(current.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// FixedStringToUTF8 decodes a fixed-size NUL-terminated field.
// Bytes after the first NUL are ignored.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return DecodeBytes(data)
}

// UTF8ToFixedString encodes s into a zero-padded field of the given size.
// Longer strings are truncated.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, EncodeString(s))
	return result
}
