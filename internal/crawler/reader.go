package crawler

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DefaultMaxFileSize bounds a single source file.
const DefaultMaxFileSize int64 = 2 * 1024 * 1024

// ErrFileTooLarge is returned for files above the size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ReadSource reads a file as UTF-8, falling back to ISO-8859-1 for bytes
// that are not valid UTF-8. maxSize <= 0 selects DefaultMaxFileSize.
func ReadSource(path string, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, info.Size(), maxSize)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeSource(raw)
}

// DecodeSource returns raw unchanged when it is valid UTF-8 and transcodes it
// from ISO-8859-1 otherwise.
func DecodeSource(raw []byte) ([]byte, error) {
	if utf8.Valid(raw) {
		return raw, nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source: %w", err)
	}
	return decoded, nil
}
