package fileval

import (
	"io"
	"os"
	"unicode/utf8"
)

const chunkSize = 32 * 1024 // 32 KB

// LooksUTF8 reports whether the file at path appears to contain valid
// UTF-8 text. Reading stops after maxBytes, making this a cheap smoke
// test rather than a full-file scan.
func LooksUTF8(path string, maxBytes int64) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	return readerLooksUTF8(f, maxBytes)
}

// readerLooksUTF8 validates r in 32 KB chunks, carrying up to 3
// trailing bytes between reads so a code point split across a chunk
// boundary is not misread as invalid. It fails fast on the first
// definitely-invalid chunk.
func readerLooksUTF8(r io.Reader, maxBytes int64) (bool, error) {
	buf := make([]byte, chunkSize)
	var carry []byte // up to 3 bytes from the previous read
	var totalRead int64

	for maxBytes <= 0 || totalRead < maxBytes {
		n, readErr := r.Read(buf)
		if n == 0 && readErr != nil {
			if readErr == io.EOF {
				if len(carry) > 0 && !utf8.Valid(carry) {
					return false, nil
				}
				break
			}
			return false, readErr
		}

		totalRead += int64(n)

		chunk := buf[:n]
		if len(carry) > 0 {
			chunk = append(carry, chunk...)
			carry = nil
		}

		// A code point is at most 4 bytes, so up to 3 trailing bytes
		// may belong to a rune the next read finishes.
		trail := trailingIncomplete(chunk)
		if trail > 0 {
			carry = make([]byte, trail)
			copy(carry, chunk[len(chunk)-trail:])
			chunk = chunk[:len(chunk)-trail]
		}

		if !utf8.Valid(chunk) {
			return false, nil
		}

		if readErr == io.EOF {
			if len(carry) > 0 && !utf8.Valid(carry) {
				return false, nil
			}
			break
		}
	}

	return true, nil
}

// trailingIncomplete returns the number of trailing bytes in data that
// form an incomplete UTF-8 sequence, 0 when data ends on a code-point
// boundary.
func trailingIncomplete(data []byte) int {
	n := len(data)
	if n == 0 {
		return 0
	}

	// Walk backwards up to 3 bytes looking for the leading byte of a
	// multi-byte sequence that is not complete yet.
	for i := 1; i <= 3 && i <= n; i++ {
		b := data[n-i]
		if b < 0x80 {
			// ASCII byte, so everything before it is complete.
			return 0
		}
		if b&0xC0 == 0xC0 {
			// Leading byte of a multi-byte sequence.
			var expected int
			switch {
			case b&0xE0 == 0xC0:
				expected = 2
			case b&0xF0 == 0xE0:
				expected = 3
			case b&0xF8 == 0xF0:
				expected = 4
			default:
				// Invalid leading byte, not an incomplete one.
				return 0
			}
			if i < expected {
				return i
			}
			// The sequence is complete.
			return 0
		}
		// Continuation byte (10xxxxxx), keep scanning.
	}

	return 0
}
