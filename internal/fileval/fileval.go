// Package fileval provides pre-read validation for files entering the
// fix pipeline: a size cap and a UTF-8 smoke check, so binary or
// oversized files are skipped before their content is loaded or sent
// to a provider.
package fileval

import (
	"fmt"
	"os"
)

// DefaultMaxFileSize caps files read by the fix pipeline when no
// explicit limit is configured.
const DefaultMaxFileSize = 1 << 20 // 1 MB

// FileTooLargeError is returned when a file exceeds the configured maximum size.
type FileTooLargeError struct {
	Path    string
	Size    int64
	MaxSize int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file too large (%d > %d bytes)", e.Size, e.MaxSize)
}

// NotUTF8Error is returned when a file does not appear to be valid UTF-8 text.
type NotUTF8Error struct {
	Path string
}

func (e *NotUTF8Error) Error() string {
	return "file does not appear to be valid UTF-8 text"
}

// ValidateFile checks that path is safe to read into the fix pipeline:
//  1. Regular-file check (no directories, sockets, devices)
//  2. Maximum size check (when maxSize > 0)
//  3. UTF-8 smoke check
func ValidateFile(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", path)
	}

	if maxSize > 0 && info.Size() > maxSize {
		return &FileTooLargeError{Path: path, Size: info.Size(), MaxSize: maxSize}
	}

	// Use maxSize as the read limit when positive; otherwise read up
	// to the default cap.
	readLimit := maxSize
	if readLimit <= 0 {
		readLimit = DefaultMaxFileSize
	}
	ok, err := LooksUTF8(path, readLimit)
	if err != nil {
		return err
	}
	if !ok {
		return &NotUTF8Error{Path: path}
	}

	return nil
}
