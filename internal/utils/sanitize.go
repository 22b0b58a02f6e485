package utils

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\-\.\s]+`)

// SecureFilename strips path components and unsafe characters from a
// user-supplied filename.
func SecureFilename(filename string) string {
	base := filepath.Base(filename)
	clean := unsafeChars.ReplaceAllString(base, "")
	clean = strings.ReplaceAll(strings.TrimSpace(clean), " ", "_")
	if clean == "" || clean == "." {
		clean = "upload"
	}
	return clean
}

// UniqueImageKey builds a collision-free storage key for an upload by
// prefixing the sanitized filename with a uuid.
func UniqueImageKey(filename string) string {
	return uuid.NewString() + "_" + SecureFilename(filename)
}
