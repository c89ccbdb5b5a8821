package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// documentIDRegex matches store document identifiers: UUIDs or simple slugs.
var documentIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateDocumentID validates a store document identifier.
// It rejects identifiers that could escape a key namespace or a cache directory.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - Maximum length of 128 characters
//   - Letters, digits, '.', '_' and '-' only, starting with a letter or digit
//   - No path traversal sequences (..)
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "document id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "document id too long (max 128 characters)")
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "document id cannot contain path traversal sequences (..)")
	}

	if !documentIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid document id: %q", id)
	}

	return nil
}

// ValidateNamespace validates a key namespace used to scope stored documents.
// An empty namespace is valid and means "no scoping".
func ValidateNamespace(ns string) error {
	if len(ns) > 64 {
		return New(ErrCodeInvalidInput, "namespace too long (max 64 characters)")
	}

	for _, r := range ns {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "namespace contains invalid characters")
		}
	}

	return nil
}

// ValidatePath validates a file path given on the command line.
// Unlike repository paths, absolute paths are allowed; "-" means stdin/stdout
// and is always valid.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if path == "-" {
		return nil
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
