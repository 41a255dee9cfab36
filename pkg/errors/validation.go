package errors

import (
	"strings"
	"unicode"
)

// ValidateDepths checks the ungroup thresholds.
// Depths must be non-negative and start must not exceed max.
func ValidateDepths(start, max, keep int) error {
	if start < 0 || max < 0 || keep < 0 {
		return New(ErrCodeInvalidConfig, "depths must be non-negative (start=%d max=%d keep=%d)", start, max, keep)
	}
	if start > max {
		return New(ErrCodeInvalidConfig, "start depth %d exceeds max depth %d", start, max)
	}
	return nil
}

// ValidateIDPrefix validates a prefix used for generated ids and labels.
// It must be non-empty, start with a letter and contain no whitespace or
// characters that would break a url(#id) reference.
func ValidateIDPrefix(prefix string) error {
	if prefix == "" {
		return New(ErrCodeInvalidConfig, "prefix cannot be empty")
	}
	if len(prefix) > 64 {
		return New(ErrCodeInvalidConfig, "prefix too long (max 64 characters)")
	}
	for i, r := range prefix {
		if i == 0 && !unicode.IsLetter(r) {
			return New(ErrCodeInvalidConfig, "prefix must start with a letter: %q", prefix)
		}
		if unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune("#()\"'<>&", r) {
			return New(ErrCodeInvalidConfig, "prefix contains invalid character %q", r)
		}
	}
	return nil
}

// ValidateKinds validates a list of element local names.
func ValidateKinds(kinds []string) error {
	for _, k := range kinds {
		if k == "" {
			return New(ErrCodeInvalidConfig, "element kind cannot be empty")
		}
		if strings.ContainsAny(k, " \t\n<>/") {
			return New(ErrCodeInvalidConfig, "invalid element kind: %q", k)
		}
	}
	return nil
}

// ValidatePath validates a user-supplied file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
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
