package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// listingExtensions are the file extensions accepted for listings.
var listingExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// ValidatePath validates a user-supplied file path.
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

// ValidateListingPath validates a listing path and its extension.
func ValidateListingPath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !listingExtensions[ext] {
		return New(ErrCodeInvalidPath, "unsupported listing extension %q (want .yaml, .yml or .json)", ext)
	}
	return nil
}

// ValidateWorkers validates a worker count. Zero selects the default.
func ValidateWorkers(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidInput, "workers must not be negative, got %d", n)
	}
	const maxWorkers = 1024
	if n > maxWorkers {
		return New(ErrCodeInvalidInput, "workers too large (max %d), got %d", maxWorkers, n)
	}
	return nil
}

// ValidateOpcodeName validates an opcode mnemonic from a listing.
func ValidateOpcodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidListing, "opcode name cannot be empty")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return New(ErrCodeInvalidListing, "opcode name %q contains invalid character %q", name, r)
		}
	}
	return nil
}
