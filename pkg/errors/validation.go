package errors

import (
	"strings"
	"unicode"
)

// ValidateDocumentName validates a stored document's display name.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 200 characters
func ValidateDocumentName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDocument, "document name cannot be empty")
	}

	if len(name) > 200 {
		return New(ErrCodeInvalidDocument, "document name too long (max 200 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDocument, "document name contains control characters")
		}
	}

	return nil
}

// ValidateDocumentID validates a document identifier from an untrusted source
// (URL path segment, API payload) before it reaches a storage backend.
// IDs are UUID-shaped: hex digits and dashes only, bounded length.
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidDocument, "document id cannot be empty")
	}

	if len(id) > 64 {
		return New(ErrCodeInvalidDocument, "document id too long")
	}

	for _, r := range id {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		case r == '-':
		default:
			return New(ErrCodeInvalidDocument, "document id contains invalid character %q", r)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety before it is emitted as a
// navigable link. It ensures the URL has a safe scheme (http or https), which
// keeps javascript: and data: payloads out of rendered output.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
