// Package store persists shareable chat documents.
//
// A document is a saved piece of chat input (wire JSON or legacy text)
// plus the flag needed to decode it again. Documents are created
// through the HTTP API and served back as rendered pages, so the store
// keeps the original input verbatim rather than any resolved form.
//
// Backends:
//   - memory: in-process storage for development and tests
//   - mongo: persistent storage for deployments, with a TTL index
//     handling expiration server-side
//
// # Usage
//
// Create and store a document:
//
//	doc, err := store.NewDocument("motd", raw, false, store.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	if err := st.Put(ctx, doc); err != nil {
//	    return err
//	}
//
// Retrieve it later:
//
//	doc, err := st.Get(ctx, id)
//	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrExpired) {
//	    // Gone.
//	}
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chatglass/chatglass/pkg/component"
	"github.com/chatglass/chatglass/pkg/component/legacy"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrExpired is returned when a document exists but has passed its
	// expiration time.
	ErrExpired = errors.New("document expired")
)

// DefaultTTL is how long a stored document lives unless the caller
// chooses otherwise.
const DefaultTTL = 30 * 24 * time.Hour

// Document is a saved chat input with enough metadata to decode and
// render it again.
type Document struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`

	// Raw is the original input: wire JSON, or legacy section-sign
	// text when Legacy is set.
	Raw    string `json:"raw" bson:"raw"`
	Legacy bool   `json:"legacy,omitempty" bson:"legacy,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// NewDocument creates a document with a fresh UUID. A non-positive ttl
// falls back to DefaultTTL; the raw input must decode, so a stored
// document can always be rendered later.
func NewDocument(name, raw string, legacyText bool, ttl time.Duration) (*Document, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	doc := &Document{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Raw:       raw,
		Legacy:    legacyText,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if _, err := doc.Component(); err != nil {
		return nil, err
	}
	return doc, nil
}

// IsExpired reports whether the document has passed its expiration.
func (d *Document) IsExpired() bool {
	return time.Now().After(d.ExpiresAt)
}

// Component decodes the stored input into a component tree.
func (d *Document) Component() (*component.Component, error) {
	if d.Legacy {
		return legacy.Parse(d.Raw), nil
	}
	return component.Decode([]byte(d.Raw))
}

// Store is the interface for document storage backends.
type Store interface {
	// Get retrieves a document by ID. Returns ErrNotFound for missing
	// documents and ErrExpired for expired ones.
	Get(ctx context.Context, id string) (*Document, error)

	// Put stores a document, replacing any existing document with the
	// same ID.
	Put(ctx context.Context, doc *Document) error

	// Delete removes a document. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, id string) error

	// List returns all unexpired documents, newest first.
	List(ctx context.Context) ([]*Document, error)

	// Cleanup removes expired documents. Backends with server-side
	// expiration may treat this as a no-op.
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
