// Package docstore defines the document store capability the ledger engine
// is built on: a path-addressed tree of JSON documents with get/set/delete,
// prefix listing, field-equality queries and an atomic multi-path batch
// update. Drivers exist for memory (dev/tests), Redis and Postgres.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/openbooks/ledger/internal/errs"
)

// Guard is an optional precondition on a batch write: the named field of the
// current document must equal the given value or the whole batch is refused
// with errs.ErrConflict. This is the optimistic check closing the
// read-then-write window during balance posting.
type Guard struct {
	Field  string
	Equals any
}

// Write is one element of an atomic batch: a partial field map merged into
// the document at Path.
type Write struct {
	Path   string
	Fields map[string]any
	Guard  *Guard
}

// Store is the document store adapter. Apply must be all-or-nothing: either
// every write lands or none does.
type Store interface {
	// Get returns the document at path, or errs.ErrNotFound.
	Get(ctx context.Context, path string) (json.RawMessage, error)
	// Set stores doc at path, replacing any existing document.
	Set(ctx context.Context, path string, doc json.RawMessage) error
	// Apply merges every write's field map into its target document as one
	// atomic batch. A missing target yields errs.ErrNotFound, a failed
	// guard errs.ErrConflict; in both cases nothing is applied.
	Apply(ctx context.Context, writes []Write) error
	// Delete removes the document at path. Missing documents are not an error.
	Delete(ctx context.Context, path string) error
	// List returns all documents whose path starts with prefix.
	List(ctx context.Context, prefix string) (map[string]json.RawMessage, error)
	// Query returns documents under prefix whose top-level field equals value.
	Query(ctx context.Context, prefix, field string, value any) (map[string]json.RawMessage, error)
	// Ready reports whether the backing store is reachable.
	Ready(ctx context.Context) error
}

// jsonEqual compares two values through their canonical JSON encoding.
// Guard values arrive typed (int64, string) while stored fields decode to
// json.Number/float64; comparing encodings sidesteps that mismatch.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

// mergeFields decodes raw, overlays fields and re-encodes. Used by drivers
// that implement partial updates in the client.
func mergeFields(raw json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	doc := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errs.ErrInvalid
		}
	}
	for k, v := range fields {
		doc[k] = v
	}
	return json.Marshal(doc)
}

// checkGuard evaluates g against the raw document.
func checkGuard(raw json.RawMessage, g *Guard) error {
	if g == nil {
		return nil
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return errs.ErrInvalid
	}
	if !jsonEqual(doc[g.Field], g.Equals) {
		return errs.ErrConflict
	}
	return nil
}

// fieldEquals reports whether the document's top-level field equals value.
func fieldEquals(raw json.RawMessage, field string, value any) bool {
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false
	}
	return jsonEqual(doc[field], value)
}
