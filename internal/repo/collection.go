// Package repo provides typed CRUD repositories over the document store.
// A generic Collection handles identifier generation, timestamp stamping and
// validate-on-read; entity-specific rules live in the typed wrappers.
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/openbooks/ledger/internal/docstore"
)

// Document is the contract stored entities satisfy via ledger.DocMeta.
type Document interface {
	DocID() uuid.UUID
	SetDocID(uuid.UUID)
	StampCreated(time.Time)
	StampUpdated(time.Time)
	CreatedTime() time.Time
	Validate() error
}

// Doc constrains the pointer type of a stored entity.
type Doc[T any] interface {
	*T
	Document
}

// Collection is a typed CRUD view over one collection of documents under a
// namespace. All methods take the fully-resolved namespace; the repository
// never computes tenant routing.
type Collection[T any, P Doc[T]] struct {
	store docstore.Store
	name  string
	now   func() time.Time
}

// NewCollection binds a collection name to a store.
func NewCollection[T any, P Doc[T]](store docstore.Store, name string) *Collection[T, P] {
	return &Collection[T, P]{store: store, name: name, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (c *Collection[T, P]) WithNow(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// Path returns the document path for id within ns.
func (c *Collection[T, P]) Path(ns string, id uuid.UUID) string {
	return ns + "/" + c.name + "/" + id.String()
}

// Prefix returns the collection prefix within ns.
func (c *Collection[T, P]) Prefix(ns string) string { return ns + "/" + c.name + "/" }

// Create stamps identity and timestamps, validates and persists d.
func (c *Collection[T, P]) Create(ctx context.Context, ns string, d P) (T, error) {
	var zero T
	if d.DocID() == uuid.Nil {
		d.SetDocID(uuid.New())
	}
	d.StampCreated(c.now().UTC())
	if err := d.Validate(); err != nil {
		return zero, err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return zero, err
	}
	if err := c.store.Set(ctx, c.Path(ns, d.DocID()), raw); err != nil {
		return zero, err
	}
	return *d, nil
}

// Get fetches and validates one document.
func (c *Collection[T, P]) Get(ctx context.Context, ns string, id uuid.UUID) (T, error) {
	var out T
	raw, err := c.store.Get(ctx, c.Path(ns, id))
	if err != nil {
		return out, err
	}
	if err := decode(raw, P(&out)); err != nil {
		return out, err
	}
	return out, nil
}

// Save replaces the stored document after bumping updated_at. The target
// must already exist.
func (c *Collection[T, P]) Save(ctx context.Context, ns string, d P) (T, error) {
	var zero T
	if _, err := c.store.Get(ctx, c.Path(ns, d.DocID())); err != nil {
		return zero, err
	}
	d.StampUpdated(c.now().UTC())
	if err := d.Validate(); err != nil {
		return zero, err
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return zero, err
	}
	if err := c.store.Set(ctx, c.Path(ns, d.DocID()), raw); err != nil {
		return zero, err
	}
	return *d, nil
}

// Patch merges a partial field map into the stored document, bumping
// updated_at in the same write.
func (c *Collection[T, P]) Patch(ctx context.Context, ns string, id uuid.UUID, fields map[string]any) error {
	merged := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		merged[k] = v
	}
	merged["updated_at"] = c.now().UTC()
	return c.store.Apply(ctx, []docstore.Write{{Path: c.Path(ns, id), Fields: merged}})
}

// Delete removes the document. Referential-integrity checks happen above.
func (c *Collection[T, P]) Delete(ctx context.Context, ns string, id uuid.UUID) error {
	return c.store.Delete(ctx, c.Path(ns, id))
}

// List returns every valid document in the collection, ordered by creation
// time then id for stable output.
func (c *Collection[T, P]) List(ctx context.Context, ns string) ([]T, error) {
	raws, err := c.store.List(ctx, c.Prefix(ns))
	if err != nil {
		return nil, err
	}
	return c.decodeAll(raws)
}

// Query returns documents whose top-level field equals value.
func (c *Collection[T, P]) Query(ctx context.Context, ns, field string, value any) ([]T, error) {
	raws, err := c.store.Query(ctx, c.Prefix(ns), field, value)
	if err != nil {
		return nil, err
	}
	return c.decodeAll(raws)
}

func (c *Collection[T, P]) decodeAll(raws map[string]json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for path, raw := range raws {
		var item T
		if err := decode(raw, P(&item)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := P(&out[i]), P(&out[j])
		ci, cj := di.CreatedTime(), dj.CreatedTime()
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return di.DocID().String() < dj.DocID().String()
	})
	return out, nil
}

// decode unmarshals raw into d and rejects documents that fail shape
// validation rather than propagating loosely-typed data upward.
func decode(raw json.RawMessage, d Document) error {
	if err := json.Unmarshal(raw, d); err != nil {
		return fmt.Errorf("malformed document: %w", err)
	}
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}
