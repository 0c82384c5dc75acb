package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when the document does not exist
var ErrNotFound = errors.New("document not found")

// Fields is the field set of a schemaless document
type Fields map[string]any

type serverTimestamp struct{}

// ServerTimestamp is a field value placeholder resolved by the store at write time
var ServerTimestamp = serverTimestamp{}

// Document is a single document read from a collection
type Document struct {
	ID     string
	Fields Fields
}

// Filter is an equality predicate on a top-level field
type Filter struct {
	Field string
	Value any
}

// Query narrows a collection read. A zero Limit means no limit.
type Query struct {
	Filters []Filter
	Limit   int
}

// Where returns a query with a single equality filter
func Where(field string, value any) Query {
	return Query{Filters: []Filter{{Field: field, Value: value}}}
}

// And adds another equality filter
func (q Query) And(field string, value any) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), Filter{Field: field, Value: value})
	return q
}

// WithLimit caps the number of returned documents
func (q Query) WithLimit(n int) Query {
	q.Limit = n
	return q
}

// Store is a collection-scoped document database
type Store interface {
	// Query returns the documents of a collection matching every filter, in store order.
	// The result is never nil.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Get returns ErrNotFound when the document is absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores a new document under a store-assigned id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)
	// Set overwrites the document (creating it if needed). It does not merge.
	Set(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// Toggle atomically creates the document if absent or deletes it if present.
	// It reports whether the document was created.
	Toggle(ctx context.Context, collection, id string, fields Fields) (bool, error)
}

// String returns a string field or "" when missing
func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// Time returns a timestamp field. Backends that serialize documents as JSON hand
// timestamps back as RFC 3339 strings, which are parsed here.
func (d Document) Time(field string) time.Time {
	switch v := d.Fields[field].(type) {
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// resolve copies fields, replacing ServerTimestamp with now
func resolve(fields Fields, now time.Time) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = now
			continue
		}
		out[k] = v
	}
	return out
}

// matches reports whether fields satisfy every filter
func matches(fields Fields, filters []Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || fmt.Sprint(v) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}
