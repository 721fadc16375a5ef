package store

import (
	"context"
	"encoding/json"
)

// Logical collections kept in the backend store.
const (
	TableProjects        = "projects"
	TableTexts           = "texts"
	TableResponses       = "responses"
	TableResponseHistory = "response_history"
	TableAIAnalyses      = "ai_analyses"
)

// Record is one row/document as exchanged with the store.
type Record = map[string]any

// Store is the generic CRUD adapter over the backend document store. All
// mutation in the system funnels through single per-record calls to one of
// its implementations.
type Store interface {
	Get(ctx context.Context, table string, f Filters) ([]Record, error)
	Post(ctx context.Context, table string, rec Record) (Record, error)
	Patch(ctx context.Context, table string, f Filters, partial Record) ([]Record, error)
	Delete(ctx context.Context, table string, f Filters) error
}

// Decode maps a store record onto a typed model value.
func Decode(rec Record, v any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// DecodeAll maps a record list onto a typed slice pointer.
func DecodeAll(recs []Record, v any) error {
	raw, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Encode maps a typed model value to a store record.
func Encode(v any) (Record, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	rec := Record{}
	err = json.Unmarshal(raw, &rec)
	return rec, err
}
