package importer

import "github.com/google/uuid"

// Suggestion flags an imported description as similar to existing vendors.
// The merge decision is always the user's; nothing is renamed automatically.
type Suggestion struct {
	Row       int
	Cleaned   string
	SimilarTo []string
}

// Result summarizes one import batch.
type Result struct {
	BatchID     string
	File        string
	Imported    int
	TxnIDs      []string
	Errors      []RowError
	Suggestions []Suggestion
}

// NewResult creates a Result with a fresh batch ID.
func NewResult(file string) *Result {
	return &Result{BatchID: uuid.NewString(), File: file}
}
