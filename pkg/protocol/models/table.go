// Package models defines the data structures flowing through the plan
// compiler: the ingested table, column bindings, grouped transfer requests
// and per-segment plans.
package models

import (
	"math"
)

// Table is an in-memory tabular dataset with named columns.
type Table struct {
	// Columns holds the column names in their original order.
	Columns []string `json:"columns"`
	// Rows holds the data rows in file order.
	Rows []Row `json:"rows"`
}

// Row is a single table record. Rows are immutable after ingestion except
// for index renumbering when a segment is materialized.
type Row struct {
	// Index is the 0-based position of the row within its table or segment.
	Index int `json:"index"`
	// Values maps column name to the parsed cell value
	// (float64 for numeric cells, string otherwise).
	Values map[string]interface{} `json:"values"`
}

// Volume returns the row's value in the named column as a volume.
// The second return is false for absent or non-numeric cells. NaN counts
// as non-numeric: it can be neither grouped by value nor shown positive.
func (r Row) Volume(column string) (float64, bool) {
	v, ok := r.Values[column]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ColumnBindings maps a reagent identifier to the table column bound to it.
// Bindings are computed once per table and shared read-only by all segments.
type ColumnBindings map[string]string
