// Package plan implements the stages of the transfer-plan compiler: row
// validation, column classification, batching, well assignment, transfer
// grouping and instrument routing. Every stage is a pure function over its
// inputs; the orchestration in the protocol package wires them together.
package plan

import (
	"strings"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// ClassifyColumns binds each reagent to the first column whose lowercased
// name contains any of the reagent's match tokens. Columns are scanned in
// their original order, so the mapping is deterministic for a given column
// sequence and token table. Reagents with no matching column are simply
// absent from the result.
func ClassifyColumns(columns []string, reagents []string, tokens map[string][]string) models.ColumnBindings {
	bindings := make(models.ColumnBindings)
	for _, reagent := range reagents {
		for _, col := range columns {
			if containsAny(col, tokens[reagent]) {
				bindings[reagent] = col
				break
			}
		}
	}
	return bindings
}

// FindColumn returns the first column whose lowercased name contains any of
// the given tokens, or false if none does.
func FindColumn(columns []string, tokens ...string) (string, bool) {
	for _, col := range columns {
		if containsAny(col, tokens) {
			return col, true
		}
	}
	return "", false
}

func containsAny(name string, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, tok := range tokens {
		if tok != "" && strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
