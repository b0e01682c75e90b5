package plan

import (
	"math"
	"testing"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

func TestFilterRows(t *testing.T) {
	rows := []models.Row{
		volumeRow(0, map[string]float64{"Remaining_Water": 50}),
		volumeRow(1, map[string]float64{"Remaining_Water": 0}),
		volumeRow(2, map[string]float64{"Remaining_Water": -12.5}),
		volumeRow(3, map[string]float64{"Remaining_Water": 0.1}),
		{Index: 4, Values: map[string]interface{}{"Remaining_Water": "oops"}},
		{Index: 5, Values: map[string]interface{}{}},
		volumeRow(6, map[string]float64{"Remaining_Water": math.NaN()}),
	}

	kept := FilterRows(rows, "Remaining_Water")
	if len(kept) != 2 {
		t.Fatalf("expected 2 rows kept, got %d", len(kept))
	}
	if kept[0].Index != 0 || kept[1].Index != 3 {
		t.Errorf("expected rows 0 and 3 kept in order, got %d and %d", kept[0].Index, kept[1].Index)
	}
}

func TestFilterRowsEmpty(t *testing.T) {
	if kept := FilterRows(nil, "Remaining_Water"); len(kept) != 0 {
		t.Errorf("expected no rows, got %d", len(kept))
	}
}
