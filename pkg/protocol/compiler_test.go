package protocol

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/plan"
)

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c, err := NewCompiler(DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	return c
}

// scenarioTable builds a 30-row plan: a diluent column where one row has
// value 0, and a glycine column alternating volumes 5 and 10.
func scenarioTable() models.Table {
	table := models.Table{Columns: []string{"Gly_2.4M", "Remaining_Water"}}
	for i := 0; i < 30; i++ {
		gly := 5.0
		if i%2 == 1 {
			gly = 10.0
		}
		water := 50.0
		if i == 15 {
			water = 0
		}
		table.Rows = append(table.Rows, models.Row{
			Index: i,
			Values: map[string]interface{}{
				"Gly_2.4M":        gly,
				"Remaining_Water": water,
			},
		})
	}
	return table
}

func TestCompileEndToEnd(t *testing.T) {
	plans := newTestCompiler(t).Compile(scenarioTable())

	// 30 rows, one filtered out -> 29 validated -> segments of 28 + 1.
	require.Len(t, plans, 2)
	assert.Equal(t, 1, plans[0].Number)
	assert.Equal(t, 2, plans[0].Total)
	assert.Equal(t, 28, plans[0].RowCount)
	assert.Equal(t, 2, plans[1].Number)
	assert.Equal(t, 1, plans[1].RowCount)

	// Segment 1: glycine at 5 and 10, water at 50, nothing else bound with
	// positive volumes... water is both the filter column and a reagent.
	var glycine []models.RoutedTransfer
	for _, tr := range plans[0].Transfers {
		if tr.Reagent == "glycine" {
			glycine = append(glycine, tr)
		}
	}
	require.Len(t, glycine, 2)
	assert.Equal(t, 5.0, glycine[0].Volume)
	assert.Equal(t, 10.0, glycine[1].Volume)
	for _, tr := range glycine {
		assert.Equal(t, plan.LowVolumePipette, tr.Pipette)
		assert.Equal(t, "A1", tr.SourceTube)
	}
	// 14 rows at volume 5, 14 at volume 10 within the first 28 rows
	// (row 15 was filtered, shifting the tail by one).
	assert.Equal(t, 28, glycine[0].Count+glycine[1].Count)

	// The 50 µL water transfers route to the high-volume pipette.
	for _, tr := range plans[0].Transfers {
		if tr.Reagent == "water" {
			assert.Equal(t, plan.HighVolumePipette, tr.Pipette)
		}
	}
}

func TestCompileIdempotent(t *testing.T) {
	compiler := newTestCompiler(t)
	first := compiler.Compile(scenarioTable())
	second := compiler.Compile(scenarioTable())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("compilation is not deterministic (-first +second):\n%s", diff)
	}
}

func TestCompileEmptyTable(t *testing.T) {
	plans := newTestCompiler(t).Compile(models.Table{Columns: []string{"Gly_2.4M", "Water"}})
	assert.Empty(t, plans, "empty input must compile to zero segments")
}

func TestCompileMissingDiluentColumn(t *testing.T) {
	table := models.Table{Columns: []string{"Gly_2.4M"}}
	for i := 0; i < 3; i++ {
		table.Rows = append(table.Rows, models.Row{
			Index:  i,
			Values: map[string]interface{}{"Gly_2.4M": 5.0},
		})
	}

	// No diluent column: rows pass through unfiltered, warning only.
	plans := newTestCompiler(t).Compile(table)
	require.Len(t, plans, 1)
	assert.Equal(t, 3, plans[0].RowCount)
}

func TestCompileSecondSegmentRestartsGrid(t *testing.T) {
	plans := newTestCompiler(t).Compile(scenarioTable())
	require.Len(t, plans, 2)

	// The single row of segment 2 must land in A1, not continue from
	// segment 1's last synthesized well.
	require.NotEmpty(t, plans[1].Transfers)
	for _, tr := range plans[1].Transfers {
		assert.Equal(t, []string{"A1"}, tr.Wells)
	}
}

func TestCompileUsesExplicitPositions(t *testing.T) {
	table := models.Table{Columns: []string{"Well Position", "Gly_2.4M", "Water_uL"}}
	for i := 0; i < 3; i++ {
		table.Rows = append(table.Rows, models.Row{
			Index: i,
			Values: map[string]interface{}{
				"Well Position": fmt.Sprintf("H%d", i+10), // deliberately odd labels
				"Gly_2.4M":      5.0,
				"Water_uL":      40.0,
			},
		})
	}

	plans := newTestCompiler(t).Compile(table)
	require.Len(t, plans, 1)
	var glycine *models.RoutedTransfer
	for i := range plans[0].Transfers {
		if plans[0].Transfers[i].Reagent == "glycine" {
			glycine = &plans[0].Transfers[i]
		}
	}
	require.NotNil(t, glycine)
	assert.Equal(t, []string{"H10", "H11", "H12"}, glycine.Wells)
}

func TestNewCompilerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capacity = 0
	_, err := NewCompiler(cfg, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
