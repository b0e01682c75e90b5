package plan

import (
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// FilterRows keeps the rows whose value in the diluent column is strictly
// positive. A non-positive remaining-diluent volume means the requested
// volumes exceed the destination well's capacity, so the row is not
// physically realizable. Rows whose diluent cell is missing or non-numeric
// are dropped too, since they cannot be shown feasible.
func FilterRows(rows []models.Row, diluentColumn string) []models.Row {
	kept := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if v, ok := row.Volume(diluentColumn); ok && v > 0 {
			kept = append(kept, row)
		}
	}
	return kept
}
