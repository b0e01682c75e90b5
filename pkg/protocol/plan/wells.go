package plan

import (
	"fmt"
	"strconv"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// AssignWells returns the destination well position for each row of a
// segment, in row order.
//
// When positionColumn is non-empty its values are returned verbatim:
// supplied identifiers are trusted over inference, so no uniqueness or
// format check is applied. Otherwise positions are synthesized over the
// plate grid in row-major order (A1..A12, then B1..B12, ...), one slot per
// row. The grid cursor starts at the first slot for every segment; segment
// N+1 never continues the numbering of segment N. Rows beyond the grid
// receive an out-of-grid label of the form "X<index>".
func AssignWells(segment []models.Row, positionColumn string, gridRows, gridCols int) []string {
	wells := make([]string, len(segment))
	for i, row := range segment {
		switch {
		case positionColumn != "":
			wells[i] = positionValue(row, positionColumn)
		case i < gridRows*gridCols:
			wells[i] = fmt.Sprintf("%c%d", 'A'+i/gridCols, i%gridCols+1)
		default:
			wells[i] = fmt.Sprintf("X%d", i)
		}
	}
	return wells
}

// positionValue renders an explicit position cell as a label. Malformed or
// missing cells pass through as-is rather than being rejected.
func positionValue(row models.Row, column string) string {
	switch v := row.Values[column].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
