package plan

import (
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// Batch splits rows into ordered segments of at most capacity rows each,
// preserving row order. Concatenating the segments reproduces the input
// exactly; the last segment may be smaller than capacity. An empty input
// yields zero segments, which callers must distinguish from one empty
// segment. Row indices are renumbered segment-locally when a segment is
// materialized.
func Batch(rows []models.Row, capacity int) [][]models.Row {
	if capacity <= 0 || len(rows) == 0 {
		return nil
	}
	segments := make([][]models.Row, 0, (len(rows)+capacity-1)/capacity)
	for start := 0; start < len(rows); start += capacity {
		end := min(start+capacity, len(rows))
		segment := make([]models.Row, end-start)
		copy(segment, rows[start:end])
		for i := range segment {
			segment[i].Index = i
		}
		segments = append(segments, segment)
	}
	return segments
}
