package plan

import (
	"sort"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// GroupTransfers builds the ordered transfer list for one segment.
//
// Reagents are visited in the given priority order, not table-column order,
// so the emitted program does not depend on the table's column arrangement.
// Within a reagent, rows are partitioned by their exact volume value;
// partitions with a non-positive or non-numeric volume are dropped, and the
// rest are emitted in ascending volume order. Each request carries the well
// positions of its rows in segment order. One request per distinct
// (reagent, volume) pair keeps instrument reconfiguration on the device to
// a minimum.
func GroupTransfers(segment []models.Row, wells []string, bindings models.ColumnBindings, reagentOrder []string, tubes map[string]string) []models.TransferRequest {
	var transfers []models.TransferRequest
	for _, reagent := range reagentOrder {
		column, ok := bindings[reagent]
		if !ok {
			continue
		}

		byVolume := make(map[float64][]string)
		var volumes []float64
		for i, row := range segment {
			v, ok := row.Volume(column)
			if !ok || v <= 0 {
				continue
			}
			if _, seen := byVolume[v]; !seen {
				volumes = append(volumes, v)
			}
			byVolume[v] = append(byVolume[v], wells[i])
		}
		sort.Float64s(volumes)

		for _, v := range volumes {
			dest := byVolume[v]
			transfers = append(transfers, models.TransferRequest{
				Reagent:    reagent,
				Volume:     v,
				SourceTube: tubes[reagent],
				Wells:      dest,
				Count:      len(dest),
			})
		}
	}
	return transfers
}
