package plan

import (
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

// Load names and mounts for the two dispensing instruments.
const (
	LowVolumePipette  = "p20_single_gen2"
	HighVolumePipette = "p300_single_gen2"

	LowVolumeMount  = "right"
	HighVolumeMount = "left"
)

// Route assigns a dispensing instrument to a transfer request from its
// volume alone. Volumes at or below the threshold go to the low-volume
// pipette, everything else to the high-volume pipette. Every positive
// volume maps to exactly one instrument; there is no failure mode.
func Route(req models.TransferRequest, threshold float64) models.RoutedTransfer {
	routed := models.RoutedTransfer{TransferRequest: req}
	if req.Volume <= threshold {
		routed.Pipette = LowVolumePipette
		routed.Mount = LowVolumeMount
	} else {
		routed.Pipette = HighVolumePipette
		routed.Mount = HighVolumeMount
	}
	return routed
}
