package models

// TransferRequest is a grouped instruction to move a fixed volume of one
// reagent from its source tube to a list of destination wells. Every row
// contributing to a request shares the same reagent, the same volume and
// the same source tube.
type TransferRequest struct {
	// Reagent is the reagent identifier (e.g. "glycine").
	Reagent string `json:"reagent"`
	// Volume is the per-well transfer volume, always > 0.
	Volume float64 `json:"volume"`
	// SourceTube is the tube-rack position holding the reagent.
	SourceTube string `json:"source_tube"`
	// Wells lists the destination well positions in segment row order.
	Wells []string `json:"wells"`
	// Count is the number of destination wells.
	Count int `json:"count"`
}

// RoutedTransfer is a TransferRequest with its assigned dispensing
// instrument. The instrument is chosen purely from the volume value.
type RoutedTransfer struct {
	TransferRequest
	// Pipette is the instrument load name (e.g. "p20_single_gen2").
	Pipette string `json:"pipette"`
	// Mount is the instrument mount, "left" or "right".
	Mount string `json:"mount"`
}

// SegmentPlan is the compiled output for one capacity-bounded segment.
type SegmentPlan struct {
	// Number is the 1-based segment number.
	Number int `json:"number"`
	// Total is the total segment count for the table.
	Total int `json:"total"`
	// RowCount is the number of rows in the segment.
	RowCount int `json:"row_count"`
	// Transfers holds the routed requests in emission order.
	Transfers []RoutedTransfer `json:"transfers"`
}
