// Package emit renders compiled segment plans into executable Opentrons
// OT-2 protocol source files. The compiler owns what gets transferred and
// in what order; this package owns the literal program text around it
// (metadata, labware, liquid definitions, per-step liquid classes).
package emit

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/plan"
)

// Static per-instrument emission parameters. These follow the routing
// decision but are owned here, not by the compiler core.
const (
	lowVolumeTipRack  = "opentrons/opentrons_96_filtertiprack_20ul/1"
	highVolumeTipRack = "opentrons/opentrons_96_filtertiprack_200ul/1"

	lowVolumeFlowRate  = "7.56"
	highVolumeFlowRate = "46.4"
)

// RenderError reports a failure while rendering or writing one segment's
// protocol file.
type RenderError struct {
	Segment int
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render error in segment %d: %v", e.Segment, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// Renderer renders segment plans into protocol source text.
type Renderer struct {
	cfg protocol.Config
	now func() time.Time
}

// NewRenderer returns a renderer for the given configuration.
func NewRenderer(cfg protocol.Config) *Renderer {
	return &Renderer{cfg: cfg, now: time.Now}
}

var headerTemplate = template.Must(template.New("header").Parse(`import json
from opentrons import protocol_api, types

metadata = {
    "protocolName": "{{.ProtocolName}}",
    "author": "{{.Author}}",
    "description": "{{.Description}} (Segment {{.Number}}: {{.RowCount}} wells)",
    "created": "{{.Timestamp}}",
    "lastModified": "{{.Timestamp}}",
    "protocolDesigner": "{{.Author}}",
    "source": "CSV Auto-Generator",
}

requirements = {"robotType": "OT-2", "apiLevel": "{{.APILevel}}"}

def run(protocol: protocol_api.ProtocolContext) -> None:
`))

type headerData struct {
	ProtocolName string
	Author       string
	Description  string
	APILevel     string
	Number       int
	RowCount     int
	Timestamp    string
}

const labwareSection = `    # Load Labware:
    tip_rack_1 = protocol.load_labware(
        "opentrons_96_filtertiprack_20ul",
        location="2",
        namespace="opentrons",
        version=1,
    )
    tip_rack_2 = protocol.load_labware(
        "opentrons_96_filtertiprack_200ul",
        location="3",
        namespace="opentrons",
        version=1,
    )
    tube_rack_1 = protocol.load_labware(
        "opentrons_10_tuberack_falcon_4x50ml_6x15ml_conical",
        location="1",
        namespace="opentrons",
        version=2,
    )
    well_plate_1 = protocol.load_labware(
        "corning_96_wellplate_360ul_flat",
        location="4",
        namespace="opentrons",
        version=3,
    )
    tip_rack_3 = protocol.load_labware(
        "opentrons_96_filtertiprack_20ul",
        location="5",
        label="Opentrons OT-2 96 Filter Tip Rack 20 µL (1)",
        namespace="opentrons",
        version=1,
    )
    tip_rack_4 = protocol.load_labware(
        "opentrons_96_filtertiprack_200ul",
        location="6",
        label="Opentrons OT-2 96 Filter Tip Rack 200 µL (1)",
        namespace="opentrons",
        version=1,
    )

    # Load Pipettes:
    pipette_right = protocol.load_instrument(
        "p20_single_gen2", "right", tip_racks=[tip_rack_1, tip_rack_3],
    )
    pipette_left = protocol.load_instrument(
        "p300_single_gen2", "left", tip_racks=[tip_rack_2, tip_rack_4],
    )
`

// Render produces the protocol source for one segment plan.
func (r *Renderer) Render(p models.SegmentPlan) (string, error) {
	name := r.cfg.Metadata.ProtocolName
	if p.Total > 1 {
		name = fmt.Sprintf("%s - Segment %d/%d", name, p.Number, p.Total)
	}

	var b strings.Builder
	err := headerTemplate.Execute(&b, headerData{
		ProtocolName: name,
		Author:       r.cfg.Metadata.Author,
		Description:  r.cfg.Metadata.Description,
		APILevel:     r.cfg.Metadata.APILevel,
		Number:       p.Number,
		RowCount:     p.RowCount,
		Timestamp:    r.now().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	b.WriteString(labwareSection)
	r.writeLiquids(&b)

	fmt.Fprintf(&b, "\n    # PROTOCOL STEPS - SEGMENT %d/%d (%d wells)\n", p.Number, p.Total, p.RowCount)
	for i, t := range p.Transfers {
		writeTransferStep(&b, i+1, t)
	}
	return b.String(), nil
}

// writeLiquids emits the liquid definitions and tube-rack loading in the
// configured reagent order, so numbering is stable across runs.
func (r *Renderer) writeLiquids(b *strings.Builder) {
	b.WriteString("    # Define Liquids:\n")
	for i, name := range r.cfg.ReagentOrder {
		liquid := r.cfg.Reagents[name]
		fmt.Fprintf(b, `    liquid_%d = protocol.define_liquid(
        "%s",
        description="%s",
        display_color="%s",
    )
`, i+1, liquid.Name, liquid.Description, liquid.Color)
	}

	b.WriteString("\n    # Load Liquids:\n")
	for i, name := range r.cfg.ReagentOrder {
		liquid := r.cfg.Reagents[name]
		fmt.Fprintf(b, `    tube_rack_1.load_liquid(
        wells=["%s"],
        liquid=liquid_%d,
        volume=10000,
    )
`, liquid.TubePosition, i+1)
	}
}

func writeTransferStep(b *strings.Builder, step int, t models.RoutedTransfer) {
	pipette := "pipette_" + t.Mount

	sources := make([]string, t.Count)
	for i := range sources {
		sources[i] = fmt.Sprintf("tube_rack_1[%q]", t.SourceTube)
	}
	dests := make([]string, len(t.Wells))
	for i, well := range t.Wells {
		dests[i] = fmt.Sprintf("well_plate_1[%q]", well)
	}

	fmt.Fprintf(b, `
    # Step %d:
    %s.transfer_with_liquid_class(
        volume=%s,
        source=[%s],
        dest=[%s],
        new_tip="always",
        trash_location=protocol.fixed_trash,
        keep_last_tip=True,
%s
    )
    %s.drop_tip()
`, step, pipette, formatVolume(t.Volume),
		strings.Join(sources, ", "), strings.Join(dests, ", "),
		liquidClassBlock(fmt.Sprintf("transfer_step_%d", step), t), pipette)
}

// liquidClassBlock emits the per-step liquid class. The aspirate/dispense
// offsets and speeds are fixed instrument parameters; only the tip rack,
// flow rate and dispense mix volume vary with the routed pipette.
func liquidClassBlock(name string, t models.RoutedTransfer) string {
	tipRack, flowRate := highVolumeTipRack, highVolumeFlowRate
	if t.Pipette == plan.LowVolumePipette {
		tipRack, flowRate = lowVolumeTipRack, lowVolumeFlowRate
	}
	mixVolume := formatVolume(min(20, floorHalf(t.Volume)))

	return fmt.Sprintf(`        liquid_class=protocol.define_liquid_class(
            name="%s",
            properties={"%s": {"%s": {
                "aspirate": {
                    "aspirate_position": {
                        "offset": {"x": 0, "y": 0, "z": 55},
                        "position_reference": "well-bottom",
                    },
                    "flow_rate_by_volume": [(0, %s)],
                    "pre_wet": False,
                    "correction_by_volume": [(0, 0)],
                    "delay": {"enabled": False},
                    "mix": {"enabled": False},
                    "submerge": {
                        "delay": {"enabled": False},
                        "speed": 125,
                        "start_position": {
                            "offset": {"x": 0, "y": 0, "z": 2},
                            "position_reference": "well-top",
                        },
                    },
                    "retract": {
                        "air_gap_by_volume": [(0, 0)],
                        "delay": {"enabled": False},
                        "end_position": {
                            "offset": {"x": 0, "y": 0, "z": 2},
                            "position_reference": "well-top",
                        },
                        "speed": 125,
                        "touch_tip": {"enabled": False},
                    },
                },
                "dispense": {
                    "dispense_position": {
                        "offset": {"x": 0, "y": 0, "z": 3},
                        "position_reference": "well-bottom",
                    },
                    "flow_rate_by_volume": [(0, %s)],
                    "delay": {"enabled": True, "duration": 2},
                    "submerge": {
                        "delay": {"enabled": False},
                        "speed": 125,
                        "start_position": {
                            "offset": {"x": 0, "y": 0, "z": 2},
                            "position_reference": "well-top",
                        },
                    },
                    "retract": {
                        "air_gap_by_volume": [(0, 0)],
                        "delay": {"enabled": False},
                        "end_position": {
                            "offset": {"x": 0, "y": 0, "z": 2},
                            "position_reference": "well-top",
                        },
                        "speed": 125,
                        "touch_tip": {
                            "enabled": True,
                            "z_offset": -1,
                            "mm_from_edge": 0,
                            "speed": 60,
                        },
                        "blowout": {"enabled": True, "location": "destination", "flow_rate": %s},
                    },
                    "correction_by_volume": [(0, 0)],
                    "push_out_by_volume": [(0, 5)],
                    "mix": {"enabled": True, "repetitions": 5, "volume": %s},
                },
            }}},
        ),`, name, t.Pipette, tipRack, flowRate, flowRate, flowRate, mixVolume)
}

// WritePrograms renders every segment plan and writes one protocol file per
// segment. With a single segment the output path is used as-is; with more,
// each file gets a _Segment_N suffix before the extension. Returns the
// written paths in segment order.
func (r *Renderer) WritePrograms(plans []models.SegmentPlan, outputPath string) ([]string, error) {
	var written []string
	for _, p := range plans {
		text, err := r.Render(p)
		if err != nil {
			return written, &RenderError{Segment: p.Number, Err: err}
		}

		path := segmentPath(outputPath, p.Number, p.Total)
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return written, &RenderError{Segment: p.Number, Err: err}
			}
		}
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return written, &RenderError{Segment: p.Number, Err: err}
		}
		written = append(written, path)
	}
	return written, nil
}

func segmentPath(output string, number, total int) string {
	if total <= 1 {
		return output
	}
	ext := filepath.Ext(output)
	base := strings.TrimSuffix(output, ext)
	if ext == "" {
		ext = ".py"
	}
	return fmt.Sprintf("%s_Segment_%d%s", base, number, ext)
}

// formatVolume prints a volume the shortest way that round-trips
// (5 rather than 5.0, 7.5 as-is).
func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// floorHalf halves a volume and floors the result, the dispense mix rule
// inherited from the device's liquid class defaults. math.Floor keeps the
// result well-defined for volumes beyond int range.
func floorHalf(v float64) float64 {
	return math.Floor(v / 2)
}
