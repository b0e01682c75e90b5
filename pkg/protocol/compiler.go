// Package protocol compiles tabular liquid-transfer plans into ordered,
// capacity-bounded segment plans ready for protocol emission.
package protocol

import (
	"go.uber.org/zap"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/plan"
)

// Compiler turns one table into an ordered list of segment plans. All
// behavior comes from the immutable Config given at construction, so a
// Compiler is safe to reuse and compilations with different configurations
// do not interfere.
type Compiler struct {
	cfg    Config
	logger *zap.Logger
}

// NewCompiler validates the configuration and returns a ready compiler.
// A nil logger disables logging.
func NewCompiler(cfg Config, logger *zap.Logger) (*Compiler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Compiler{cfg: cfg, logger: logger}, nil
}

// Compile runs the full pipeline over a table: feasibility filtering,
// column binding, batching, and per-segment well assignment, transfer
// grouping and instrument routing. The returned plans are in segment
// order and carry segment number, total count and row count for the
// emitter.
//
// An empty or fully filtered table compiles to zero plans. That is a valid
// outcome, not a failure; malformed-but-parseable input never produces an
// error here.
func (c *Compiler) Compile(table models.Table) []models.SegmentPlan {
	rows := table.Rows
	if diluent, ok := plan.FindColumn(table.Columns, c.cfg.DiluentToken); ok {
		before := len(rows)
		rows = plan.FilterRows(rows, diluent)
		if dropped := before - len(rows); dropped > 0 {
			c.logger.Info("filtered infeasible rows",
				zap.String("column", diluent),
				zap.Int("dropped", dropped),
				zap.Int("remaining", len(rows)))
		}
	} else {
		c.logger.Warn("no diluent volume column found, skipping feasibility filter",
			zap.String("token", c.cfg.DiluentToken))
	}

	bindings := plan.ClassifyColumns(table.Columns, c.cfg.ReagentOrder, c.cfg.reagentTokens())
	c.logger.Debug("bound reagent columns", zap.Any("bindings", bindings))

	positionColumn, hasPositions := plan.FindColumn(table.Columns, c.cfg.PositionTokens...)
	if !hasPositions {
		c.logger.Warn("no well position column found, synthesizing positions per segment")
	}

	segments := plan.Batch(rows, c.cfg.Capacity)
	plans := make([]models.SegmentPlan, 0, len(segments))
	for i, segment := range segments {
		if !hasPositions && len(segment) > c.cfg.GridRows*c.cfg.GridCols {
			c.logger.Warn("segment exceeds plate grid, overflow rows get out-of-grid labels",
				zap.Int("segment", i+1),
				zap.Int("rows", len(segment)),
				zap.Int("slots", c.cfg.GridRows*c.cfg.GridCols))
		}
		wells := plan.AssignWells(segment, positionColumn, c.cfg.GridRows, c.cfg.GridCols)
		transfers := plan.GroupTransfers(segment, wells, bindings, c.cfg.ReagentOrder, c.cfg.tubePositions())

		routed := make([]models.RoutedTransfer, len(transfers))
		for j, req := range transfers {
			routed[j] = plan.Route(req, c.cfg.VolumeThreshold)
		}

		plans = append(plans, models.SegmentPlan{
			Number:    i + 1,
			Total:     len(segments),
			RowCount:  len(segment),
			Transfers: routed,
		})
	}
	return plans
}
