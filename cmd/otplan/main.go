// Package main provides the CLI entry point for otplan.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/emit"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/ingest"
	"github.com/JonasRaschidie/designer.opentrons.com/pkg/protocol/models"
)

var (
	outputPath string
	configPath string
	sheetName  string
	planJSON   string
	pretty     bool
	verbose    bool

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "otplan [input.csv|input.xlsx]",
		Short: "Compile a liquid-transfer table into Opentrons OT-2 protocols",
		Long: `otplan reads a tabular transfer plan (CSV or Excel), filters out rows
that are not physically realizable, splits the rest into device-sized
segments, groups transfers by reagent and volume, and writes one
executable OT-2 protocol file per segment.`,
		Args:              cobra.ExactArgs(1),
		PersistentPreRunE: initLogger,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "Generated_Protocol.py", "Protocol output path (base name when segmented)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file (defaults built in)")
	rootCmd.Flags().StringVar(&sheetName, "sheet", "", "Excel sheet name (default: first sheet)")
	rootCmd.Flags().StringVar(&planJSON, "plan-json", "", "Also write the compiled plan as JSON to this path")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the JSON plan")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger(cmd *cobra.Command, args []string) error {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cfg := protocol.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = protocol.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	table, err := ingest.ReadTable(inputPath, sheetName)
	if err != nil {
		return fmt.Errorf("read table: %w", err)
	}
	logger.Info("loaded table",
		zap.String("path", inputPath),
		zap.Int("rows", len(table.Rows)),
		zap.Strings("columns", table.Columns))

	compiler, err := protocol.NewCompiler(cfg, logger)
	if err != nil {
		return err
	}

	plans := compiler.Compile(table)
	if len(plans) == 0 {
		logger.Info("no valid rows, nothing to generate")
		return nil
	}

	if planJSON != "" {
		data, err := marshalPlans(plans)
		if err != nil {
			return fmt.Errorf("serialize plan: %w", err)
		}
		if err := os.WriteFile(planJSON, data, 0644); err != nil {
			return fmt.Errorf("failed to write plan: %w", err)
		}
		logger.Info("wrote plan", zap.String("path", planJSON))
	}

	written, err := emit.NewRenderer(cfg).WritePrograms(plans, outputPath)
	if err != nil {
		return fmt.Errorf("write protocols: %w", err)
	}
	for _, path := range written {
		logger.Info("wrote protocol", zap.String("path", path))
	}
	return nil
}

func marshalPlans(plans []models.SegmentPlan) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(plans, "", "  ")
	}
	return json.Marshal(plans)
}
