package main

import (
	"encoding/json"
	"fmt"

	"ptxref/internal/resolve"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var tableFormat string

// tableCmd runs phase 1 only and prints the resolution table
var tableCmd = &cobra.Command{
	Use:   "table [root]",
	Short: "Print the resolution table without rewriting anything",
	Long: `Scans every document under root and prints the short -> qualified
identifier table that resolve would apply, together with ambiguous and
unstable entries. No file is modified.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTable,
}

// tableDump is the serialized form of a resolution table.
type tableDump struct {
	Root      string             `json:"root" yaml:"root"`
	Entries   map[string]string  `json:"entries" yaml:"entries"`
	Conflicts []resolve.Conflict `json:"conflicts,omitempty" yaml:"conflicts,omitempty"`
	Unstable  []string           `json:"unstable,omitempty" yaml:"unstable,omitempty"`
}

func runTable(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if tableFormat != "yaml" && tableFormat != "json" {
		return fmt.Errorf("unknown format %q (want yaml or json)", tableFormat)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	r, err := resolve.New(cfg, resolve.WithLogger(logger))
	if err != nil {
		return err
	}
	table, report, err := r.BuildTable(ctx)
	if err != nil {
		return fmt.Errorf("build table for %s: %w", cfg.Root, err)
	}
	logger.Debug("Table built", zap.Int("entries", table.Len()), zap.Int("documents", report.Documents))

	dump := tableDump{
		Root:      cfg.Root,
		Entries:   table.Entries(),
		Conflicts: report.Conflicts,
		Unstable:  report.Unstable,
	}

	var data []byte
	switch tableFormat {
	case "json":
		data, err = json.MarshalIndent(dump, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		data, err = yaml.Marshal(dump)
	}
	if err != nil {
		return fmt.Errorf("failed to encode table: %w", err)
	}
	if _, err := cmd.OutOrStdout().Write(data); err != nil {
		return err
	}

	if cfg.Strict {
		if len(dump.Conflicts) > 0 {
			return fmt.Errorf("%w: %d ambiguous identifiers", resolve.ErrAmbiguous, len(dump.Conflicts))
		}
		if len(dump.Unstable) > 0 {
			return fmt.Errorf("%w: %d entries", resolve.ErrUnstable, len(dump.Unstable))
		}
	}
	return nil
}
