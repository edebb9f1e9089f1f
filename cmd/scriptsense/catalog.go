package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dshills/scriptsense/internal/catalog"
	"github.com/dshills/scriptsense/internal/symbol"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [flags]",
	Short: "List the symbols of the configured catalog",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().String("kind", "", "only list symbols of this kind")
	catalogCmd.Flags().String("format", "table", "output format (table|yaml)")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	kindName, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat := loadCatalog(cmd.Context(), cfg, newLogger(cfg))
	if !cat.Loaded() {
		return catalog.ErrAllFailed
	}

	symbols := cat.Symbols()
	if kindName != "" {
		kind, ok := symbol.ParseKind(kindName)
		if !ok {
			return fmt.Errorf("unknown kind %q", kindName)
		}
		symbols = cat.ByKind(kind)
	}

	switch format {
	case "yaml":
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]symbol.Symbol{"symbols": symbols}); err != nil {
			return fmt.Errorf("encoding catalog: %w", err)
		}
		return enc.Close()
	case "table":
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, s := range symbols {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Label, s.Kind, s.Detail)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
