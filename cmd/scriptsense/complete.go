package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/scriptsense/internal/app"
	"github.com/dshills/scriptsense/internal/catalog"
	"github.com/dshills/scriptsense/internal/config"
	"github.com/dshills/scriptsense/internal/logging"
	"github.com/dshills/scriptsense/internal/suggest"
	"github.com/dshills/scriptsense/internal/textmodel"
)

var completeCmd = &cobra.Command{
	Use:   "complete [flags] <file.lua>",
	Short: "Print ranked suggestions for a cursor position",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().Int("line", 1, "cursor line (1-based)")
	completeCmd.Flags().Int("col", 1, "cursor column (1-based)")
	completeCmd.Flags().Int("max", 0, "maximum suggestions (0=configured)")
}

func runComplete(cmd *cobra.Command, args []string) error {
	line, err := cmd.Flags().GetInt("line")
	if err != nil {
		return fmt.Errorf("failed to get line flag: %w", err)
	}
	col, err := cmd.Flags().GetInt("col")
	if err != nil {
		return fmt.Errorf("failed to get col flag: %w", err)
	}
	limit, err := cmd.Flags().GetInt("max")
	if err != nil {
		return fmt.Errorf("failed to get max flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	if limit <= 0 {
		limit = cfg.Intellisense.MaxSuggestions
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	cat := loadCatalog(cmd.Context(), cfg, logger)
	ranker := suggest.NewRanker(cat, suggest.WithLogger(logger.WithComponent("suggest")))
	model := textmodel.NewModel(string(data))
	pos := model.ValidatePosition(textmodel.Position{Line: line, Column: col})

	ctx := suggest.ContextAt(model.Value(), pos)
	logger.Debug("prefix %q in %s context", ctx.Prefix.Text, ctx.Lexical)

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, s := range ranker.Suggestions(model.Value(), pos, limit) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.Label, s.Kind, s.Origin, s.Detail)
	}
	return tw.Flush()
}

// loadCatalog builds and loads the configured catalog. A failed load
// leaves it empty so only local symbols are offered.
func loadCatalog(ctx context.Context, cfg config.Config, logger *logging.Logger) *catalog.Catalog {
	if ctx == nil {
		ctx = context.Background()
	}
	fetcher := app.CatalogFetcher(cfg, func(err error) {
		logger.Warn("catalog source failed: %v", err)
	})
	if fetcher == nil {
		return catalog.NewStatic(nil)
	}
	cat := catalog.New(fetcher, catalog.WithLogger(logger.WithComponent("catalog")))
	_ = cat.Load(ctx)
	return cat
}
