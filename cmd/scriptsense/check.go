package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/scriptsense/internal/diagnostic"
	"github.com/dshills/scriptsense/internal/workspace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.lua|directory>...",
	Short: "Report syntax errors and style warnings in Lua files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "text", "output format (text|json)")
	checkCmd.Flags().Bool("no-warnings", false, "report syntax errors only")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
}

// fileReport holds the markers of one file.
type fileReport struct {
	Path    string              `json:"path"`
	Markers []diagnostic.Marker `json:"markers"`
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	pathColor    = color.New(color.Bold)
)

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("unknown format %q", format)
	}
	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	logger.Debug("checking %d files", len(files))

	analyzer := diagnostic.NewAnalyzer(
		diagnostic.WithLogger(logger.WithComponent("analyzer")),
		diagnostic.WithWarnings(cfg.Diagnostics.Warnings && !noWarnings),
	)
	reports, err := checkFiles(cmd.Context(), analyzer, files, jobs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		printReports(out, reports)
	}

	for _, r := range reports {
		if errs, _ := diagnostic.Counts(r.Markers); errs > 0 {
			return errFindings
		}
	}
	return nil
}

// collectFiles expands directories into the .lua files below them.
// Explicit file arguments are kept whatever their extension.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == workspace.Extension {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// checkFiles analyzes files in parallel. Reports keep the order of files.
func checkFiles(ctx context.Context, analyzer *diagnostic.Analyzer, files []string, jobs int) ([]fileReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	reports := make([]fileReport, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			markers := analyzer.Analyze(string(data))
			if markers == nil {
				markers = []diagnostic.Marker{}
			}
			reports[i] = fileReport{Path: path, Markers: markers}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func printReports(w io.Writer, reports []fileReport) {
	var errs, warns int
	for _, r := range reports {
		for _, m := range r.Markers {
			sev := warningColor
			if m.Severity == diagnostic.SeverityError {
				sev = errorColor
				errs++
			} else {
				warns++
			}
			fmt.Fprintf(w, "%s:%d:%d: %s: %s (%s)\n",
				pathColor.Sprint(r.Path),
				m.Range.Start.Line, m.Range.Start.Column,
				sev.Sprint(m.Severity), m.Message, m.Source)
		}
	}
	fmt.Fprintf(w, "%d files checked, %d errors, %d warnings\n", len(reports), errs, warns)
}
