package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/scriptsense/internal/app"
	"github.com/dshills/scriptsense/internal/diagnostic"
	"github.com/dshills/scriptsense/internal/workspace"
)

var tabsCmd = &cobra.Command{
	Use:   "tabs",
	Short: "Inspect the documents stored in a workspace",
}

var tabsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in tab order",
	Args:  cobra.NoArgs,
	RunE:  runTabsList,
}

var tabsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find text in every document, first match per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runTabsSearch,
}

var tabsExportCmd = &cobra.Command{
	Use:   "export <title> <path>",
	Short: "Write a document to a file outside the workspace",
	Args:  cobra.ExactArgs(2),
	RunE:  runTabsExport,
}

var tabsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Report markers whenever a document changes on disk",
	Args:  cobra.NoArgs,
	RunE:  runTabsWatch,
}

func init() {
	tabsCmd.AddCommand(tabsListCmd)
	tabsCmd.AddCommand(tabsSearchCmd)
	tabsCmd.AddCommand(tabsExportCmd)
	tabsCmd.AddCommand(tabsWatchCmd)
}

func openStore(cmd *cobra.Command) (*workspace.Store, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	store := workspace.NewStore(cfg.Persistence.Root,
		workspace.WithLogger(newLogger(cfg).WithComponent("workspace")))
	return store, cfg.Persistence.Workspace, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runTabsList(cmd *cobra.Command, _ []string) error {
	store, ws, err := openStore(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	tabs, err := store.LoadDocuments(ctx, ws)
	if err != nil {
		return err
	}
	state, err := store.LoadSessionState(ctx, ws)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, tab := range tabs {
		marker := " "
		if tab.ID == state.ActiveTab {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d bytes\n", marker, tab.Title, tab.ID[:min(12, len(tab.ID))], len(tab.Content))
	}
	return tw.Flush()
}

func runTabsSearch(cmd *cobra.Command, args []string) error {
	store, ws, err := openStore(cmd)
	if err != nil {
		return err
	}
	results, err := store.Search(commandContext(cmd), ws, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "%s:%d:%d: %s\n", pathColor.Sprint(r.Title), r.Line, r.Column, r.LineContent)
	}
	if len(results) == 0 {
		return errFindings
	}
	return nil
}

func runTabsExport(cmd *cobra.Command, args []string) error {
	store, ws, err := openStore(cmd)
	if err != nil {
		return err
	}
	tabs, err := store.LoadDocuments(commandContext(cmd), ws)
	if err != nil {
		return err
	}
	title := workspace.SanitizeTitle(args[0])
	for _, tab := range tabs {
		if tab.Title == title {
			return workspace.Export(tab.Content, args[1])
		}
	}
	return fmt.Errorf("%s: %w", title, app.ErrDocumentNotFound)
}

func runTabsWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	out := cmd.OutOrStdout()

	var application *app.Application
	application, err = app.New(cfg,
		app.WithLogger(logger),
		app.OnMarkersChanged(func(docID string, markers []diagnostic.Marker) {
			title := docID
			if doc, ok := application.Document(docID); ok {
				title = doc.Title
			}
			errs, warns := diagnostic.Counts(markers)
			fmt.Fprintf(out, "%s: %d errors, %d warnings\n", pathColor.Sprint(title), errs, warns)
			for _, m := range markers {
				fmt.Fprintf(out, "  %s\n", m)
			}
		}),
		app.OnNotify(func(n app.Notification) {
			fmt.Fprintf(os.Stderr, "%s\n", n)
		}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := application.LoadWorkspace(ctx); err != nil {
		return err
	}
	w, err := application.Watch()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "watching %s\n", application.Store().TabsDir(application.WorkspaceID()))

	errs := w.Errors()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return application.Shutdown(shutdownCtx)
		case change, ok := <-w.Changes():
			if !ok {
				return nil
			}
			application.ApplyExternalChange(change)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watcher: %v", err)
		}
	}
}
