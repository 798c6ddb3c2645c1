package commands

import (
	"context"
	"log/slog"

	"github.com/ipamo/vmware-reporter/internal/datastore"
	"github.com/ipamo/vmware-reporter/internal/reports"
	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/spf13/cobra"
)

func installDatastoreCmd(app *App) {
	dsCmd := &cobra.Command{
		Use:   "datastore [SEARCH...]",
		Short: "Report the datastores and work with their content",
		Long: `Report the datastores: type, capacity, free and uncommitted space,
accessibility, maintenance mode and usage counts.

The subcommands list datastore content, aggregate per-path statistics and
transfer, delete or create files and folders.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportRun(cmd.Context(), args, (*reports.Reporter).Datastores)
		},
	}
	installSearchFlags(app, dsCmd)
	installOutFlags(app, dsCmd)

	installElementsCmd(app, dsCmd)
	installStatsCmd(app, dsCmd)
	installDownloadCmd(app, dsCmd)
	installUploadCmd(app, dsCmd)
	installRmCmd(app, dsCmd)
	installMkdirCmd(app, dsCmd)

	app.cmd.AddCommand(dsCmd)
}

func installElementsCmd(app *App, parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "elements [SEARCH...]",
		Short: "List the files and folders of the matched datastores",
		Long: `List the files and folders of the matched datastores with their size,
modification time and owner.

Without --max-depth the whole tree is listed. --pattern restricts the file
names (` + datastore.FoldersPattern + ` keeps folders only).`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.traversalRun(cmd.Context(), args, (*datastore.Explorer).ElementsReport)
		},
	}
	installSearchFlags(app, cmd)
	installOutFlags(app, cmd)
	installTraversalFlags(app, cmd, 0)
	parent.AddCommand(cmd)
}

func installStatsCmd(app *App, parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "stats [SEARCH...]",
		Short: "Aggregate per-path statistics of the matched datastores",
		Long: `Walk the matched datastores and aggregate their elements per path prefix
truncated to --max-depth components: total size, latest modification time,
owner, deepest element and per-nature counts.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.traversalRun(cmd.Context(), args, (*datastore.Explorer).StatsReport)
		},
	}
	installSearchFlags(app, cmd)
	installOutFlags(app, cmd)
	installTraversalFlags(app, cmd, 1)
	parent.AddCommand(cmd)
}

// installTraversalFlags adds the flags bounding a datastore browse.
func installTraversalFlags(app *App, cmd *cobra.Command, defaultDepth int) {
	cmd.Flags().StringVar(&app.config.path, "path", "", "start the browse at this datastore folder")
	cmd.Flags().StringVar(&app.config.pattern, "pattern", "", "only match these file names ("+datastore.FoldersPattern+": folders only)")
	cmd.Flags().IntVar(&app.config.maxDepth, "max-depth", defaultDepth, "detail elements down to this depth (0: unbounded)")
	cmd.Flags().BoolVar(&app.config.caseSensitive, "case-sensitive", false, "match paths and patterns case sensitively")
}

func installDownloadCmd(app *App, parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "download DATASTORE PATH [TARGET]",
		Short: "Download a file from a datastore",
		Long: `Download a datastore file to the local file system.

An empty TARGET or a TARGET ending with a path separator is completed with
the base name of PATH.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 2 {
				target = args[2]
			}
			return app.fileRun(cmd.Context(), args[0], func(ctx context.Context, e *datastore.Explorer, ds vcenter.Datastore) error {
				return e.Download(ctx, ds, args[1], target)
			})
		},
	}
	parent.AddCommand(cmd)
}

func installUploadCmd(app *App, parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "upload SOURCE DATASTORE [TARGET]",
		Short: "Upload a file to a datastore",
		Long: `Upload a local file to a datastore.

An empty TARGET or a TARGET ending with a path separator is completed with
the base name of SOURCE.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 2 {
				target = args[2]
			}
			return app.fileRun(cmd.Context(), args[1], func(ctx context.Context, e *datastore.Explorer, ds vcenter.Datastore) error {
				return e.Upload(ctx, ds, args[0], target)
			})
		},
	}
	parent.AddCommand(cmd)
}

func installRmCmd(app *App, parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rm DATASTORE PATH",
		Short: "Delete a file or folder of a datastore",
		Long:  "Delete a datastore file, or a folder with all its content.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fileRun(cmd.Context(), args[0], func(ctx context.Context, e *datastore.Explorer, ds vcenter.Datastore) error {
				return e.Delete(ctx, ds, args[1])
			})
		},
	}
	parent.AddCommand(cmd)
}

func installMkdirCmd(app *App, parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "mkdir DATASTORE PATH",
		Short: "Create a folder on a datastore",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.fileRun(cmd.Context(), args[0], func(ctx context.Context, e *datastore.Explorer, ds vcenter.Datastore) error {
				return e.MakeDirectory(ctx, ds, args[1], app.config.parents)
			})
		},
	}
	cmd.Flags().BoolVarP(&app.config.parents, "parents", "p", false, "create the missing parent folders")
	parent.AddCommand(cmd)
}

// traversalRun connects, browses the matched datastores and writes one
// traversal report.
func (a *App) traversalRun(ctx context.Context, terms []string, build func(*datastore.Explorer, context.Context, vcenter.Search, datastore.Query) (*tabular.Table, error)) error {
	search, err := a.search(terms)
	if err != nil {
		return err
	}

	client, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	q := datastore.FullQuery()
	q.Path = a.config.path
	q.Pattern = a.config.pattern
	q.MaxDepth = a.config.maxDepth
	q.CaseSensitive = a.config.caseSensitive

	t, err := build(datastore.New(slog.Default(), client), ctx, search, q)
	if err != nil {
		return err
	}
	return a.writeTable(client.Name(), t, settings.Stdout)
}

// fileRun connects, resolves one datastore by name and applies op to it.
func (a *App) fileRun(ctx context.Context, name string, op func(context.Context, *datastore.Explorer, vcenter.Datastore) error) error {
	client, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	e := datastore.New(slog.Default(), client)
	ds, err := e.Resolve(ctx, name)
	if err != nil {
		return err
	}
	return op(ctx, e, ds)
}
