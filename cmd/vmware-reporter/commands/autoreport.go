package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ipamo/vmware-reporter/internal/reports"
	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/spf13/cobra"
)

func installAutoreportCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "autoreport [SEARCH...]",
		Short: "Write every report into one workbook",
		Long: `Build the virtual machine, host, network and datastore reports and write
them to a single workbook, one sheet per report.

A report that fails does not prevent the others from being written.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.autoreportRun(cmd.Context(), args)
		},
	}
	installSearchFlags(app, cmd)
	cmd.Flags().StringVarP(&app.config.out, "out", "o", "", "output workbook mask (default: the report output mask)")
	app.cmd.AddCommand(cmd)
}

func (a *App) autoreportRun(ctx context.Context, terms []string) error {
	search, err := a.search(terms)
	if err != nil {
		return err
	}

	client, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	r := reports.New(slog.Default(), client, a.config.Extract)
	builders := []func(context.Context, vcenter.Search) (*tabular.Table, error){
		r.VMs, r.Hosts, r.Networks, r.Datastores,
	}

	var errs []error
	for _, build := range builders {
		t, err := build(ctx, search)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := a.writeTable(client.Name(), t, a.config.Out.Report); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
