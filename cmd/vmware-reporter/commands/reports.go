package commands

import (
	"context"
	"log/slog"

	"github.com/ipamo/vmware-reporter/internal/reports"
	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/spf13/cobra"
)

func installVMCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "vm [SEARCH...]",
		Short: "Report the virtual machines",
		Long: `Report the virtual machines: power state, guest OS, sizing, placement,
addresses and identifiers, plus one column per configured custom value name
and tag category.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportRun(cmd.Context(), args, (*reports.Reporter).VMs)
		},
	}
	installSearchFlags(app, cmd)
	installOutFlags(app, cmd)
	app.cmd.AddCommand(cmd)
}

func installHostCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "host [SEARCH...]",
		Short: "Report the ESXi hosts",
		Long: `Report the ESXi hosts: connection and power state, hardware, product
version, cluster and usage counts.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportRun(cmd.Context(), args, (*reports.Reporter).Hosts)
		},
	}
	installSearchFlags(app, cmd)
	installOutFlags(app, cmd)
	app.cmd.AddCommand(cmd)
}

func installNetCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "net [SEARCH...]",
		Short: "Report the networks",
		Long: `Report the networks, distributed port groups and distributed switches,
with the VLAN and owning switch of each port group.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.reportRun(cmd.Context(), args, (*reports.Reporter).Networks)
		},
	}
	installSearchFlags(app, cmd)
	installOutFlags(app, cmd)
	app.cmd.AddCommand(cmd)
}

// reportRun connects, builds one report and writes it to the selected output.
func (a *App) reportRun(ctx context.Context, terms []string, build func(*reports.Reporter, context.Context, vcenter.Search) (*tabular.Table, error)) error {
	search, err := a.search(terms)
	if err != nil {
		return err
	}

	client, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	t, err := build(reports.New(slog.Default(), client, a.config.Extract), ctx, search)
	if err != nil {
		return err
	}
	return a.writeTable(client.Name(), t, settings.Stdout)
}
