package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/reports"
	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/spf13/cobra"
)

func installListCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "list TYPE [SEARCH...]",
		Short: "List the managed objects of a type",
		Long: `List the managed objects of a type with their reference and inventory path.

Accepted types: ` + strings.Join(vcenter.KindAliases(), ", ") + `.

With --uuid the single search term is a VM instance UUID, a VM BIOS UUID or
a host hardware UUID, looked up across every datacenter.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.listRun(cmd.Context(), args[0], args[1:])
		},
	}
	installSearchFlags(app, cmd)
	installOutFlags(app, cmd)
	cmd.Flags().BoolVar(&app.config.uuid, "uuid", false, "look the object up by UUID instead of searching")
	app.cmd.AddCommand(cmd)
}

func (a *App) listRun(ctx context.Context, kindName string, terms []string) error {
	kind, err := vcenter.ResolveKind(kindName)
	if err != nil {
		a.cmd.SilenceUsage = false
		return err
	}
	if a.config.uuid && len(terms) != 1 {
		a.cmd.SilenceUsage = false
		return errors.New("--uuid expects exactly one UUID search term")
	}
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
	var t *tabular.Table
	if a.config.uuid {
		t, err = r.ListUUID(ctx, terms[0])
	} else {
		t, err = r.List(ctx, kind, search)
	}
	if err != nil {
		return err
	}
	return a.writeTable(client.Name(), t, settings.Stdout)
}
