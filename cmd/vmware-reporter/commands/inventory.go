package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ipamo/vmware-reporter/internal/fileutils"
	"github.com/ipamo/vmware-reporter/internal/reports"
	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func installInventoryCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Write the whole entity tree as YAML",
		Long: `Write the whole managed entity tree as a nested YAML document. Every node
key is "name (ref)", entities without children are null.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.inventoryRun(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&app.config.out, "out", "o", "", "output file (default: the inventory output mask)")
	app.cmd.AddCommand(cmd)
}

func (a *App) inventoryRun(ctx context.Context) error {
	client, err := a.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	r := reports.New(slog.Default(), client, a.config.Extract)
	doc, err := r.Inventory(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("could not render the inventory tree: %v", err)
	}

	target, err := a.config.CompileOut(a.config.out, a.config.Out.Inventory, settings.PathAttrs{VCenter: client.Name()})
	if err != nil {
		return err
	}
	if target == settings.Stdout {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := fileutils.CreateParents(target); err != nil {
		return err
	}
	if err := fileutils.AtomicWrite(target, data); err != nil {
		return err
	}
	slog.Info("Wrote inventory", "path", target)
	return nil
}
