package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/ipamo/vmware-reporter/internal/fileutils"
	"github.com/ipamo/vmware-reporter/internal/reports"
	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/spf13/cobra"
)

// defaultExportKinds are the kinds dumped when the export command is called
// without a type list.
var defaultExportKinds = []string{"VirtualMachine", "HostSystem", "Network", "DistributedVirtualSwitch", "Datastore"}

func installExportCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "export [TYPES [SEARCH...]]",
		Short: "Dump managed objects as JSON files",
		Long: `Dump every property of the matched managed objects, one JSON file per
object under the export output mask.

TYPES is a comma separated list of types (` + strings.Join(vcenter.KindAliases(), ", ") + `).
Without arguments the virtual machines, hosts, networks, distributed
switches and datastores are dumped.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.exportRun(cmd.Context(), args)
		},
	}
	installSearchFlags(app, cmd)
	cmd.Flags().StringVarP(&app.config.out, "out", "o", "", "output mask of the JSON dumps (default: the export output mask)")
	app.cmd.AddCommand(cmd)
}

func (a *App) exportRun(ctx context.Context, args []string) error {
	kinds := defaultExportKinds
	var terms []string
	if len(args) > 0 {
		resolved, err := resolveKinds(args[0])
		if err != nil {
			a.cmd.SilenceUsage = false
			return err
		}
		kinds = resolved
		terms = args[1:]
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
	count, err := r.Export(ctx, kinds, search, func(obj vcenter.Object, data []byte) error {
		return a.writeExport(client.Name(), obj, data)
	})
	if err != nil {
		return err
	}
	slog.Info("Exported objects", "count", count)
	return nil
}

// writeExport writes one object dump to the export output mask.
func (a *App) writeExport(vcenterName string, obj vcenter.Object, data []byte) error {
	attrs := settings.PathAttrs{
		VCenter:  vcenterName,
		TypeName: obj.Ref.Type,
		Name:     safeName(obj.Name),
		Ref:      obj.Ref.Value,
	}
	target, err := a.config.CompileOut(a.config.out, a.config.Out.Export, attrs)
	if err != nil {
		return err
	}
	if target == settings.Stdout {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}

	if err := fileutils.CreateParents(target); err != nil {
		return err
	}
	if err := fileutils.AtomicWrite(target, data); err != nil {
		return err
	}
	slog.Debug("Wrote object dump", "path", target)
	return nil
}

func resolveKinds(arg string) ([]string, error) {
	var kinds []string
	for _, name := range strings.Split(arg, ",") {
		kind, err := vcenter.ResolveKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// safeName keeps object names from escaping the export directory.
func safeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	return strings.ReplaceAll(name, `\`, "_")
}
