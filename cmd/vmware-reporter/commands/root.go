// Package commands provides the vmware-reporter command line tool.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ipamo/vmware-reporter/internal/cli"
	"github.com/ipamo/vmware-reporter/internal/constants"
	"github.com/ipamo/vmware-reporter/internal/settings"
	"github.com/ipamo/vmware-reporter/internal/tabular"
	"github.com/ipamo/vmware-reporter/internal/vcenter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// App represents the application.
type App struct {
	cmd    *cobra.Command
	viper  *viper.Viper
	config appConfig
}

// appConfig holds the configuration for the application.
type appConfig struct {
	Verbosity int
	JSONLogs  bool

	settings.Config `mapstructure:",squash" yaml:",inline"`

	// Flag only values of the invoked subcommand.
	normalize bool
	key       string
	out       string
	csv       bool

	uuid          bool
	path          string
	pattern       string
	maxDepth      int
	caseSensitive bool
	parents       bool
}

// New creates a new App instance with default values.
func New() (*App, error) {
	a := App{}

	a.cmd = &cobra.Command{
		Use:   constants.CmdName,
		Short: "Report on the inventory of VMware vCenter environments",
		Long: constants.CmdName + ` builds inventory reports of VMware vCenter environments:
virtual machines, hosts, networks and datastores, datastore content listings
and statistics, per-object JSON dumps and datastore file transfers.

Connections are declared in a connection profiles file or passed with the
--host, --user and --password flags. Most commands accept search terms
matching object names by case-insensitive equality, * ? [ shell patterns or
/regular expressions/.`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Command parsing has been successful. Returns to not print usage anymore.
			a.cmd.SilenceUsage = true
			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Set verbosity before loading config
			if err := cli.InitViperConfig(constants.CmdName, a.cmd, a.viper); err != nil {
				return err
			}
			if err := a.viper.Unmarshal(&a.config); err != nil {
				return fmt.Errorf("unable to strictly decode configuration into struct: %w", err)
			}
			slog.Info("got app config", "config", a.config)

			cli.SetSlog(a.config.Verbosity, a.config.JSONLogs) // Update logging after loading config if necessary
			return a.config.Sanitize(slog.Default())
		},
	}
	a.viper = viper.New()
	a.cmd.CompletionOptions.HiddenDefaultCmd = true

	installRootCmd(&a)
	installVCentersCmd(&a)
	installInventoryCmd(&a)
	installListCmd(&a)
	installExportCmd(&a)
	installVMCmd(&a)
	installHostCmd(&a)
	installNetCmd(&a)
	installDatastoreCmd(&a)
	installAutoreportCmd(&a)
	cli.InstallConfigFlag(a.cmd)

	if err := a.viper.BindPFlags(a.cmd.PersistentFlags()); err != nil {
		return nil, err
	}

	a.installVersion()

	return &a, nil
}

func installRootCmd(app *App) {
	cmd := app.cmd

	cmd.PersistentFlags().CountVarP(&app.config.Verbosity, "verbose", "v", "issue INFO (-v), DEBUG (-vv)")
	cmd.PersistentFlags().BoolVar(&app.config.JSONLogs, "json-logs", false, "enable JSON formatted logs")

	// Connection flags
	cmd.PersistentFlags().StringVar(&app.config.VCenter, "vcenter", "", "name of the vCenter connection profile to use")
	cmd.PersistentFlags().StringVar(&app.config.Host, "host", "", "vCenter host name, host:port or URL")
	cmd.PersistentFlags().StringVarP(&app.config.User, "user", "u", "", "vCenter user name")
	cmd.PersistentFlags().StringVarP(&app.config.Password, "password", "P", "", "vCenter password")
	cmd.PersistentFlags().BoolVar(&app.config.Insecure, "insecure", false, "skip TLS certificate verification")
	cmd.PersistentFlags().StringVar(&app.config.Connections, "connections", "", "path to the connection profiles file")

	if err := cmd.MarkPersistentFlagFilename("connections", "ini"); err != nil {
		panic(fmt.Sprintf("failed to mark connections flag as filename: %v", err))
	}
}

// installSearchFlags adds the object selection flags shared by the reporting
// commands.
func installSearchFlags(app *App, cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&app.config.normalize, "normalize", "n", false, "strip diacritics from terms and names before matching")
	cmd.Flags().StringVarP(&app.config.key, "key", "k", vcenter.KeyName, "search key: "+vcenter.KeyName+" or "+vcenter.KeyRef)
}

// installOutFlags adds the output selection flags shared by the tabular
// commands.
func installOutFlags(app *App, cmd *cobra.Command) {
	cmd.Flags().StringVarP(&app.config.out, "out", "o", "", "output file (default: the standard output)")
	cmd.Flags().BoolVar(&app.config.csv, "csv", false, "force CSV rendering on the standard output")
}

// Run executes the command and associated process, returning an error if any.
func (a App) Run() error {
	return a.cmd.Execute()
}

// UsageError returns if the error is a command parsing or runtime one.
func (a App) UsageError() bool {
	return !a.cmd.SilenceUsage
}

// RootCmd returns the root command.
func (a App) RootCmd() cobra.Command {
	return *a.cmd
}

// search builds the object selection from the positional terms and the
// --normalize and --key flags. An invalid selection is a usage error.
func (a *App) search(terms []string) (vcenter.Search, error) {
	s := vcenter.Search{Terms: terms, Key: a.config.key, Normalize: a.config.normalize}
	if _, err := s.Compile(); err != nil {
		a.cmd.SilenceUsage = false
		return vcenter.Search{}, err
	}
	return s, nil
}

// connect resolves the selected connection profile and opens the session.
func (a *App) connect(ctx context.Context) (*vcenter.Client, error) {
	conn, err := a.config.Connection()
	if err != nil {
		return nil, err
	}
	return vcenter.Connect(ctx, slog.Default(), conn)
}

// writeTable renders t to the target selected by --out, falling back to
// defaultTarget. A target naming a directory is completed with the tabular
// output mask.
func (a *App) writeTable(vcenterName string, t *tabular.Table, defaultTarget string) error {
	out := a.config.out
	if out == "" {
		out = defaultTarget
	}
	target, err := a.config.CompileOut(out, a.config.Out.Tabular, settings.PathAttrs{VCenter: vcenterName, Title: t.Title})
	if err != nil {
		return err
	}

	var opts []tabular.Option
	if a.config.csv {
		opts = append(opts, tabular.WithCSV())
	}
	return tabular.Write(t, target, opts...)
}
