package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func installVCentersCmd(app *App) {
	cmd := &cobra.Command{
		Use:   "vcenters",
		Short: "List the configured vCenter profiles",
		Long: `List the vCenter profile names declared in the connection profiles file,
the default profile first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := app.config.ConfiguredVCenters()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
	app.cmd.AddCommand(cmd)
}
