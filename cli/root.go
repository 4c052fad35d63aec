package cli

import (
	"github.com/spf13/cobra"

	"github.com/rosterhq/roster/pkg/version"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "roster",
		Short:   "Roster user directory service",
		Version: version.GetVersion(),
	}

	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
	)

	return root
}
