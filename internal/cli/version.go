package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/cardsets/pkg/cardsets"
)

const modulePath = "github.com/mesh-intelligence/cardsets"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cardsets version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "cardsets v%s\nmodule: %s\n", cardsets.Version, modulePath)
			return nil
		},
	}
}
