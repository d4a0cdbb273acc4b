// Package cli holds the garmentshop command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand returns the garmentshop command with serve and seed attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "garmentshop",
		Short:         "Garment storefront service",
		Long:          "garmentshop serves the storefront HTTP API. Configuration is read from the environment.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCommand())
	root.AddCommand(newSeedCommand())
	return root
}
