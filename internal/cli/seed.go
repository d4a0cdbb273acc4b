package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zhima-Mochi/garmentshop/internal/bootstrap"
	"github.com/Zhima-Mochi/garmentshop/internal/config"
)

func newSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default catalog when the store holds no garments",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app, err := bootstrap.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())

			n, err := app.Shop.SeedCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "catalog already seeded")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d garments\n", n)
			return nil
		},
	}
}
