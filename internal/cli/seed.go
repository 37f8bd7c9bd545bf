package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"

	"github.com/spf13/cobra"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load a starter catalog of categories, products and customers",
		Long: `Load categories, products and customers from a YAML file. Entries whose
name already exists are skipped, so seeding twice is harmless.

Example:
  kiranamitra seed starter.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "open catalog", err)
			}
			defer f.Close()

			a, err := rootOpts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.Seed.Seed(cmd.Context(), f)
			if err != nil {
				return WrapExitError(ExitFailure, "seed", err)
			}
			return rootOpts.printer(cmd.OutOrStdout()).print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Added %d categories, %d products, %d customers (%d skipped)\n",
					res.Categories, res.Products, res.Customers, res.Skipped)
			})
		},
	}
}
