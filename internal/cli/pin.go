package cli

import (
	"fmt"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/dto"

	"github.com/spf13/cobra"
)

func NewPinCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the unlock PIN",
	}

	var req dto.SetPinRequest
	set := &cobra.Command{
		Use:   "set",
		Short: "Set the first PIN, or change it with --current",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rootOpts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.Auth.SetPIN(cmd.Context(), req); err != nil {
				return WrapExitError(ExitFailure, "set PIN", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "PIN updated")
			return nil
		},
	}
	set.Flags().StringVar(&req.NewPIN, "new", "", "new PIN, 4 to 6 digits")
	set.Flags().StringVar(&req.CurrentPIN, "current", "", "current PIN, required to change it")
	_ = set.MarkFlagRequired("new")

	cmd.AddCommand(set)
	return cmd
}
