package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Back up to Google Drive",
		Long: `Cloud sync uploads the whole database as one snapshot. The last
device to sync wins; nothing is merged.`,
	}
	cmd.AddCommand(newSyncLoginCommand(rootOpts))
	cmd.AddCommand(newSyncLogoutCommand(rootOpts))
	cmd.AddCommand(newSyncStatusCommand(rootOpts))
	cmd.AddCommand(newSyncRunCommand(rootOpts))
	cmd.AddCommand(newSyncCheckCommand(rootOpts))
	cmd.AddCommand(newSyncRestoreCommand(rootOpts))
	return cmd
}

func newSyncLoginCommand(opts *RootOptions) *cobra.Command {
	var code string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize Google Drive access and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			if !a.Provider.Configured() {
				return NewExitError(ExitCommandError, "cloud sync is not configured; set GOOGLE_CREDENTIALS_FILE")
			}
			if code == "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Open this link, allow access, then paste the code:\n%s\ncode: ", a.Provider.AuthURL(uuid.NewString()))
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return WrapExitError(ExitCommandError, "read code", err)
				}
				code = strings.TrimSpace(line)
			}
			if err := a.Provider.Exchange(cmd.Context(), code); err != nil {
				return WrapExitError(ExitFailure, "authorize", err)
			}
			account, err := a.Sync.SignIn(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "sign in", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(map[string]string{"account": account}, func(w io.Writer) {
				fmt.Fprintf(w, "Signed in as %s\n", account)
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "authorization code (prompted when empty)")
	return cmd
}

func newSyncLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out; local data is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)
			if err := a.Sync.SignOut(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "sign out", err)
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Signed out")
			return nil
		},
	}
}

func newSyncStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show sign-in state and the last successful sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			st, err := a.Sync.Status(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "sync status", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(st, func(w io.Writer) {
				fmt.Fprintf(w, "configured: %t\n", st.Configured)
				if !st.SignedIn {
					fmt.Fprintln(w, "signed in:  no")
					return
				}
				fmt.Fprintf(w, "signed in:  %s\n", st.Account)
				last := "never"
				if st.LastSyncedAt != nil {
					last = st.LastSyncedAt.In(a.Location).Format(time.DateTime)
				}
				fmt.Fprintf(w, "last sync:  %s\n", last)
			})
		},
	}
}

func newSyncRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Upload a snapshot now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			res := a.Sync.Sync(cmd.Context())
			if err := opts.printer(cmd.OutOrStdout()).print(res, func(w io.Writer) {
				if res.Success {
					fmt.Fprintf(w, "Synced at %s\n", res.SyncedAt.In(a.Location).Format(time.DateTime))
				}
			}); err != nil {
				return err
			}
			if !res.Success {
				return NewExitError(ExitFailure, res.Error)
			}
			return nil
		},
	}
}

func newSyncCheckCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Describe the backup stored in the cloud",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			remote, err := a.Sync.CheckExistingBackup(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "check cloud backup", err)
			}
			info := remote.Info
			return opts.printer(cmd.OutOrStdout()).print(info, func(w io.Writer) {
				if !info.Exists {
					fmt.Fprintln(w, "No cloud backup")
					return
				}
				fmt.Fprintf(w, "created: %s\nrecords: %d\n", info.CreatedAt, info.Records)
				for _, t := range info.Tables {
					fmt.Fprintf(w, "  %-16s %d\n", t.Table, t.Count)
				}
			})
		},
	}
}

func newSyncRestoreCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace local data with the cloud backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "restore replaces all data; pass --yes to confirm")
			}
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			remote, err := a.Sync.CheckExistingBackup(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "download cloud backup", err)
			}
			if !remote.Info.Exists {
				return NewExitError(ExitFailure, "no cloud backup to restore")
			}
			n, err := a.Sync.RestoreFromBackup(cmd.Context(), remote.Snapshot)
			if err != nil {
				return WrapExitError(ExitFailure, "restore", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(map[string]int64{"records": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Restored %d records\n", n)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing all data")
	return cmd
}
