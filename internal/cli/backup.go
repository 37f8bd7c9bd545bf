package cli

import (
	"fmt"
	"io"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/service"

	"github.com/spf13/cobra"
)

func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export, import and inspect JSON backups",
	}
	cmd.AddCommand(newBackupInfoCommand(rootOpts))
	cmd.AddCommand(newBackupExportCommand(rootOpts))
	cmd.AddCommand(newBackupImportCommand(rootOpts))
	return cmd
}

func newBackupInfoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show how many records each table holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			info, err := a.Backup.GetBackupInfo(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "backup info", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(info, func(w io.Writer) {
				for _, t := range info.Tables {
					fmt.Fprintf(w, "%-16s %d\n", t.Table, t.Count)
				}
				fmt.Fprintf(w, "%-16s %d\n", "total", info.TotalRecords)
			})
		},
	}
}

func newBackupExportCommand(opts *RootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup file into the backup directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.BackupDir = dir
			}
			a, err := app.New(cfg, app.Options{})
			if err != nil {
				return WrapExitError(ExitCommandError, "open database", err)
			}
			defer closeApp(a)

			res, err := a.Backup.ExportData(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "export", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Exported %d records to %s\n", res.Records, res.Path)
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "backup directory (overrides BACKUP_DIR)")
	return cmd
}

func newBackupImportCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all shop data with a backup file",
		Long: `Replace every table with the contents of a backup file. Existing data
is deleted. Nothing changes if the file is not a valid backup.

Example:
  kiranamitra backup import --yes backups/kiranamitra-backup-20260101-093000.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "import replaces all data; pass --yes to confirm")
			}
			a, err := opts.open(app.Options{})
			if err != nil {
				return err
			}
			defer closeApp(a)

			res, err := a.Backup.ImportData(cmd.Context(), service.FilePath(args[0]))
			if err != nil {
				return WrapExitError(ExitFailure, "import", err)
			}
			return opts.printer(cmd.OutOrStdout()).print(res, func(w io.Writer) {
				fmt.Fprintf(w, "Imported %d records\n", res.Records)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm replacing all data")
	return cmd
}
