package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nati-dev/nati-console/internal/db"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.dbURL == "" {
				return fmt.Errorf("--db-url or $DATABASE_URL is required")
			}
			if err := db.RunMigrations(opts.dbURL, opts.schema); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("migrations applied"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print migration status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.dbURL == "" {
				return fmt.Errorf("--db-url or $DATABASE_URL is required")
			}
			migrations, err := db.MigrationStatus(opts.dbURL, opts.schema)
			if err != nil {
				return err
			}
			return opts.printer(cmd.OutOrStdout()).print(migrations, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "VERSION\tFILE\tSTATE\tAPPLIED AT")
				for _, m := range migrations {
					state, at := yellow("pending"), "-"
					if m.Applied {
						state, at = green("applied"), m.AppliedAt.Local().Format(time.DateTime)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.Version, m.File, state, at)
				}
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.dbURL == "" {
				return fmt.Errorf("--db-url or $DATABASE_URL is required")
			}
			version, err := db.RollbackMigration(opts.dbURL, opts.schema)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), yellow(fmt.Sprintf("rolled back migration %d", version)))
			return nil
		},
	})
	return cmd
}
