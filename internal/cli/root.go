package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/nati-dev/nati-console/internal/db"
	"github.com/nati-dev/nati-console/internal/logging"
)

type rootOptions struct {
	dbURL    string
	schema   string
	output   string
	logLevel string
}

// NewRootCommand builds the natictl command tree.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{
		dbURL:    os.Getenv("DATABASE_URL"),
		output:   formatTable,
		logLevel: logging.LOG_LEVEL_WARNING,
	}

	root := &cobra.Command{
		Use:           "natictl",
		Short:         "Operate a Nati console database",
		Long:          "natictl inspects agents, usage and remote commands directly in the Nati console database.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Init(logging.Config{Level: opts.logLevel})
			switch opts.output {
			case formatTable, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unknown output format %q (valid: table, json, yaml)", opts.output)
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.dbURL, "db-url", opts.dbURL, "PostgreSQL connection URL (default: $DATABASE_URL)")
	root.PersistentFlags().StringVar(&opts.schema, "schema", "", "PostgreSQL schema")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", opts.output, "Output format: table, json or yaml")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "Log level: ERROR, WARNING, INFO or DEBUG")

	root.AddCommand(
		newMigrateCommand(opts),
		newAgentsCommand(opts),
		newUsageCommand(opts),
		newSendCommand(opts),
		newHealthCommand(opts),
		newCertsCommand(),
	)
	return root
}

func (o *rootOptions) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if strings.TrimSpace(o.dbURL) == "" {
		return nil, fmt.Errorf("--db-url or $DATABASE_URL is required")
	}
	return db.InitDB(ctx, db.Config{Url: o.dbURL, Schema: o.schema, MaxConns: 2, MinConns: 1})
}

func (o *rootOptions) printer(w io.Writer) *printer {
	return &printer{w: w, format: o.output}
}
