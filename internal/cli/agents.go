package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/db/sqlc"
	"github.com/nati-dev/nati-console/internal/registry"
)

func newAgentsCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect desktop agents",
	}
	cmd.AddCommand(newAgentsListCommand(opts), newAgentsLogsCommand(opts))
	return cmd
}

func newAgentsListCommand(opts *rootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "list --user <id>",
		Short: "List a user's agents, online first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			poller := registry.NewPoller(userID, agents.NewService(sqlc.New(pool)), 0)
			if err := poller.Refresh(ctx); err != nil {
				return err
			}
			view := dto.NewRegistryResponse(poller.Snapshot(), time.Now())

			return opts.printer(cmd.OutOrStdout()).print(view, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, bold("ID\tNAME\tSTATUS\tCPU\tMEM\tDISK\tLAST SEEN"))
				for _, a := range append(view.Online, view.Offline...) {
					marker := ""
					if a.ID == view.SelectedID {
						marker = " *"
					}
					fmt.Fprintf(tw, "%s%s\t%s\t%s\t%.1f%%\t%.1f%%\t%.1f%%\t%s\n",
						a.ID, marker, a.Name, statusText(a.Online),
						a.SystemInfo.CPU, a.SystemInfo.Memory, a.SystemInfo.Disk, a.LastSeen)
				}
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "Owner user id (required)")
	return cmd
}

func newAgentsLogsCommand(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs <agent-id>",
		Short: "Show the newest build logs of an agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			logs, err := agents.NewService(sqlc.New(pool)).ListBuildLogs(ctx, args[0], limit)
			if err != nil {
				return err
			}

			return opts.printer(cmd.OutOrStdout()).print(dto.NewListBuildLogsResponse(logs), func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, bold("STARTED\tPROJECT\tSTATUS\tDURATION"))
				for _, l := range logs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
						l.StartedAt.Format(time.DateTime), l.ProjectName, buildStatusText(l.Status), l.Duration.Round(time.Millisecond))
				}
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", agents.DefaultBuildLogLimit, "Number of logs to show")
	return cmd
}

func buildStatusText(s agents.BuildStatus) string {
	switch s {
	case agents.BuildSuccess:
		return green(string(s))
	case agents.BuildFailed:
		return red(string(s))
	default:
		return yellow(string(s))
	}
}
