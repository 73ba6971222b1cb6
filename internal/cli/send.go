package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nati-dev/nati-console/internal/agents"
	"github.com/nati-dev/nati-console/internal/api/http/dto"
	"github.com/nati-dev/nati-console/internal/commands"
	"github.com/nati-dev/nati-console/internal/db/sqlc"
	"github.com/nati-dev/nati-console/internal/registry"
)

type sendOptions struct {
	userID  string
	typ     string
	target  string
	agentID string
	payload string
}

func (o *sendOptions) validate() (commands.Type, map[string]any, error) {
	if o.userID == "" {
		return "", nil, fmt.Errorf("--user is required")
	}
	typ, err := commands.ParseType(o.typ)
	if err != nil {
		return "", nil, err
	}
	var payload map[string]any
	if o.payload != "" {
		if err := json.Unmarshal([]byte(o.payload), &payload); err != nil {
			return "", nil, fmt.Errorf("--payload must be a JSON object: %w", err)
		}
	}
	return typ, payload, nil
}

func newSendCommand(opts *rootOptions) *cobra.Command {
	so := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send --user <id> --type <type> [--target <name>]",
		Short: "Queue a remote command for an agent",
		Long: "Queue a remote command for the user's selected agent. Without --agent the first online " +
			"agent is used. Delivery is not acknowledged.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			typ, payload, err := so.validate()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			queries := sqlc.New(pool)
			poller := registry.NewPoller(so.userID, agents.NewService(queries), 0)
			if err := poller.Refresh(ctx); err != nil {
				return err
			}
			if so.agentID != "" {
				if err := poller.Select(so.agentID); err != nil {
					return fmt.Errorf("select %s: %w", so.agentID, err)
				}
			}

			dispatcher := commands.NewDispatcher(so.userID, commands.NewService(queries), poller, 0)
			defer dispatcher.Close()

			sent, err := dispatcher.Send(ctx, typ, so.target, payload)
			if err != nil {
				return err
			}

			view := dto.NewCommandResponse(sent)
			return opts.printer(cmd.OutOrStdout()).print(view, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "%s\t%s\n", bold("Command"), view.ID)
				fmt.Fprintf(tw, "%s\t%s\n", bold("Type"), view.Type)
				fmt.Fprintf(tw, "%s\t%s\n", bold("Session"), view.TargetSessionID)
				fmt.Fprintf(tw, "%s\t%s\n", bold("Queued"), view.CreatedAt.Format(time.RFC3339))
			})
		},
	}
	cmd.Flags().StringVar(&so.userID, "user", "", "Owner user id (required)")
	cmd.Flags().StringVar(&so.typ, "type", "", "Command type: build, start_app, stop_app, restart_app, execute_terminal")
	cmd.Flags().StringVar(&so.target, "target", "", "Application the command is about")
	cmd.Flags().StringVar(&so.agentID, "agent", "", "Agent id to address instead of the first online agent")
	cmd.Flags().StringVar(&so.payload, "payload", "", "Extra command data as a JSON object")
	return cmd
}
