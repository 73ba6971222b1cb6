package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nati-dev/nati-console/internal/db/sqlc"
	"github.com/nati-dev/nati-console/internal/usage"
)

type usageOptions struct {
	userID   string
	preset   string
	start    string
	end      string
	timezone string
}

func (o *usageOptions) resolve(now time.Time) (usage.Range, *time.Location, error) {
	loc := time.Local
	if o.timezone != "" {
		l, err := time.LoadLocation(o.timezone)
		if err != nil {
			return usage.Range{}, nil, fmt.Errorf("unknown timezone %q: %w", o.timezone, err)
		}
		loc = l
	}
	if o.start != "" || o.end != "" {
		r, err := usage.CustomRange(o.start, o.end, loc)
		return r, loc, err
	}
	r, err := usage.PresetRange(usage.Preset(o.preset), now.In(loc))
	return r, loc, err
}

func newUsageCommand(opts *rootOptions) *cobra.Command {
	uo := &usageOptions{preset: string(usage.Preset7d)}

	cmd := &cobra.Command{
		Use:   "usage --user <id>",
		Short: "Summarize AI usage for a date range",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if uo.userID == "" {
				return fmt.Errorf("--user is required")
			}
			r, loc, err := uo.resolve(time.Now())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := usage.NewService(usage.NewStore(sqlc.New(pool)), loc)
			summary, err := svc.Summarize(ctx, uo.userID, r)
			if err != nil {
				return err
			}

			return opts.printer(cmd.OutOrStdout()).print(summary, func(tw *tabwriter.Writer) {
				printUsageTable(tw, summary)
			})
		},
	}
	cmd.Flags().StringVar(&uo.userID, "user", "", "User id (required)")
	cmd.Flags().StringVar(&uo.preset, "preset", uo.preset, "Range preset: 24h, 7d, 30d, 90d, this_month, last_month, this_year")
	cmd.Flags().StringVar(&uo.start, "start", "", "Custom range start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&uo.end, "end", "", "Custom range end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&uo.timezone, "tz", "", "IANA time zone for daily grouping (default: local)")

	cmd.AddCommand(newUsageRecordCommand(opts))
	return cmd
}

type recordOptions struct {
	userID           string
	model            string
	promptTokens     int32
	completionTokens int32
	totalTokens      int32
	cost             string
	responseTimeMs   int32
	status           string
	project          string
}

func (o *recordOptions) params(responseTimeSet bool) (usage.RecordParams, error) {
	if o.userID == "" || o.model == "" {
		return usage.RecordParams{}, fmt.Errorf("--user and --model are required")
	}
	if o.cost != "" {
		if _, err := strconv.ParseFloat(o.cost, 64); err != nil {
			return usage.RecordParams{}, fmt.Errorf("--cost must be a number: %q", o.cost)
		}
	}
	p := usage.RecordParams{
		UserID:           o.userID,
		Model:            o.model,
		PromptTokens:     o.promptTokens,
		CompletionTokens: o.completionTokens,
		TotalTokens:      o.totalTokens,
		Cost:             o.cost,
		Status:           o.status,
		Project:          o.project,
	}
	if p.TotalTokens == 0 {
		p.TotalTokens = p.PromptTokens + p.CompletionTokens
	}
	if responseTimeSet {
		ms := o.responseTimeMs
		p.ResponseTimeMs = &ms
	}
	return p, nil
}

func newUsageRecordCommand(opts *rootOptions) *cobra.Command {
	ro := &recordOptions{status: usage.StatusSuccess}

	cmd := &cobra.Command{
		Use:   "record --user <id> --model <name>",
		Short: "Record one usage event",
		RunE: func(cmd *cobra.Command, _ []string) error {
			params, err := ro.params(cmd.Flags().Changed("response-ms"))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			id, err := usage.NewStore(sqlc.New(pool)).Record(ctx, params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&ro.userID, "user", "", "User id (required)")
	cmd.Flags().StringVar(&ro.model, "model", "", "Model name (required)")
	cmd.Flags().Int32Var(&ro.promptTokens, "prompt-tokens", 0, "Prompt tokens")
	cmd.Flags().Int32Var(&ro.completionTokens, "completion-tokens", 0, "Completion tokens")
	cmd.Flags().Int32Var(&ro.totalTokens, "total-tokens", 0, "Total tokens (default: prompt + completion)")
	cmd.Flags().StringVar(&ro.cost, "cost", "", "Cost in dollars")
	cmd.Flags().Int32Var(&ro.responseTimeMs, "response-ms", 0, "Response time in milliseconds")
	cmd.Flags().StringVar(&ro.status, "status", ro.status, "Event status")
	cmd.Flags().StringVar(&ro.project, "project", "", "Project name")
	return cmd
}

func printUsageTable(tw *tabwriter.Writer, s usage.Summary) {
	fmt.Fprintf(tw, "%s\t%s - %s\n", bold("Range"), s.Range.Start.Format(time.DateOnly), s.Range.End.Format(time.DateOnly))
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold("Tokens"), humanize.Comma(s.TotalTokens), trendText(s.Trends.Tokens))
	fmt.Fprintf(tw, "%s\t$%.4f\t%s\n", bold("Cost"), s.TotalCost, trendText(s.Trends.Cost))
	fmt.Fprintf(tw, "%s\t%d\t%s\n", bold("Requests"), s.TotalRequests, trendText(s.Trends.Requests))
	fmt.Fprintf(tw, "%s\t%.2fs\t%s\n", bold("Avg response"), s.AvgResponseTime, trendText(s.Trends.ResponseTime))

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, bold("MODEL\tPROVIDER\tTOKENS\tCOST\tREQUESTS"))
	for _, m := range s.Models {
		fmt.Fprintf(tw, "%s\t%s\t%s\t$%.4f\t%d\n", m.Model, m.Provider, humanize.Comma(m.Tokens), m.Cost, m.Requests)
	}

	if len(s.TopProjects) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, bold("PROJECT\tTOKENS\tCOST\tREQUESTS"))
		for _, p := range s.TopProjects {
			fmt.Fprintf(tw, "%s\t%s\t$%.4f\t%d\n", p.Name, humanize.Comma(p.Tokens), p.Cost, p.Requests)
		}
	}
}
