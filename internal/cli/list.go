package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listJSON bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			summaries, err := a.service.ListSummaries(ctx)
			if err != nil {
				return err
			}
			if listJSON {
				return printJSON(cmd.OutOrStdout(), summaries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CLAIM\tVESSEL\tEVENT DATE\tPROGRESS\tCOVERS\tOUTSTANDING\tOPEN")
			for _, s := range summaries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s %.2f\t%d\n",
					s.ClaimNumber,
					orDash(s.VesselName),
					orDash(s.EventDateText),
					s.ProgressStatus,
					strings.Join(s.Covers, ", "),
					s.Currency, s.OutstandingRecovery,
					s.OpenActions,
				)
			}
			return tw.Flush()
		})
	},
}

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <id|claim-number>",
	Short: "Show a claim as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			claim, err := a.service.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), claim)
		})
	},
}

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan <id|claim-number>",
	Short: "Recompute the action plan for a claim without changing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			actions, err := a.service.Replan(ctx, args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DUE\tOWNER\tACTION")
			for _, act := range actions {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", act.DueAt.Format("2006-01-02 15:04"), act.OwnerRole, act.Title)
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(planCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "print summaries as JSON")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
