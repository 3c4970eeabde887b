package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	remindBefore string
	snoozeDays   int
	snoozeBy     string
)

// remindersCmd represents the reminders command
var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Work with action reminders",
}

var remindersDueCmd = &cobra.Command{
	Use:   "due",
	Short: "List open actions whose reminder has come due",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		before := time.Now().UTC()
		if remindBefore != "" {
			t, err := parseTime(remindBefore)
			if err != nil {
				return err
			}
			before = t
		}

		return withApp(cmd, func(ctx context.Context, a *app) error {
			due, err := a.service.DueReminders(ctx, before)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "REMINDER\tCLAIM\tVESSEL\tACTION ID\tOWNER\tACTION")
			for _, r := range due {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					r.ReminderAt.Format("2006-01-02 15:04"),
					r.ClaimNumber,
					orDash(r.VesselName),
					r.ActionID,
					r.OwnerRole,
					r.Title,
				)
			}
			return tw.Flush()
		})
	},
}

var remindersSnoozeCmd = &cobra.Command{
	Use:   "snooze <claim> <action-id>",
	Short: "Push an action reminder back by N days",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			act, err := a.service.SnoozeReminder(ctx, args[0], args[1], snoozeBy, snoozeDays)
			if err != nil {
				return err
			}
			stderrf("✓ Reminder moved to %s\n", act.ReminderAt.Format(time.RFC3339))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(remindersCmd)
	remindersCmd.AddCommand(remindersDueCmd)
	remindersCmd.AddCommand(remindersSnoozeCmd)

	remindersDueCmd.Flags().StringVar(&remindBefore, "before", "", "cutoff time (RFC3339 or YYYY-MM-DD, default: now)")

	remindersSnoozeCmd.Flags().IntVar(&snoozeDays, "days", 1, "days to snooze")
	remindersSnoozeCmd.Flags().StringVar(&snoozeBy, "by", "", "user making the change (required)")
	_ = remindersSnoozeCmd.MarkFlagRequired("by")
}
