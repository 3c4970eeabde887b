package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marincop/internal/claims"
	"github.com/ppiankov/marincop/internal/finance"
	"github.com/ppiankov/marincop/internal/model"
)

var (
	updateBy       string
	progressStatus string
	financeSet     []string

	actionStatus  string
	actionNotes   string
	actionRemind  string
	actionNoAlarm bool
)

// progressCmd represents the progress command
var progressCmd = &cobra.Command{
	Use:   "progress <claim>",
	Short: "Set the progress status of a claim",
	Long: `Progress records a new progress status in the claim's status log.

Example:
  marincop progress MC-NOVA-2026-0003 --status "Surveyor appointed" --by j.doe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			claim, err := a.service.UpdateProgress(ctx, args[0], updateBy, progressStatus)
			if err != nil {
				return err
			}
			stderrf("✓ %s: %s\n", claim.ClaimNumber, claim.ProgressStatus)
			return nil
		})
	},
}

// financeCmd represents the finance command
var financeCmd = &cobra.Command{
	Use:   "finance <claim>",
	Short: "Update the financial exposure of a claim",
	Long: `Finance merges the given fields into the claim's finance record and
recomputes recoverable and outstanding amounts.

Keys: currency, reserveEstimated (reserve), cashOut (paid), deductible,
recovered, notes. Derived amounts cannot be set.

Example:
  marincop finance MC-NOVA-2026-0003 --set cashOut=25000 --set deductible=12000 --by j.doe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := parsePatch(financeSet)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			fin, err := a.service.UpdateFinance(ctx, args[0], updateBy, patch)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), fin)
		})
	},
}

// actionCmd represents the action command
var actionCmd = &cobra.Command{
	Use:   "action <claim> <action-id>",
	Short: "Update one action of a claim",
	Long: `Action changes the status, notes or reminder of one planned action.

Example:
  marincop action MC-NOVA-2026-0003 3f2a... --status DONE --by j.doe
  marincop action MC-NOVA-2026-0003 3f2a... --remind-at 2026-04-01T09:00:00Z --by j.doe`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		upd, err := actionUpdateFromFlags(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app) error {
			act, err := a.service.UpdateAction(ctx, args[0], args[1], updateBy, upd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), act)
		})
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(financeCmd)
	rootCmd.AddCommand(actionCmd)

	for _, c := range []*cobra.Command{progressCmd, financeCmd, actionCmd} {
		c.Flags().StringVar(&updateBy, "by", "", "user making the change (required)")
		_ = c.MarkFlagRequired("by")
	}

	progressCmd.Flags().StringVar(&progressStatus, "status", "", "new progress status")
	_ = progressCmd.MarkFlagRequired("status")

	financeCmd.Flags().StringArrayVar(&financeSet, "set", nil, "finance field as key=value (repeatable)")

	actionCmd.Flags().StringVar(&actionStatus, "status", "", "OPEN or DONE")
	actionCmd.Flags().StringVar(&actionNotes, "notes", "", "replace the action notes")
	actionCmd.Flags().StringVar(&actionRemind, "remind-at", "", "reminder time (RFC3339 or YYYY-MM-DD)")
	actionCmd.Flags().BoolVar(&actionNoAlarm, "clear-reminder", false, "remove the reminder")
}

// parsePatch turns key=value pairs into a finance patch
func parsePatch(pairs []string) (finance.Patch, error) {
	if len(pairs) == 0 {
		return nil, model.NewValidationError("set", "at least one key=value is required")
	}
	patch := make(finance.Patch, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, model.NewValidationError("set", "expected key=value, got %q", pair)
		}
		if finance.CanonicalKey(key) == "" {
			return nil, model.NewValidationError("set", "unknown or derived finance key %q", key)
		}
		patch[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return patch, nil
}

func actionUpdateFromFlags(cmd *cobra.Command) (claims.ActionUpdate, error) {
	var upd claims.ActionUpdate
	if cmd.Flags().Changed("status") {
		s := model.ActionStatus(actionStatus)
		upd.Status = &s
	}
	if cmd.Flags().Changed("notes") {
		n := actionNotes
		upd.Notes = &n
	}
	if actionRemind != "" {
		t, err := parseTime(actionRemind)
		if err != nil {
			return upd, model.NewValidationError("remind-at", "%v", err)
		}
		upd.ReminderAt = &t
	}
	upd.ClearReminder = actionNoAlarm

	if upd.Status == nil && upd.Notes == nil && upd.ReminderAt == nil && !upd.ClearReminder {
		return upd, model.NewValidationError("action", "nothing to update")
	}
	return upd, nil
}

// parseTime accepts RFC3339 or a bare date (midnight UTC)
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: use RFC3339 or YYYY-MM-DD", s)
	}
	return t, nil
}
