package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marincop/internal/finance"
)

var insightsJSON bool

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show portfolio totals and highlights",
	Long: `Insights sums cash-out, recoveries and outstanding recovery per currency
and names the most frequent cover, the vessel with the highest cash-out and
the largest single claim.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			p, err := a.service.Portfolio(ctx)
			if err != nil {
				return err
			}
			if insightsJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			return printPortfolio(cmd.OutOrStdout(), p)
		})
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().BoolVar(&insightsJSON, "json", false, "print the portfolio as JSON")
}

func printPortfolio(w io.Writer, p finance.Portfolio) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CURRENCY\tCLAIMS\tCASH OUT\tRECOVERED\tOUTSTANDING")
	for _, t := range p.Totals {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\t%.2f\n", orDash(t.Currency), t.Claims, t.CashOut, t.Recovered, t.OutstandingRecovery)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Claims:              %d\n", p.Claims)
	if p.TopCover != "" {
		fmt.Fprintf(w, "Most common cover:   %s (%d)\n", p.TopCover, p.TopCoverCount)
	} else {
		fmt.Fprintln(w, "Most common cover:   -")
	}
	if p.TopVessel != "" {
		fmt.Fprintf(w, "Top vessel:          %s (%s %.2f)\n", p.TopVessel, p.TopVesselCurrency, p.TopVesselCashOut)
	} else {
		fmt.Fprintln(w, "Top vessel:          -")
	}
	if p.LargestClaim != "" {
		fmt.Fprintf(w, "Largest claim:       %s %s (%s %.2f)\n", p.LargestClaim, orDash(p.LargestVessel), p.LargestCurrency, p.LargestCashOut)
	} else {
		fmt.Fprintln(w, "Largest claim:       -")
	}
	return nil
}
