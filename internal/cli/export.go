package cli

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/export"
)

var exportOut string

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the claims register as an XLSX workbook",
	Long: `Export writes every claim to a workbook with two sheets:
- Claims: one row per claim with covers, progress and finance
- Actions: one row per planned action

Example:
  marincop export --out claims.xlsx`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			all, err := a.service.List(ctx)
			if err != nil {
				return err
			}
			if err := export.WriteFile(exportOut, all); err != nil {
				return err
			}
			a.logger.Info("register exported", zap.String("path", exportOut), zap.Int("claims", len(all)))
			stderrf("✓ Exported %d claims to %s\n", len(all), exportOut)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "claims.xlsx", "output workbook path")
}
