package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/marincop/internal/worker"
)

var (
	concurrency  int
	batchBy      string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Create claims from every notification in a directory",
	Long: `Batch drafts claims from a directory of notifications concurrently:
- Read every .txt, .eml and .html file in the directory
- Draft claims in parallel with a configurable worker count
- Store the drafts one by one in file-name order so claim numbers follow the files

Example:
  marincop batch ./inbox --by j.doe
  marincop batch ./inbox --by j.doe --concurrency 8 --timeout 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&batchBy, "by", "", "user creating the claims")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]

	return withApp(cmd, func(ctx context.Context, a *app) error {
		ctx, cancel := context.WithTimeout(ctx, batchTimeout)
		defer cancel()

		workers := concurrency
		if workers <= 0 {
			workers = a.cfg.Concurrency.Workers
		}
		if workers <= 0 {
			workers = runtime.NumCPU()
		}

		oracle := "disabled"
		if a.pipeline.OracleEnabled() {
			oracle = a.cfg.LLM.Provider
		}

		stderrf("\n")
		stderrf("═══════════════════════════════════════════════════════════\n")
		stderrf("  Marincop Batch Intake\n")
		stderrf("═══════════════════════════════════════════════════════════\n")
		stderrf("\n")
		stderrf("  Input dir:    %s\n", dir)
		stderrf("  Workers:      %d\n", workers)
		stderrf("  Store:        %s\n", a.cfg.Store.Driver)
		stderrf("  Oracle:       %s\n", oracle)
		stderrf("  Timeout:      %v\n", batchTimeout)
		stderrf("\n")

		processor := worker.NewBatchProcessor(a.service, workers)
		results, err := processor.ProcessDir(ctx, batchBy, dir)
		if err != nil {
			return fmt.Errorf("process dir: %w", err)
		}

		successCount := 0
		failureCount := 0

		for _, result := range results {
			name := filepath.Base(result.Path)
			if result.Error != nil {
				failureCount++
				stderrf("✗ %s: %v\n", name, result.Error)
				continue
			}

			claim, err := a.service.Commit(ctx, result.Claim)
			if err != nil {
				failureCount++
				stderrf("✗ %s: %v\n", name, err)
				continue
			}

			successCount++
			a.logger.Debug("batch claim stored", zap.String("file", name), zap.String("claim_number", claim.ClaimNumber))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", claim.ClaimNumber, name)
		}

		stderrf("\n")
		stderrf("═══════════════════════════════════════════════════════════\n")
		stderrf("  Batch Complete\n")
		stderrf("═══════════════════════════════════════════════════════════\n")
		stderrf("\n")
		stderrf("  Total:     %d files\n", len(results))
		stderrf("  Created:   %d\n", successCount)
		stderrf("  Failures:  %d\n", failureCount)
		stderrf("\n")

		if failureCount > 0 && successCount == 0 {
			return fmt.Errorf("no claims created: %d failures", failureCount)
		}
		return nil
	})
}
