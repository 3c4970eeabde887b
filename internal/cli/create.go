package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/marincop/internal/worker"
)

var (
	createFile string
	createdBy  string
	createDry  bool
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a claim from a first notification",
	Long: `Create reads a first notification of a marine incident and stores a
new claim:
- Extract vessel, IMO, event date, location, counterparty and incident keywords
- Suggest covers (P&I, H&M, Charterers' Liability, Cargo, FD&D)
- Plan the first actions with due dates
- Allocate the next claim number for the year

The notification is read from --file (.txt, .eml, .html) or stdin.

Example:
  marincop create --file notice.eml --by j.doe
  echo "MV Nova Star collided with a tug near Singapore" | marincop create --by j.doe
  marincop create --file notice.txt --dry-run`,
	Args: cobra.NoArgs,
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&createFile, "file", "f", "", "notification file (default: stdin)")
	createCmd.Flags().StringVar(&createdBy, "by", "", "user creating the claim")
	createCmd.Flags().BoolVar(&createDry, "dry-run", false, "draft the claim without storing it")
}

func runCreate(cmd *cobra.Command, args []string) error {
	text, err := readNotification(createFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if createDry {
			draft, err := a.service.Draft(ctx, createdBy, text)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), draft)
		}

		claim, err := a.service.Create(ctx, createdBy, text)
		if err != nil {
			return err
		}

		stderrf("✓ Created %s (%s)\n", claim.ClaimNumber, strings.Join(claim.Classification.CoverTypes(), ", "))
		return printJSON(cmd.OutOrStdout(), claim)
	})
}

func readNotification(path string, stdin io.Reader) (string, error) {
	if path != "" {
		return worker.ReadNotification(path)
	}
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(b), nil
}

func printJSON(w io.Writer, v any) error {
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
