package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const kindSubsidy = "subsidy"

var subsidyCmd = &cobra.Command{
	Use:   "subsidy <input>...",
	Short: "Extract regional quota rows from subsidy tables",
	Long: `Extract one record per table row carrying a regional quota.

Inputs may hold a full page, a table or bare <tr> rows.

Example:
  gleaner subsidy electriccar.txt -o subsidy.xlsx`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubsidy,
}

func init() {
	rootCmd.AddCommand(subsidyCmd)
}

func runSubsidy(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, cleanup, err := openPipeline(pipelineOptions{})
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := g.Subsidy(ctx, args)
	if err != nil {
		return err
	}
	if err := summarize(kindSubsidy, report); err != nil {
		return err
	}

	path, format := outputFlags(cmd)
	return writeOutput(path, format, kindSubsidy, report.Records)
}
