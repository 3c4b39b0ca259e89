package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Derives cleaned text for every stored page that has none yet",
		Args:  cobra.NoArgs,
		RunE:  runExtractCommand,
	}
}

func runExtractCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	processor, err := appInstance.Processor()
	if err != nil {
		return fmt.Errorf("init processor: %w", err)
	}
	summary, err := processor.Run(cmd.Context())
	printExtractSummary(cmd, summary)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	return nil
}

func printExtractSummary(cmd *cobra.Command, s bulletin.ExtractSummary) {
	fmt.Fprintf(cmd.OutOrStdout(), "documents=%d extracted=%d empty=%d skipped=%d failed=%d\n",
		s.Documents, s.Extracted, s.Empty, s.Skipped, s.Failed)
}
