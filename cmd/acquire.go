package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

func newAcquireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "acquire [start_date] [end_date]",
		Short: "Fetches and stores the bulletin page for each date in the range",
		Long: `Walks the inclusive date range in ascending order. For every date the
candidate addresses are tried in order and the first page that answers is stored,
replacing any earlier page for that date. Dates default to today (UTC).`,
		Args: dateRangeArgs,
		RunE: runAcquireCommand,
	}
}

func runAcquireCommand(cmd *cobra.Command, args []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	start, end, err := parseRange(args)
	if err != nil {
		return err
	}
	acquirer, err := appInstance.Acquirer()
	if err != nil {
		return fmt.Errorf("init acquirer: %w", err)
	}
	summary, err := acquirer.Run(cmd.Context(), start, end)
	printAcquireSummary(cmd, summary)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	return nil
}

func printAcquireSummary(cmd *cobra.Command, s bulletin.AcquireSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "dates=%d saved=%d failed=%d store_errors=%d\n", s.Dates, s.Saved, s.Failed, s.StoreErrors)
	if len(s.FailedDates) > 0 {
		fmt.Fprintf(out, "failed dates: %s\n", strings.Join(s.FailedDates, ", "))
	}
}
