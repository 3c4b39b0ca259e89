package cmd

import (
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [start_date] [end_date]",
		Short: "Runs acquisition for the range followed by extraction",
		Args:  dateRangeArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runAcquireCommand(cmd, args); err != nil {
				return err
			}
			return runExtractCommand(cmd, nil)
		},
	}
}
