package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
	"github.com/JakeFAU/bulletin-crawler/internal/candidate"
)

// newCandidatesCmd prints the ordered candidate addresses for a date. It needs no
// store, so it replaces the root pre-run hook with a config-only load.
func newCandidatesCmd(opts *rootOptions) *cobra.Command {
	var gen *candidate.Generator
	return &cobra.Command{
		Use:   "candidates [date]",
		Short: "Prints the candidate addresses tried for a date",
		Args:  cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			gen, err = candidate.New(cfg.Source.BaseURL, cfg.Source.Templates)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			day := bulletin.Day(now())
			if len(args) == 1 {
				d, err := bulletin.ParseDate(args[0])
				if err != nil {
					return fmt.Errorf("date: %w", err)
				}
				day = d
			}
			for _, url := range gen.Candidates(day) {
				fmt.Fprintln(cmd.OutOrStdout(), url)
			}
			return nil
		},
	}
}
