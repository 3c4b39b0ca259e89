package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/bulletin-crawler/internal/bulletin"
)

// now is replaced in tests.
var now = func() time.Time { return time.Now().UTC() }

// parseRange resolves [start_date] [end_date]; omitted dates default to today (UTC).
func parseRange(args []string) (time.Time, time.Time, error) {
	today := bulletin.Day(now())
	start, end := today, today
	if len(args) > 0 {
		d, err := bulletin.ParseDate(args[0])
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", err)
		}
		start = d
	}
	if len(args) > 1 {
		d, err := bulletin.ParseDate(args[1])
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", err)
		}
		end = d
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s > %s",
			bulletin.ErrInvalidRange, bulletin.FormatDate(start), bulletin.FormatDate(end))
	}
	return start, end, nil
}

// dateRangeArgs validates positional dates before any service is built.
func dateRangeArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(2)(cmd, args); err != nil {
		return err
	}
	_, _, err := parseRange(args)
	return err
}
