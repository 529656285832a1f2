package cli

import (
	"github.com/spf13/cobra"

	"github.com/JPRanx/omni-v4-sub001/internal/timeutil"
)

func runCommand() *cobra.Command {
	var f batchFlags
	var flagRestaurant, flagDate string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline for one restaurant and business date",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := timeutil.ParseDate(flagDate)
			if err != nil {
				return setupError("invalid --date: %v", err)
			}
			return executeBatch(cmd.Context(), f, []string{flagRestaurant}, day, day)
		},
	}

	cmd.Flags().StringVar(&flagRestaurant, "restaurant", "", "restaurant code")
	cmd.Flags().StringVar(&flagDate, "date", "", "business date (YYYY-MM-DD)")
	addBatchFlags(cmd, &f)
	_ = cmd.MarkFlagRequired("restaurant")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runRangeCommand() *cobra.Command {
	var f batchFlags
	var flagRestaurants []string
	var flagFrom, flagTo string

	cmd := &cobra.Command{
		Use:   "run-range",
		Short: "Run the pipeline for several restaurants over a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := timeutil.ParseDate(flagFrom)
			if err != nil {
				return setupError("invalid --from: %v", err)
			}
			to, err := timeutil.ParseDate(flagTo)
			if err != nil {
				return setupError("invalid --to: %v", err)
			}
			return executeBatch(cmd.Context(), f, flagRestaurants, from, to)
		},
	}

	cmd.Flags().StringSliceVar(&flagRestaurants, "restaurants", nil, "comma-separated restaurant codes")
	cmd.Flags().StringVar(&flagFrom, "from", "", "first business date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flagTo, "to", "", "last business date (YYYY-MM-DD)")
	addBatchFlags(cmd, &f)
	_ = cmd.MarkFlagRequired("restaurants")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
