package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shuttle/app"
	"github.com/kilianp07/shuttle/core/triplog"
)

var tripQuery triplog.Query

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Query the trip log",
	RunE:  runTrips,
}

func init() {
	tripsCmd.Flags().StringVar(&tripQuery.RunID, "run", "", "run identifier")
	tripsCmd.Flags().StringVar(&tripQuery.VehicleID, "vehicle", "", "vehicle identifier")
	tripsCmd.Flags().StringVar(&tripQuery.Load, "load", "", "full, half or empty")
	rootCmd.AddCommand(tripsCmd)
}

func runTrips(cmd *cobra.Command, args []string) error {
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	trips, err := svc.Trips(context.Background(), tripQuery)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tVEHICLE\tFROM\tTO\tLOAD\tCARGO\tDEPARTURE\tARRIVAL")
	for _, t := range trips {
		arrival := "-"
		if !t.Arrival.IsZero() {
			arrival = t.Arrival.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", t.RunID, t.VehicleID, t.Origin, t.Destination,
			t.Load, t.Cargo, t.Departure.Format(time.RFC3339), arrival)
	}
	return tw.Flush()
}
