package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shuttle/core/fleet"
	"github.com/kilianp07/shuttle/core/shift"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet related commands",
}

var fleetLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the initial fleet with shift patterns and meal hours",
	RunE:  runFleetLs,
}

func init() {
	fleetCmd.AddCommand(fleetLsCmd)
	rootCmd.AddCommand(fleetCmd)
}

func runFleetLs(cmd *cobra.Command, args []string) error {
	sim := cfg.Simulation
	reg := fleet.NewRegistry(fleet.Spec{AtA: sim.InitialFleetAtNodeA, AtB: sim.InitialFleetAtNodeB},
		shift.NewCalendar(sim.MealPolicy, sim.Seed))
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tHOME\tSHIFT\tMEAL\tHOURS")
	for _, v := range reg.Vehicles() {
		meal := "drawn"
		if v.MealHour >= 0 {
			meal = fmt.Sprintf("%02d:00", v.MealHour)
		}
		hours := 0
		for _, w := range v.WorkingHours {
			if w {
				hours++
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", v.ID, v.Home, v.Shift, meal, hours)
	}
	return tw.Flush()
}
