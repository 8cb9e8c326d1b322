package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shuttle/app"
)

var sweepParallel int

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the configured parameter grid",
	RunE:  runSweep,
}

func init() {
	sweepCmd.Flags().StringVarP(&runInput, "input", "i", "", "input sequence (csv, yaml or json)")
	sweepCmd.Flags().IntVarP(&sweepParallel, "parallel", "p", 0, "simulations run at once (0 uses the configuration)")
	sweepCmd.Flags().BoolVar(&runJSON, "json", false, "print the outcomes as JSON")
	rootCmd.AddCommand(sweepCmd)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("input") {
		cfg.Input.Path = runInput
	}
	if sweepParallel > 0 {
		cfg.Sweep.Parallelism = sweepParallel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	outs, err := svc.Sweep(ctx)
	if err != nil {
		return err
	}
	if runJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(outs)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPARAMETERS\tTRIPS\tFULL\tEMPTY\tDELIVERED\tMISSED\tSLACK")
	for _, o := range outs {
		s := o.Summary
		fmt.Fprintf(tw, "%d\t%v\t%d\t%.1f%%\t%.1f%%\t%.1f%%\t%.1f%%\t%.2fh\n",
			o.Point.Index, o.Point.Params, s.Trips, 100*s.Loads.Full, 100*s.Loads.Empty,
			100*s.Status.Delivered, 100*s.Status.Missed, s.Slack.Mean)
	}
	return tw.Flush()
}
