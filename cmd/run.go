package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shuttle/app"
	"github.com/kilianp07/shuttle/infra/logger"
)

var (
	runInput  string
	runOutput string
	runSteps  int
	runJSON   bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation over the input sequence",
	RunE:  runSimulation,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "input sequence (csv, yaml or json)")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "departure/arrival export (csv or json)")
	runCmd.Flags().IntVar(&runSteps, "steps", 0, "number of input records to process")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(runCmd)
}

func applyRunFlags(cmd *cobra.Command) error {
	if cmd.Flags().Changed("input") {
		cfg.Input.Path = runInput
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Path = runOutput
	}
	if cmd.Flags().Changed("steps") {
		cfg.Simulation.TotalSteps = runSteps
	}
	return cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	if err := applyRunFlags(cmd); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	progress := app.LogProgress(svc.Bus(), logger.New("progress"))
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
		<-progress
	}()

	_, summary, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	if runJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return printSummary(cmd.OutOrStdout(), summary)
}
