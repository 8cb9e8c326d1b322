package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kilianp07/shuttle/core/report"
)

func printSummary(w io.Writer, s report.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", s.RunID)
	fmt.Fprintf(tw, "steps\t%d\n", s.Steps)
	fmt.Fprintf(tw, "trips\t%d (full %.1f%%, half %.1f%%, empty %.1f%%)\n",
		s.Trips, 100*s.Loads.Full, 100*s.Loads.Half, 100*s.Loads.Empty)
	fmt.Fprintf(tw, "shipments\tdelivered %.1f%%, in transit %.1f%%, pending %.1f%%, missed %.1f%%\n",
		100*s.Status.Delivered, 100*s.Status.InTransit, 100*s.Status.Pending, 100*s.Status.Missed)
	fmt.Fprintf(tw, "slack\tmean %.2fh, median %.2fh, min %.2fh over %d deliveries\n",
		s.Slack.Mean, s.Slack.Median, s.Slack.Min, s.Slack.Count)
	fmt.Fprintf(tw, "backlog\tto A mean %.1f max %.0f, to B mean %.1f max %.0f\n",
		s.BacklogToA.Mean, s.BacklogToA.Max, s.BacklogToB.Mean, s.BacklogToB.Max)
	fmt.Fprintf(tw, "demand\tto A mean %.1f max %.0f, to B mean %.1f max %.0f\n",
		s.DemandToA.Mean, s.DemandToA.Max, s.DemandToB.Mean, s.DemandToB.Max)
	fmt.Fprintf(tw, "work\t%.1fh driving, %.1fh mount, %.1fh offload, %.2fh per vehicle\n",
		s.Work.Driving, s.Work.Mount, s.Work.Offload, s.Work.MeanPerVehicle)
	return tw.Flush()
}
