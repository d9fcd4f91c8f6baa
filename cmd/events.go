package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sentry-console/internal/dashboard"
)

var eventLimit int

// pollDashboard runs one aggregation cycle against the configured backend.
func pollDashboard() dashboard.Snapshot {
	api, s := getClient()
	agg, err := dashboard.New(api, dashboard.Options{
		Cameras:      s.Descriptors(),
		DismissedCap: s.DismissedCap,
	})
	exitOnErr("creating dashboard", err)

	ctx, cancel := requestContext(s)
	defer cancel()
	exitOnErr("polling dashboard", agg.Poll(ctx))

	return agg.Snapshot()
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the detection event timeline",
	Long:  `List the recent detection events reported by the backend, newest last.`,
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent events",
	Run: func(cmd *cobra.Command, args []string) {
		timeline := pollDashboard().Timeline
		if eventLimit > 0 && len(timeline) > eventLimit {
			timeline = timeline[len(timeline)-eventLimit:]
		}

		if jsonOutput {
			printJSON(timeline)
			return
		}

		if len(timeline) == 0 {
			fmt.Println("No events found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTIME\tSEVERITY\tTYPE\tCAMERA")
		fmt.Fprintln(w, "--\t----\t--------\t----\t------")
		for _, e := range timeline {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				e.ID,
				e.Timestamp,
				severityLabel(e.Severity),
				e.Type,
				e.CameraID,
			)
		}
		w.Flush()
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the dashboard summary counters",
	Run: func(cmd *cobra.Command, args []string) {
		summary := pollDashboard().Summary

		if jsonOutput {
			printJSON(summary)
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "COUNTER\tVALUE")
		fmt.Fprintln(w, "-------\t-----")
		fmt.Fprintf(w, "Active cameras\t%d / %d\n", summary.ActiveCameras, summary.TotalCameras)
		fmt.Fprintf(w, "Active threats\t%d\n", summary.ActiveThreats)
		fmt.Fprintf(w, "People tracked\t%d\n", summary.PeopleTracked)
		fmt.Fprintf(w, "Events today\t%d\n", summary.EventsToday)
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(summaryCmd)
	eventsCmd.AddCommand(eventsListCmd)

	eventsListCmd.Flags().IntVar(&eventLimit, "limit", 50, "Show at most this many of the newest events (0 for all)")
}
