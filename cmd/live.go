package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sentry-console/internal/live"
	"sentry-console/pkg/models"
)

var liveWait time.Duration

// stateLabel colors a camera state for terminal output.
func stateLabel(state models.CameraState) string {
	switch state {
	case models.StateRunning:
		return color.New(color.FgGreen, color.Bold).Sprint("RUNNING")
	case models.StatePaused:
		return color.New(color.FgYellow, color.Bold).Sprint("PAUSED")
	default:
		return color.New(color.FgHiBlack, color.Bold).Sprint("STOPPED")
	}
}

func severityLabel(sev models.Severity) string {
	switch sev {
	case models.SeverityCritical:
		return color.New(color.FgRed, color.Bold).Sprint(string(sev))
	case models.SeverityHigh:
		return color.New(color.FgYellow).Sprint(string(sev))
	default:
		return string(sev)
	}
}

// Parent Command
var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Control the live analysis pipeline",
	Long:  `Show the live pipeline status or send play, pause, stop and restart commands.`,
}

// Status Command
var liveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the live pipeline status",
	Run: func(cmd *cobra.Command, args []string) {
		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		status, err := api.GetLiveStatus(ctx)
		exitOnErr("fetching live status", err)
		state := live.Resolve(live.Snapshot{Server: status})

		if jsonOutput {
			printJSON(struct {
				State  models.CameraState `json:"state"`
				Status *models.LiveStatus `json:"status"`
			}{state, status})
			return
		}

		fps := "-"
		if status.FPS != nil {
			fps = fmt.Sprintf("%.1f", *status.FPS)
		}
		camera := status.CameraID
		if camera == "" {
			camera = "-"
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "STATE\tRUNNING\tPAUSED\tFPS\tCAMERA")
		fmt.Fprintln(w, "-----\t-------\t------\t---\t------")
		fmt.Fprintf(w, "%s\t%t\t%t\t%s\t%s\n", stateLabel(state), status.Running, status.Paused, fps, camera)
		w.Flush()
	},
}

func newLiveCommandCmd(command models.Command, short string) *cobra.Command {
	c := &cobra.Command{
		Use:   string(command),
		Short: short,
		Run: func(cmd *cobra.Command, args []string) {
			api, s := getClient()
			rec := live.NewReconciler(api, s.StatusInterval)
			dispatcher := live.NewDispatcher(api, rec)

			ctx, cancel := requestContext(s)
			defer cancel()

			fmt.Printf("Sending %s ...\n", command)
			if err := dispatcher.Dispatch(ctx, command); err != nil {
				fmt.Printf("Error sending %s: %v\n", command, err)
				os.Exit(1)
			}

			if liveWait <= 0 {
				fmt.Printf("Command accepted. Expected state: %s\n", stateLabel(rec.State()))
				return
			}

			state, err := waitForState(rec, command.Implied(), liveWait)
			if err != nil {
				fmt.Printf("Backend did not confirm within %s: state is %s (%v)\n", liveWait, stateLabel(state), err)
				os.Exit(1)
			}
			fmt.Printf("Confirmed: %s\n", stateLabel(state))
		},
	}
	if command == models.CommandPlay {
		c.Aliases = []string{"start"}
	}
	return c
}

// waitForState polls until the backend itself reports want. The first poll only consumes
// the pending command, so confirmation needs the slot to be empty.
func waitForState(rec *live.Reconciler, want models.CameraState, timeout time.Duration) (models.CameraState, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		if err := rec.Poll(ctx); err != nil {
			lastErr = err
		} else if rec.Pending() == "" && rec.State() == want {
			if status := rec.LastStatus(); status != nil && live.Resolve(live.Snapshot{Server: status}) == want {
				return want, nil
			}
		}

		select {
		case <-ctx.Done():
			if lastErr == nil {
				lastErr = ctx.Err()
			}
			return rec.State(), lastErr
		case <-ticker.C:
		}
	}
}

func init() {
	rootCmd.AddCommand(liveCmd)
	liveCmd.AddCommand(liveStatusCmd)

	for _, c := range []*cobra.Command{
		newLiveCommandCmd(models.CommandPlay, "Start the live pipeline"),
		newLiveCommandCmd(models.CommandPause, "Pause the live pipeline"),
		newLiveCommandCmd(models.CommandStop, "Stop the live pipeline"),
		newLiveCommandCmd(models.CommandRestart, "Restart the live pipeline"),
	} {
		c.Flags().DurationVar(&liveWait, "wait", 0, "Wait up to this long for the backend to confirm the new state")
		liveCmd.AddCommand(c)
	}
}
