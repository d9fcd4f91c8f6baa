package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sentry-console/internal/live"
)

// Parent Command
var camerasCmd = &cobra.Command{
	Use:   "cameras",
	Short: "Inspect configured cameras",
	Long:  `List the configured cameras with their current overlay data and rotation membership.`,
}

// List Command
var camerasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cameras",
	Run: func(cmd *cobra.Command, args []string) {
		cameras := pollDashboard().Cameras

		if jsonOutput {
			printJSON(cameras)
			return
		}

		rotating := map[string]bool{}
		for _, c := range live.ActiveCameras(cameras) {
			rotating[c.ID] = true
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tEVENT\tSEVERITY\tPEOPLE\tROTATION")
		fmt.Fprintln(w, "--\t----\t------\t-----\t--------\t------\t--------")

		for _, cam := range cameras {
			rotation := "no"
			if rotating[cam.ID] {
				rotation = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				cam.ID,
				cam.Name,
				cam.Status,
				cam.CurrentEvent,
				severityLabel(cam.Severity),
				cam.PersonCount,
				rotation,
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(camerasCmd)
	camerasCmd.AddCommand(camerasListCmd)
}
