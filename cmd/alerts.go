package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// Parent Command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show threat alerts",
	Long: `List the CRITICAL and HIGH events currently reported by the backend.
Dismissing alerts is only possible inside 'watch', where it lasts for the session.`,
}

// List Command
var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active alerts",
	Run: func(cmd *cobra.Command, args []string) {
		alerts := pollDashboard().Alerts

		if jsonOutput {
			printJSON(alerts)
			return
		}

		if len(alerts) == 0 {
			fmt.Println("No active alerts.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tSEVERITY\tMESSAGE\tCAMERA\tTIME")
		fmt.Fprintln(w, "--\t--------\t-------\t------\t----")

		for _, a := range alerts {
			message := a.Message
			if message == "" {
				message = "[No Type]"
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				a.ID,
				severityLabel(a.Severity),
				message,
				a.CameraID,
				a.Timestamp,
			)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.AddCommand(alertsListCmd)
}
