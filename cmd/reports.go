package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Browse generated incident reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incident reports",
	Run: func(cmd *cobra.Command, args []string) {
		api, s := getClient()
		ctx, cancel := requestContext(s)
		defer cancel()

		reports, err := api.ListReports(ctx)
		exitOnErr("fetching reports", err)

		if jsonOutput {
			printJSON(reports)
			return
		}

		if len(reports) == 0 {
			fmt.Println("No reports found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tDATE\tMODE\tEVENTS\tCRITICAL\tDURATION")
		fmt.Fprintln(w, "--\t----\t----\t----\t------\t--------\t--------")
		for _, r := range reports {
			fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\t%d\t%d\t%s\n",
				r.ID, r.Name, r.Date, r.Time, r.Mode, r.EventCount, r.CriticalCount, r.Duration)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
}
