package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sentry-console/internal/client"
	"sentry-console/internal/config"
)

// Variables to hold flag values
var (
	cfgBaseURL          string
	cfgRotationInterval int
	cfgExtendOnThreat   bool
	cfgStatusInterval   time.Duration
	cfgICEServers       []string
	cfgSkipCheck        bool
)

// configureCmd represents the configure command
var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Save the backend address and console settings",
	Long: `Checks that the backend answers on the given address and saves it, together
with any rotation or polling setting passed, to the config file used by every other command.

Example:
  sentry-console configure --base-url http://10.0.0.5:8000 --rotation-interval 15`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		if !flags.Changed("base-url") && !flags.Changed("rotation-interval") &&
			!flags.Changed("extend-on-threat") && !flags.Changed("status-interval") &&
			!flags.Changed("ice-server") {
			fmt.Println("Error: nothing to configure. Pass --base-url or a setting flag.")
			_ = cmd.Usage()
			return
		}

		if flags.Changed("base-url") {
			// Clean up input host (remove trailing slash if present)
			cfgBaseURL = strings.TrimRight(cfgBaseURL, "/")

			if !cfgSkipCheck {
				fmt.Printf("Checking backend at %s ...\n", cfgBaseURL)
				api := client.New(client.ClientConfig{BaseURL: cfgBaseURL, Timeout: 5 * time.Second})
				status, err := api.GetLiveStatus(context.Background())
				exitOnErr("reaching backend", err)
				fmt.Printf("Backend reachable (live running=%t).\n", status.Running)
			}
			exitOnErr("saving base_url", config.Save("base_url", cfgBaseURL))
		}

		if flags.Changed("rotation-interval") {
			if cfgRotationInterval <= 0 {
				fmt.Println("Error: --rotation-interval must be positive.")
				return
			}
			exitOnErr("saving rotation_interval", config.Save("rotation_interval", cfgRotationInterval))
		}
		if flags.Changed("extend-on-threat") {
			exitOnErr("saving extend_on_threat", config.Save("extend_on_threat", cfgExtendOnThreat))
		}
		if flags.Changed("status-interval") {
			exitOnErr("saving status_interval", config.Save("status_interval", cfgStatusInterval.String()))
		}
		if flags.Changed("ice-server") {
			exitOnErr("saving ice_servers", config.Save("ice_servers", cfgICEServers))
		}

		fmt.Println("Configuration saved.")
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)

	configureCmd.Flags().StringVar(&cfgBaseURL, "base-url", config.DefaultBaseURL, "Backend base URL")
	configureCmd.Flags().IntVar(&cfgRotationInterval, "rotation-interval", config.DefaultRotationInterval, "Seconds each camera stays on screen")
	configureCmd.Flags().BoolVar(&cfgExtendOnThreat, "extend-on-threat", true, "Hold rotation on cameras with a CRITICAL or HIGH event")
	configureCmd.Flags().DurationVar(&cfgStatusInterval, "status-interval", config.DefaultStatusInterval, "Live status poll interval (1s to 1.5s)")
	configureCmd.Flags().StringSliceVar(&cfgICEServers, "ice-server", []string{config.DefaultSTUNServer}, "ICE server URL (repeatable)")
	configureCmd.Flags().BoolVar(&cfgSkipCheck, "skip-check", false, "Save --base-url without contacting the backend")
}
