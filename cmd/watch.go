package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"sentry-console/internal/config"
	"sentry-console/internal/console"
	"sentry-console/internal/log"
	"sentry-console/internal/tui"
)

var (
	watchTUI     bool
	watchLogFile string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the console: live state, rotating cameras, stream and alerts",
	Long: `Runs the console until interrupted. Without --tui every state, camera and alert
change is logged as one line. Rotation settings in the config file are reloaded on save.`,
	Run: func(cmd *cobra.Command, args []string) {
		if watchTUI {
			// The terminal belongs to the TUI; logs go to --log-file or nowhere.
			var out io.Writer = io.Discard
			if watchLogFile != "" {
				f, err := os.OpenFile(watchLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				exitOnErr("opening log file", err)
				defer f.Close()
				out = f
			}
			log.Configure(log.Config{Level: resolvedLogLevel(), Output: out, Console: logConsole})
		}

		api, s := getClient()
		c, err := console.New(api, s)
		exitOnErr("starting console", err)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if viper.ConfigFileUsed() != "" {
			config.Watch(func(ns config.Settings, e fsnotify.Event) {
				logger := log.WithComponent("config")
				logger.Info().Str("file", e.Name).Msg("config file changed")
				c.ApplySettings(ns)
			})
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return c.Run(gctx) })

		if watchTUI {
			g.Go(func() error {
				defer stop()
				return tui.Run(gctx, c)
			})
		} else {
			g.Go(func() error { return logChanges(gctx, c) })
		}

		if err := g.Wait(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// logChanges writes one line whenever the operator-visible state moves.
func logChanges(ctx context.Context, c *console.Console) error {
	logger := log.WithComponent("watch")

	var (
		lastState   string
		lastCamera  string
		lastAlerts  = -1
		lastReady   bool
		lastHealthy = true
	)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.Changes():
		}

		v := c.View()
		camera := ""
		if v.Current != nil {
			camera = v.Current.ID
		}

		if string(v.State) != lastState || camera != lastCamera {
			logger.Info().
				Str("state", string(v.State)).
				Str("pending", string(v.Pending)).
				Str("camera", camera).
				Int("remaining", v.Timer.TimeRemaining).
				Int("extended", v.Timer.ExtendedTime).
				Msg("live")
			lastState, lastCamera = string(v.State), camera
		}
		if n := len(v.Dashboard.Alerts); n != lastAlerts {
			ev := logger.Info().Int("alerts", n)
			if n > 0 {
				a := v.Dashboard.Alerts[0]
				ev = ev.Str("latest", a.Message).Str("severity", string(a.Severity)).Str("camera", a.CameraID)
			}
			ev.Msg("alerts")
			lastAlerts = n
		}
		if v.Ready != lastReady {
			logger.Info().Bool("ready", v.Ready).Str("stream", v.Stream.StreamID).Msg("stream")
			lastReady = v.Ready
		}
		if v.Dashboard.Healthy != lastHealthy {
			logger.Warn().Bool("healthy", v.Dashboard.Healthy).Msg("backend")
			lastHealthy = v.Dashboard.Healthy
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchTUI, "tui", false, "Interactive terminal view")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "Write logs to this file while the TUI is open")
}
