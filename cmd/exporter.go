package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kardianos/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sentry-console/internal/client"
	"sentry-console/internal/config"
	"sentry-console/internal/console"
	"sentry-console/internal/log"
	"sentry-console/internal/metrics"
)

// Variables to hold flag values
var (
	expPort       string
	serviceAction string // "install", "uninstall", "start", "stop"
)

// --- SERVICE WRAPPER ---

// program implements the kardianos/service interface
type program struct {
	settings config.Settings
	logger   zerolog.Logger

	server  *http.Server
	cancel  context.CancelFunc
	stopped chan struct{}
}

func (p *program) Start(s service.Service) error {
	// Start should not block. Do the actual work async.
	c, err := console.New(client.New(client.ClientConfig{
		BaseURL: p.settings.BaseURL,
		Timeout: p.settings.RequestTimeout,
	}), p.settings)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		metrics.NewCollector(c),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog: promLogger{p.logger},
	}))

	addr := fmt.Sprintf(":%s", expPort)
	p.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.stopped = make(chan struct{})

	go func() {
		defer close(p.stopped)
		if err := c.Run(ctx); err != nil {
			p.logger.Error().Err(err).Msg("console stopped")
		}
	}()
	go p.serve()
	return nil
}

func (p *program) serve() {
	p.logger.Info().Str("addr", p.server.Addr).Msg("sentry exporter listening")

	// Blocking call to listen
	if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		p.logger.Error().Err(err).Msg("http server error")
	}
}

func (p *program) Stop(s service.Service) error {
	p.logger.Info().Msg("stopping service")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if p.server != nil {
		if err := p.server.Shutdown(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("server forced to shutdown")
		}
	}
	if p.cancel != nil {
		p.cancel()
		select {
		case <-p.stopped:
		case <-ctx.Done():
			p.logger.Warn().Msg("console did not stop in time")
		}
	}
	return nil
}

// promLogger routes promhttp errors into zerolog.
type promLogger struct {
	logger zerolog.Logger
}

func (l promLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}

// --- COMMAND ---

var exporterCmd = &cobra.Command{
	Use:   "exporter",
	Short: "Start Prometheus Exporter service",
	Long: `Runs the console headless and exposes live state, rotation, stream and alert
metrics on /metrics. Can be installed as a system service.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.WithComponent("exporter")
		settings := config.Load()

		svcConfig := &service.Config{
			Name:        "sentry-exporter",
			DisplayName: "Sentry Prometheus Exporter",
			Description: "Exposes Sentry console metrics to Prometheus",
			// Arguments passed to the binary when run as a service
			Arguments: []string{"exporter", "--port", expPort},
		}
		if cfgFile != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--config", cfgFile)
		}
		if lvl := resolvedLogLevel(); lvl != "" {
			svcConfig.Arguments = append(svcConfig.Arguments, "--log-level", lvl)
		}

		prg := &program{settings: settings, logger: logger}

		s, err := service.New(prg, svcConfig)
		exitOnErr("creating service", err)

		// Handle Service Control Actions (Install, Start, Stop, Uninstall)
		if serviceAction != "" {
			if serviceAction == "install" && settings.BaseURL == "" {
				exitOnErr("installing service", errors.New("no base URL configured; run 'sentry-console configure --base-url ...' first"))
			}

			if err := service.Control(s, serviceAction); err != nil {
				exitOnErr(fmt.Sprintf("running service action %q", serviceAction), err)
			}
			fmt.Printf("Service action '%s' completed successfully.\n", serviceAction)
			return
		}

		// Run the Service (Blocking)
		// This happens when the Service Manager starts the binary, OR when run interactively without flags
		svcLogger, err := s.Logger(nil)
		exitOnErr("opening service logger", err)
		if err = s.Run(); err != nil {
			_ = svcLogger.Error(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(exporterCmd)
	exporterCmd.Flags().StringVar(&expPort, "port", "9100", "Port to listen on")
	exporterCmd.Flags().StringVar(&serviceAction, "service", "", "Service action: install, uninstall, start, stop")
}
