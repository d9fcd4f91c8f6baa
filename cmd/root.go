package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sentry-console/internal/client"
	"sentry-console/internal/config"
	"sentry-console/internal/log"
)

var cfgFile string
var jsonOutput bool
var logLevel string
var logConsole bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sentry-console",
	Short: "Operator console for the Sentry video-surveillance backend",
	Long: `Control the live feed, watch rotating cameras and alerts, and manage
the face watch-list and offline analysis jobs of a Sentry backend.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sentry-console.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Human-readable log output instead of JSON")
}

func initConfig() {
	if err := config.InitConfig(cfgFile); err != nil {
		fmt.Printf("Error reading config: %v\n", err)
		os.Exit(1)
	}

	log.Configure(log.Config{Level: resolvedLogLevel(), Console: logConsole})
}

// resolvedLogLevel prefers --log-level over the config file.
func resolvedLogLevel() string {
	if logLevel != "" {
		return logLevel
	}
	return viper.GetString("log_level")
}

// getClient builds an API client from the stored configuration.
func getClient() (*client.SentryClient, config.Settings) {
	s := config.Load()
	api := client.New(client.ClientConfig{
		BaseURL: s.BaseURL,
		Timeout: s.RequestTimeout,
	})
	return api, s
}

// requestContext bounds a one-shot command by the configured request timeout.
func requestContext(s config.Settings) (context.Context, context.CancelFunc) {
	if s.RequestTimeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), s.RequestTimeout)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Printf("Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

func exitOnErr(what string, err error) {
	if err == nil {
		return
	}
	fmt.Printf("Error %s: %v\n", what, err)
	os.Exit(1)
}
