package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"sentry-console/pkg/models"
)

const (
	DefaultBaseURL           = "http://localhost:8000"
	DefaultStatusInterval    = 1500 * time.Millisecond
	DefaultDashboardInterval = 2 * time.Second
	DefaultRotationInterval  = 10
	DefaultDismissedCap      = 4096
	DefaultSTUNServer        = "stun:stun.l.google.com:19302"
)

// CameraConfig is one entry of the `cameras` list in the config file.
type CameraConfig struct {
	ID   string `mapstructure:"id"`
	Name string `mapstructure:"name"`
}

// Settings is the typed view of everything the console reads from viper.
type Settings struct {
	BaseURL           string
	RequestTimeout    time.Duration
	StatusInterval    time.Duration
	DashboardInterval time.Duration
	RotationInterval  int
	ExtendOnThreat    bool
	ICEServers        []string
	DismissedCap      int
	Cameras           []CameraConfig
	LogLevel          string
}

func setDefaults() {
	viper.SetDefault("base_url", DefaultBaseURL)
	viper.SetDefault("request_timeout", 5*time.Second)
	viper.SetDefault("status_interval", DefaultStatusInterval)
	viper.SetDefault("dashboard_interval", DefaultDashboardInterval)
	viper.SetDefault("rotation_interval", DefaultRotationInterval)
	viper.SetDefault("extend_on_threat", true)
	viper.SetDefault("ice_servers", []string{DefaultSTUNServer})
	viper.SetDefault("dismissed_cap", DefaultDismissedCap)
	viper.SetDefault("log_level", "info")
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// Search config in home directory with name ".sentry-console" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".sentry-console")
	}

	// SENTRY_BASE_URL, SENTRY_ROTATION_INTERVAL, ...
	viper.SetEnvPrefix("sentry")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load returns the current settings, clamped to the ranges the console supports.
func Load() Settings {
	s := Settings{
		BaseURL:           strings.TrimRight(viper.GetString("base_url"), "/"),
		RequestTimeout:    viper.GetDuration("request_timeout"),
		StatusInterval:    viper.GetDuration("status_interval"),
		DashboardInterval: viper.GetDuration("dashboard_interval"),
		RotationInterval:  viper.GetInt("rotation_interval"),
		ExtendOnThreat:    viper.GetBool("extend_on_threat"),
		ICEServers:        viper.GetStringSlice("ice_servers"),
		DismissedCap:      viper.GetInt("dismissed_cap"),
		LogLevel:          viper.GetString("log_level"),
	}
	if err := viper.UnmarshalKey("cameras", &s.Cameras); err != nil {
		s.Cameras = nil
	}

	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	// The status poll runs every 1 to 1.5 seconds.
	if s.StatusInterval < time.Second {
		s.StatusInterval = time.Second
	}
	if s.StatusInterval > DefaultStatusInterval {
		s.StatusInterval = DefaultStatusInterval
	}
	if s.DashboardInterval <= 0 {
		s.DashboardInterval = DefaultDashboardInterval
	}
	if s.RotationInterval <= 0 {
		s.RotationInterval = DefaultRotationInterval
	}
	if len(s.ICEServers) == 0 {
		s.ICEServers = []string{DefaultSTUNServer}
	}
	if s.DismissedCap <= 0 {
		s.DismissedCap = DefaultDismissedCap
	}
	if len(s.Cameras) == 0 {
		s.Cameras = []CameraConfig{{ID: "LIVE", Name: "Live Surveillance"}}
	}
	return s
}

// Descriptors turns the configured camera list into idle descriptors.
func (s Settings) Descriptors() []models.CameraDescriptor {
	out := make([]models.CameraDescriptor, 0, len(s.Cameras))
	for _, c := range s.Cameras {
		name := c.Name
		if name == "" {
			name = c.ID
		}
		out = append(out, models.CameraDescriptor{
			ID:       c.ID,
			Name:     name,
			Status:   models.CameraIdle,
			Severity: models.SeverityNormal,
		})
	}
	return out
}

// Save persists a key to the config file, creating it if needed.
func Save(key string, value any) error {
	viper.Set(key, value)

	if err := viper.WriteConfig(); err != nil {
		// If file doesn't exist, create it
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return viper.SafeWriteConfig()
		}
		home, herr := os.UserHomeDir()
		if herr != nil {
			return err
		}
		path := filepath.Join(home, ".sentry-console.yaml")
		return viper.WriteConfigAs(path)
	}
	return nil
}

// Watch re-reads the config file whenever it changes on disk and hands the new settings to onChange.
func Watch(onChange func(Settings, fsnotify.Event)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(Load(), e)
	})
	viper.WatchConfig()
}
