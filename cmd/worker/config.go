package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/ossf/passive-analysis/internal/responseanalysis/likelihood"
)

// envPrefix is prepended to every setting to get its environment variable,
// so results_bucket is read from PASSIVE_RESULTS_BUCKET.
const envPrefix = "PASSIVE"

type config struct {
	Subscription      string `mapstructure:"subscription"`
	ResultsBucket     string `mapstructure:"results_bucket"`
	CapturesBucket    string `mapstructure:"captures_bucket"`
	NotificationTopic string `mapstructure:"notification_topic"`

	Sensitivity   string `mapstructure:"sensitivity"`
	Features      string `mapstructure:"features"`
	GeoIPDatabase string `mapstructure:"geoip_database"`
	DedupSize     int    `mapstructure:"dedup_size"`

	MetricsAddr    string `mapstructure:"metrics_addr"`
	EnableProfiler bool   `mapstructure:"enable_profiler"`
	LoggerEnv      string `mapstructure:"logger_env"`

	sensitivity likelihood.Sensitivity
}

func (c *config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("subscription", c.Subscription),
		slog.String("results_bucket", c.ResultsBucket),
		slog.String("captures_bucket", c.CapturesBucket),
		slog.String("topic_notification", c.NotificationTopic),
		slog.String("sensitivity", c.sensitivity.String()),
		slog.String("features", c.Features),
		slog.String("geoip_database", c.GeoIPDatabase),
		slog.Int("dedup_size", c.DedupSize),
		slog.String("metrics_addr", c.MetricsAddr),
		slog.Bool("enable_profiler", c.EnableProfiler),
	)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("subscription", "")
	v.SetDefault("results_bucket", "")
	v.SetDefault("captures_bucket", "")
	v.SetDefault("notification_topic", "")
	v.SetDefault("sensitivity", likelihood.Default.String())
	v.SetDefault("features", "")
	v.SetDefault("geoip_database", "")
	v.SetDefault("dedup_size", 4096)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("enable_profiler", false)
	v.SetDefault("logger_env", "dev")
}

// loadConfig reads the worker configuration from the environment and, if
// configFile is not empty, from that file. Environment variables take
// precedence over the file.
func loadConfig(configFile string) (*config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	c := &config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	s, err := likelihood.ParseSensitivity(c.Sensitivity)
	if err != nil {
		return nil, err
	}
	c.sensitivity = s

	if c.Subscription == "" {
		return nil, fmt.Errorf("%s_SUBSCRIPTION must be set", envPrefix)
	}
	if c.DedupSize < 0 {
		return nil, fmt.Errorf("dedup_size must not be negative, got %d", c.DedupSize)
	}
	return c, nil
}
