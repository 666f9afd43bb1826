package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jawat-my/saferoute/constants"
)

type Config struct {
	Upstream UpstreamConfig        `json:"upstream"`
	Storage  StorageConfig         `json:"storage"`
	Blob     BlobConfig            `json:"blob"`
	Event    EventConfig           `json:"event"`
	Secrets  SecretsConfig         `json:"secrets"`
	Shelters []ShelterSourceConfig `json:"shelters,omitempty"`
	HTTP     HTTPConfig            `json:"http"`
	Probe    ProbeConfig           `json:"probe"`
	Tracing  *TracingConfig        `json:"tracing,omitempty"`
	Log      LogConfig             `json:"log"`
}

// UpstreamConfig carries everything needed to reach the Jawat and JamAI
// APIs. PATs may be left empty here and resolved through the secrets
// provider instead.
type UpstreamConfig struct {
	JawatAPIURL      string `json:"jawat_api_url"`
	JawatPAT         string `json:"jawat_pat,omitempty"`
	JamaiAPIURL      string `json:"jamai_api_url"`
	JamaiTableAPIURL string `json:"jamai_table_api_url,omitempty"`
	JamaiProjectID   string `json:"jamai_project_id,omitempty"`
	JamaiPAT         string `json:"jamai_pat,omitempty"`
	TimeoutSeconds   int    `json:"timeout_seconds,omitempty"`
}

// HTTPTimeout converts the configured timeout into a duration.
func (u UpstreamConfig) HTTPTimeout() time.Duration {
	if u.TimeoutSeconds <= 0 {
		return DefaultUpstreamTimeoutSeconds * time.Second
	}
	return time.Duration(u.TimeoutSeconds) * time.Second
}

type StorageConfig struct {
	Driver string `json:"driver"`
	DSN    string `json:"dsn"`
}

type BlobConfig struct {
	Driver    string `json:"driver"`
	Directory string `json:"directory,omitempty"`
	Bucket    string `json:"bucket,omitempty"`
	Region    string `json:"region,omitempty"`
}

type EventConfig struct {
	Driver string `json:"driver"`
	URL    string `json:"url,omitempty"`
}

type SecretsConfig struct {
	Driver string `json:"driver"`
	Region string `json:"region,omitempty"`
	Prefix string `json:"prefix,omitempty"`
}

// ShelterSourceConfig names one shelter-directory source. Type is "local"
// with a Path or "remote" with a URL.
type ShelterSourceConfig struct {
	Type string `json:"type"`
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

type HTTPConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ProbeConfig schedules the periodic upstream diagnostics run. An empty
// Cron disables it.
type ProbeConfig struct {
	Cron string `json:"cron,omitempty"`
}

// TracingConfig selects the trace exporter. Exporter is "stdout" (default)
// or "otlp"; Endpoint overrides the OTLP collector URL.
type TracingConfig struct {
	ServiceName string `json:"serviceName,omitempty"`
	Exporter    string `json:"exporter,omitempty"`
	Endpoint    string `json:"endpoint,omitempty"`
}

type LogConfig struct {
	Level string `json:"level"`
}

// LoadConfig reads a JSON config file. A missing file is not an error:
// deployments that configure purely through the environment get an empty
// Config to overlay.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	defer f.Close()
	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromEnv overlays process environment variables onto cfg. Set variables
// win over file values; unset ones leave the file values alone.
func FromEnv(cfg *Config) error {
	if v := os.Getenv(constants.EnvJawatPAT); v != "" {
		cfg.Upstream.JawatPAT = v
	}
	if v := os.Getenv(constants.EnvJawatAPIURL); v != "" {
		cfg.Upstream.JawatAPIURL = v
	}
	if v := os.Getenv(constants.EnvJamaiPAT); v != "" {
		cfg.Upstream.JamaiPAT = v
	}
	if v := os.Getenv(constants.EnvJamaiProjectID); v != "" {
		cfg.Upstream.JamaiProjectID = v
	}
	if v := os.Getenv(constants.EnvJamaiAPIURL); v != "" {
		cfg.Upstream.JamaiAPIURL = v
	}
	if v := os.Getenv(constants.EnvJamaiTableAPIURL); v != "" {
		cfg.Upstream.JamaiTableAPIURL = v
	}
	if v := os.Getenv(constants.EnvDatabaseURL); v != "" {
		cfg.Storage.Driver = constants.StorageDriverPostgres
		cfg.Storage.DSN = v
	}
	if v := os.Getenv(constants.EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", constants.EnvPort, v, err)
		}
		cfg.HTTP.Port = port
	}
	if v := os.Getenv(constants.EnvShelterDirectory); v != "" {
		// Prepended so the env-supplied local file wins over file-configured
		// sources.
		cfg.Shelters = append([]ShelterSourceConfig{{Type: constants.ShelterSourceLocal, Path: v}}, cfg.Shelters...)
	}
	if v := os.Getenv(constants.EnvTraceExporter); v != "" {
		if cfg.Tracing == nil {
			cfg.Tracing = &TracingConfig{}
		}
		cfg.Tracing.Exporter = v
	}
	return nil
}

// Validate fills defaults and rejects contradictory settings. After a
// successful Validate the Config is treated as read-only.
func Validate(cfg *Config) error {
	if cfg.Upstream.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream timeout must not be negative, got %d", cfg.Upstream.TimeoutSeconds)
	}
	if cfg.Upstream.TimeoutSeconds == 0 {
		cfg.Upstream.TimeoutSeconds = DefaultUpstreamTimeoutSeconds
	}

	switch cfg.Storage.Driver {
	case "":
		cfg.Storage.Driver = constants.StorageDriverSQLite
		cfg.Storage.DSN = DefaultSQLiteDSN
	case constants.StorageDriverSQLite:
		if cfg.Storage.DSN == "" {
			cfg.Storage.DSN = DefaultSQLiteDSN
		}
	case constants.StorageDriverPostgres:
		if cfg.Storage.DSN == "" {
			return fmt.Errorf("storage driver %q requires a dsn", cfg.Storage.Driver)
		}
	}

	switch cfg.Blob.Driver {
	case "":
		cfg.Blob.Driver = "filesystem"
		if cfg.Blob.Directory == "" {
			cfg.Blob.Directory = DefaultBlobDir
		}
	case "filesystem":
		if cfg.Blob.Directory == "" {
			cfg.Blob.Directory = DefaultBlobDir
		}
	case "s3":
		if cfg.Blob.Bucket == "" {
			return fmt.Errorf("blob driver %q requires a bucket", cfg.Blob.Driver)
		}
	}

	if cfg.Event.Driver == "nats" && cfg.Event.URL == "" {
		return fmt.Errorf("event driver %q requires a url", cfg.Event.Driver)
	}

	if cfg.HTTP.Port < 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http port out of range: %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = DefaultHTTPPort
	}

	return nil
}
