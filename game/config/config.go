package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// Environment variable names
const (
	EnvServerHost  = "GRID_SERVER_HOST"
	EnvHTTPPort    = "GRID_HTTP_PORT"
	EnvScheme      = "GRID_SCHEME"
	EnvStreamPath  = "GRID_STREAM_PATH"
	EnvTimeout     = "GRID_TIMEOUT_SECONDS"
	EnvLogFile     = "GRID_LOG_FILE"
	EnvDebug       = "GRID_DEBUG"
	EnvInspectAddr = "GRID_INSPECT_ADDR"
)

// Config holds the client settings
type Config struct {
	ServerHost     string `json:"server_host"`
	HTTPPort       int    `json:"http_port"`
	Scheme         string `json:"scheme"` // http or https; the stream uses ws or wss to match
	StreamPath     string `json:"stream_path"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	LogFile        string `json:"log_file"`
	Debug          bool   `json:"debug"`
	InspectAddr    string `json:"inspect_addr,omitempty"` // empty disables the inspection API
}

// Default returns the settings used by the original browser and curses clients
func Default() *Config {
	return &Config{
		ServerHost:     "localhost",
		HTTPPort:       8000,
		Scheme:         "http",
		StreamPath:     "/ws",
		TimeoutSeconds: 10,
		LogFile:        "grid-client.log",
	}
}

// Load reads a JSON file on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from the environment. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServerHost); ok && v != "" {
		c.ServerHost = v
	}
	if v, ok := lookup(EnvScheme); ok && v != "" {
		c.Scheme = v
	}
	if v, ok := lookup(EnvStreamPath); ok && v != "" {
		c.StreamPath = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.LogFile = v
	}
	if v, ok := lookup(EnvInspectAddr); ok {
		c.InspectAddr = v
	}
	if v, ok := lookup(EnvHTTPPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvHTTPPort, v)
		}
		c.HTTPPort = port
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvTimeout, v)
		}
		c.TimeoutSeconds = secs
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidConfig, EnvDebug, v)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks that the settings describe a reachable server
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerHost) == "" {
		return fmt.Errorf("%w: server host is empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.ServerHost, "/ ") {
		return fmt.Errorf("%w: server host %q must be a bare host name", ErrInvalidConfig, c.ServerHost)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("%w: http port %d out of range", ErrInvalidConfig, c.HTTPPort)
	}
	if c.Scheme != "http" && c.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q must be http or https", ErrInvalidConfig, c.Scheme)
	}
	if !strings.HasPrefix(c.StreamPath, "/") {
		return fmt.Errorf("%w: stream path %q must start with /", ErrInvalidConfig, c.StreamPath)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %d", ErrInvalidConfig, c.TimeoutSeconds)
	}
	if c.InspectAddr != "" {
		if _, _, err := net.SplitHostPort(c.InspectAddr); err != nil {
			return fmt.Errorf("%w: inspect address %q: %v", ErrInvalidConfig, c.InspectAddr, err)
		}
	}
	return nil
}

// BaseURL is the root of the request/response endpoints
func (c *Config) BaseURL() string {
	u := url.URL{Scheme: c.Scheme, Host: c.hostPort()}
	return u.String()
}

// StreamURL is the websocket endpoint pushing map snapshots
func (c *Config) StreamURL() string {
	scheme := "ws"
	if c.Scheme == "https" {
		scheme = "wss"
	}
	u := url.URL{Scheme: scheme, Host: c.hostPort(), Path: c.StreamPath}
	return u.String()
}

// Timeout is the per-request HTTP timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Save writes the configuration as indented JSON
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) hostPort() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.HTTPPort))
}
