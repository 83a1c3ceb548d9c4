package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel  int    `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Search   SearchConfig   `yaml:"search"`
	Download DownloadConfig `yaml:"download"`
	Tagging  TaggingConfig  `yaml:"tagging"`
	Storage  StorageConfig  `yaml:"storage"`
}

type SearchConfig struct {
	// Provider is "scrape" (search results page) or "api" (YouTube Data API v3)
	Provider   string        `yaml:"provider"`
	BaseURL    string        `yaml:"base_url"`
	APIBaseURL string        `yaml:"api_base_url"`
	APIKey     string        `yaml:"api_key"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"timeout"`

	// Marker is the description substring identifying official releases
	Marker string `yaml:"marker"`

	// Markers delimit the initial data assignment in the results page, tried in order
	Markers []MarkerPair `yaml:"markers"`
}

type MarkerPair struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type DownloadConfig struct {
	Format         string `yaml:"format"`
	Codec          string `yaml:"codec"`
	Quality        string `yaml:"quality"`
	OutputTemplate string `yaml:"output_template"`
	AutoInstall    bool   `yaml:"auto_install"`
}

type TaggingConfig struct {
	Enabled bool `yaml:"enabled"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	OutputDir string `yaml:"output_dir"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	CredentialsFile string `yaml:"credentials_file"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads path and fills in defaults. Callers apply their overrides and
// then call Validate.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.setDefaults()

	return config, nil
}

// LoadOrDefault loads path when it exists and falls back to defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) setDefaults() {
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	if c.Search.Provider == "" {
		c.Search.Provider = "scrape"
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://www.youtube.com"
	}
	if c.Search.APIBaseURL == "" {
		c.Search.APIBaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:71.0) Gecko/20100101 Firefox/71.0"
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = 30 * time.Second
	}
	if c.Search.Marker == "" {
		c.Search.Marker = "Provided to YouTube"
	}
	if len(c.Search.Markers) == 0 {
		c.Search.Markers = []MarkerPair{
			{Start: `ytInitialData"] =`, End: `window["ytInitialPlayerResponse`},
			{Start: "var ytInitialData = ", End: "</script>"},
		}
	}

	if c.Download.Format == "" {
		c.Download.Format = "bestaudio/best"
	}
	if c.Download.Codec == "" {
		c.Download.Codec = "mp3"
	}
	if c.Download.Quality == "" {
		c.Download.Quality = "192"
	}
	if c.Download.OutputTemplate == "" {
		c.Download.OutputTemplate = "%(title)s-%(id)s.%(ext)s"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.OutputDir == "" {
		c.Storage.OutputDir = "."
	}
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv() error {
	if key := os.Getenv("YOUTUBE_API_KEY"); key != "" {
		c.Search.APIKey = key
	}
	if dir := os.Getenv("PLAYLISTDL_OUTPUT_DIR"); dir != "" {
		c.Storage.OutputDir = dir
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" && c.Storage.CredentialsFile == "" {
		c.Storage.CredentialsFile = creds
	}
	if level := os.Getenv("PLAYLISTDL_LOG_LEVEL"); level != "" {
		n, err := strconv.Atoi(level)
		if err != nil {
			return fmt.Errorf("invalid PLAYLISTDL_LOG_LEVEL %q: %w", level, err)
		}
		c.LogLevel = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Search.Provider {
	case "scrape", "api":
	default:
		return fmt.Errorf("invalid search provider %q: must be scrape or api", c.Search.Provider)
	}

	switch c.Storage.Type {
	case "local":
	case "gcs":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for gcs storage")
		}
	default:
		return fmt.Errorf("invalid storage type %q: must be local or gcs", c.Storage.Type)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be text or json", c.LogFormat)
	}

	return nil
}
