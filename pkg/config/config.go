package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for all environment variable overrides
const EnvPrefix = "YDDOWNLOADER_"

// Config holds all configuration options for the Yodayo downloader
type Config struct {
	// Remote API settings
	API APIConfig `yaml:"api" json:"api"`

	// URL normalization probe settings
	Normalize NormalizeConfig `yaml:"normalize" json:"normalize"`

	// Memoization settings
	Cache CacheConfig `yaml:"cache" json:"cache"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Terminal output
	UI UIConfig `yaml:"ui" json:"ui"`
}

// APIConfig holds settings for the posts API and image downloads
type APIConfig struct {
	BaseURL        string        `yaml:"base_url" json:"base_url"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	PageSize       int           `yaml:"page_size" json:"page_size"`
	ImageWidth     int           `yaml:"image_width" json:"image_width"`
	IncludeNSFW    bool          `yaml:"include_nsfw" json:"include_nsfw"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// NormalizeConfig holds settings for the URL existence probe
type NormalizeConfig struct {
	ProbeTimeout time.Duration `yaml:"probe_timeout" json:"probe_timeout"`
}

// CacheConfig holds the memoization window shared by the page and URL caches
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" json:"ttl"`
}

// OutputConfig holds where the archive is written
type OutputConfig struct {
	Directory         string `yaml:"directory" json:"directory"`
	ArchiveName       string `yaml:"archive_name" json:"archive_name"`
	OverwriteExisting bool   `yaml:"overwrite_existing" json:"overwrite_existing"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// UIConfig holds terminal output preferences
type UIConfig struct {
	ProgressEnabled bool `yaml:"progress_enabled" json:"progress_enabled"`
	ColorEnabled    bool `yaml:"color_enabled" json:"color_enabled"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:        "https://api.yodayo.com",
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			PageSize:       500,
			ImageWidth:     2688,
			IncludeNSFW:    true,
			RequestTimeout: 60 * time.Second,
		},
		Normalize: NormalizeConfig{
			ProbeTimeout: 200 * time.Millisecond,
		},
		Cache: CacheConfig{
			TTL: 3200 * time.Second,
		},
		Output: OutputConfig{
			Directory:         ".",
			ArchiveName:       "images.zip",
			OverwriteExisting: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
		UI: UIConfig{
			ProgressEnabled: true,
			ColorEnabled:    true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if baseURL := os.Getenv(EnvPrefix + "BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if userAgent := os.Getenv(EnvPrefix + "USER_AGENT"); userAgent != "" {
		c.API.UserAgent = userAgent
	}
	if pageSize := os.Getenv(EnvPrefix + "PAGE_SIZE"); pageSize != "" {
		val, err := strconv.Atoi(pageSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPAGE_SIZE: %w", EnvPrefix, err))
		} else {
			c.API.PageSize = val
		}
	}
	if nsfw := os.Getenv(EnvPrefix + "INCLUDE_NSFW"); nsfw != "" {
		c.API.IncludeNSFW = strings.ToLower(nsfw) == "true"
	}
	if timeout := os.Getenv(EnvPrefix + "PROBE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sPROBE_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Normalize.ProbeTimeout = d
		}
	}
	if ttl := os.Getenv(EnvPrefix + "CACHE_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sCACHE_TTL: %w", EnvPrefix, err))
		} else {
			c.Cache.TTL = d
		}
	}
	if outputDir := os.Getenv(EnvPrefix + "OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if archiveName := os.Getenv(EnvPrefix + "ARCHIVE_NAME"); archiveName != "" {
		c.Output.ArchiveName = archiveName
	}
	if logLevel := os.Getenv(EnvPrefix + "LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv(EnvPrefix + "LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"yddownloader.yaml",
		"yddownloader.yml",
		".yddownloader.yaml",
		".yddownloader.yml",
		filepath.Join(home, ".config", "yddownloader", "config.yaml"),
		filepath.Join(home, ".yddownloader.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.API.BaseURL)
	if c.API.BaseURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("api base URL must be an absolute URL"))
	}
	if c.API.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.API.ImageWidth <= 0 {
		errs = append(errs, errors.New("image width must be positive"))
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Normalize.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("probe timeout must be positive"))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache TTL must be positive"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.ArchiveName == "" {
		errs = append(errs, errors.New("archive name is required"))
	} else if filepath.Base(c.Output.ArchiveName) != c.Output.ArchiveName {
		errs = append(errs, errors.New("archive name must not contain a path"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.API.PageSize = pageSize
	}
	if timeout, ok := flags["probe-timeout"].(time.Duration); ok && timeout > 0 {
		c.Normalize.ProbeTimeout = timeout
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if archiveName, ok := flags["archive-name"].(string); ok && archiveName != "" {
		c.Output.ArchiveName = archiveName
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if progress, ok := flags["progress"].(bool); ok {
		c.UI.ProgressEnabled = progress
	}
	if color, ok := flags["color"].(bool); ok {
		c.UI.ColorEnabled = color
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".yddownloader.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
