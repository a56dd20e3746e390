package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"redditsave/pkg/models"
)

// DockerLocation is the archive location used when DOCKER=1
const DockerLocation = "./archive/"

// Inconclusive media policies
const (
	PolicyRender    = "render"
	PolicySkip      = "skip"
	PolicyBlacklist = "blacklist"
)

// Config holds all configuration options for the archiver
type Config struct {
	// Reddit API credentials and listing behaviour
	Reddit RedditConfig `yaml:"reddit" json:"reddit"`

	// Archive output settings
	Archive ArchiveConfig `yaml:"archive" json:"archive"`

	// Media fetching strategies
	Media MediaConfig `yaml:"media" json:"media"`

	// Outgoing HTTP settings for media downloads
	HTTP HTTPConfig `yaml:"http" json:"http"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// RedditConfig holds Reddit API configuration
type RedditConfig struct {
	Username          string `yaml:"username" json:"username"`
	Password          string `yaml:"password" json:"password"`
	ClientID          string `yaml:"client_id" json:"client_id"`
	Secret            string `yaml:"secret" json:"secret"`
	UserAgent         string `yaml:"user_agent" json:"user_agent"`
	RequestsPerMinute int    `yaml:"requests_per_minute" json:"requests_per_minute"`
	PageLimit         int    `yaml:"page_limit" json:"page_limit"`
}

// ArchiveConfig holds archive output configuration
type ArchiveConfig struct {
	Location    string `yaml:"location" json:"location"`
	Mode        string `yaml:"mode" json:"mode"`
	PageSize    int    `yaml:"page_size" json:"page_size"`
	Blacklist   string `yaml:"blacklist" json:"blacklist"`
	TemplateDir string `yaml:"template_dir" json:"template_dir"`
	Stats       bool   `yaml:"stats" json:"stats"`
}

// MediaConfig holds media strategy configuration
type MediaConfig struct {
	ImageExtensions    []string      `yaml:"image_extensions" json:"image_extensions"`
	VideoExtensions    []string      `yaml:"video_extensions" json:"video_extensions"`
	Platforms          []string      `yaml:"platforms" json:"platforms"`
	DeadHosts          []string      `yaml:"dead_hosts" json:"dead_hosts"`
	GalleryBackoffBase time.Duration `yaml:"gallery_backoff_base" json:"gallery_backoff_base"`
	GalleryMaxAttempts int           `yaml:"gallery_max_attempts" json:"gallery_max_attempts"`
	GalleryWorkers     int           `yaml:"gallery_workers" json:"gallery_workers"`
	InconclusivePolicy string        `yaml:"inconclusive_policy" json:"inconclusive_policy"`
	YTDLPPath          string        `yaml:"ytdlp_path" json:"ytdlp_path"`
	InstallYTDLP       bool          `yaml:"install_ytdlp" json:"install_ytdlp"`
}

// HTTPConfig holds settings for the media HTTP client
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
	NoColor    bool   `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Reddit: RedditConfig{
			UserAgent:         "reddit-save",
			RequestsPerMinute: 60,
			PageLimit:         100,
		},
		Archive: ArchiveConfig{
			PageSize: 0,
		},
		Media: MediaConfig{
			ImageExtensions:    []string{"gif", "gifv", "jpg", "jpeg", "png"},
			VideoExtensions:    []string{"mp4"},
			Platforms:          []string{"redgifs.com", "imgur.com", "youtube.com"},
			DeadHosts:          []string{"gfycat.com"},
			GalleryBackoffBase: time.Second,
			GalleryMaxAttempts: 6,
			GalleryWorkers:     4,
			InconclusivePolicy: PolicyRender,
		},
		HTTP: HTTPConfig{
			Timeout:           30 * time.Second,
			UserAgent:         "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			RequestsPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Reddit credentials keep their historical unprefixed names
	if v := os.Getenv("REDDIT_USERNAME"); v != "" {
		c.Reddit.Username = v
	}
	if v := os.Getenv("REDDIT_PASSWORD"); v != "" {
		c.Reddit.Password = v
	}
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("REDDIT_SECRET"); v != "" {
		c.Reddit.Secret = v
	}
	if v := os.Getenv("REDDITSAVE_USER_AGENT"); v != "" {
		c.Reddit.UserAgent = v
	}

	if v := os.Getenv("REDDITSAVE_LOCATION"); v != "" {
		c.Archive.Location = v
	}
	if v := os.Getenv("REDDITSAVE_MODE"); v != "" {
		c.Archive.Mode = v
	}
	if v := os.Getenv("REDDITSAVE_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDDITSAVE_PAGE_SIZE %q: %w", v, err)
		}
		c.Archive.PageSize = n
	}
	if v := os.Getenv("REDDITSAVE_BLACKLIST"); v != "" {
		c.Archive.Blacklist = v
	}
	if v := os.Getenv("REDDITSAVE_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REDDITSAVE_HTTP_TIMEOUT %q: %w", v, err)
		}
		c.HTTP.Timeout = d
	}

	// LOG_LEVEL is honoured for compatibility, the prefixed form wins
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REDDITSAVE_LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("REDDITSAVE_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	for _, loc := range SearchPaths() {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}
	return ""
}

// SearchPaths lists the config file locations in order of precedence
func SearchPaths() []string {
	home := os.Getenv("HOME")
	return []string{
		".redditsave.yaml",
		".redditsave.yml",
		filepath.Join(home, ".config", "redditsave", "config.yaml"),
		filepath.Join(home, ".config", "redditsave", "config.yml"),
		filepath.Join(home, ".redditsave.yaml"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Archive.Mode != "" {
		if _, err := models.ParseMode(c.Archive.Mode); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Archive.PageSize < 0 {
		errs = append(errs, errors.New("page size cannot be negative"))
	}

	if c.Reddit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("reddit requests per minute must be positive"))
	}
	if c.Reddit.PageLimit <= 0 || c.Reddit.PageLimit > 100 {
		errs = append(errs, errors.New("reddit page limit must be between 1 and 100"))
	}

	if c.HTTP.Timeout <= 0 {
		errs = append(errs, errors.New("http timeout must be positive"))
	}
	if c.HTTP.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("http requests per minute must be positive"))
	}

	if len(c.Media.ImageExtensions) == 0 {
		errs = append(errs, errors.New("at least one image extension is required"))
	}
	if c.Media.GalleryBackoffBase <= 0 {
		errs = append(errs, errors.New("gallery backoff base must be positive"))
	}
	if c.Media.GalleryMaxAttempts < 1 {
		errs = append(errs, errors.New("gallery max attempts must be at least 1"))
	}
	if c.Media.GalleryWorkers < 1 {
		errs = append(errs, errors.New("gallery workers must be at least 1"))
	}
	switch c.Media.InconclusivePolicy {
	case PolicyRender, PolicySkip, PolicyBlacklist:
	default:
		errs = append(errs, fmt.Errorf("invalid inconclusive policy %q", c.Media.InconclusivePolicy))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ValidateArchive checks the settings an archive run cannot start without
func (c *Config) ValidateArchive() error {
	var errs []error

	if c.Archive.Mode == "" {
		errs = append(errs, errors.New("mode is required"))
	}
	if c.Archive.Location == "" {
		errs = append(errs, errors.New("location is required when not running in Docker"))
	}
	if c.Reddit.ClientID == "" || c.Reddit.Secret == "" {
		errs = append(errs, errors.New("reddit client id and secret are required"))
	}
	if c.Reddit.Username == "" || c.Reddit.Password == "" {
		errs = append(errs, errors.New("reddit username and password are required"))
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

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy with credentials hidden, for display
func (c *Config) Masked() *Config {
	masked := *c
	masked.Reddit.Password = mask(c.Reddit.Password)
	masked.Reddit.Secret = mask(c.Reddit.Secret)
	return &masked
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) > 8 {
		return s[:2] + "..." + s[len(s)-2:]
	}
	return "***"
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if mode, ok := flags["mode"].(string); ok && mode != "" {
		c.Archive.Mode = mode
	}
	if location, ok := flags["location"].(string); ok && location != "" {
		c.Archive.Location = location
	}
	if pageSize, ok := flags["page-size"].(int); ok {
		c.Archive.PageSize = pageSize
	}
	if blacklist, ok := flags["blacklist"].(string); ok && blacklist != "" {
		c.Archive.Blacklist = blacklist
	}
	if templateDir, ok := flags["template-dir"].(string); ok && templateDir != "" {
		c.Archive.TemplateDir = templateDir
	}
	if stats, ok := flags["stats"].(bool); ok {
		c.Archive.Stats = stats
	}
	if timeout, ok := flags["http-timeout"].(time.Duration); ok && timeout > 0 {
		c.HTTP.Timeout = timeout
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.Logging.NoColor = true
	}
}

// applyDocker forces the container archive location, overriding every other source
func (c *Config) applyDocker() {
	if os.Getenv("DOCKER") == "1" {
		c.Archive.Location = DockerLocation
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: DOCKER location > Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".redditsave.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)
	config.applyDocker()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
