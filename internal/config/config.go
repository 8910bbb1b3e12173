package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"image-compressor-go/internal/compressor"
	"image-compressor-go/internal/logger"

	"github.com/spf13/viper"
)

// Orientation sources.
const (
	OrientationGoexif   = "goexif"
	OrientationExiftool = "exiftool"
	OrientationNone     = "none"
)

// Optimizer modes.
const (
	OptimizerAuto     = "auto"
	OptimizerJpegtran = "jpegtran"
	OptimizerNone     = "none"
)

// Config represents the main configuration structure
type Config struct {
	ImagesDir         string           `mapstructure:"images_dir"`
	Jobs              []compressor.Job `mapstructure:"jobs"`
	FailOnError       bool             `mapstructure:"fail_on_error"`
	OrientationSource string           `mapstructure:"orientation_source"`
	Optimizer         string           `mapstructure:"optimizer"`
	Server            ServerConfig     `mapstructure:"server"`
	Logging           LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig contains settings for the serve command
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"` // MB
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// DefaultJobs returns the built-in list of website images to convert.
func DefaultJobs() []compressor.Job {
	return []compressor.Job{
		{Source: "background.png", Destination: "background.jpg", Quality: 80, MaxWidth: 1920},
		{Source: "background2.png", Destination: "background2.jpg", Quality: 80, MaxWidth: 1920},
		{Source: "LocationalAstro.png", Destination: "LocationalAstro.jpg", Quality: 85, MaxWidth: 1200},
		{Source: "logo-large.png", Destination: "logo-large.jpg", Quality: 90, MaxWidth: 800},
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	logDefaults := logger.DefaultConfig()
	return &Config{
		ImagesDir:         "images",
		Jobs:              DefaultJobs(),
		FailOnError:       true,
		OrientationSource: OrientationGoexif,
		Optimizer:         OptimizerAuto,
		Server: ServerConfig{
			Port: 8080,
		},
		Logging: LoggingConfig{
			Level:      logDefaults.Level,
			FilePath:   logDefaults.FilePath,
			MaxSize:    logDefaults.MaxSize,
			MaxBackups: logDefaults.MaxBackups,
			MaxAge:     logDefaults.MaxAge,
			Compress:   logDefaults.Compress,
		},
	}
}

// LoadConfig loads configuration from file and environment variables.
// A missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()
	v := viper.New()

	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config file in current directory and home directory
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.image-compressor")
		v.AddConfigPath("/etc/image-compressor")
	}

	// Scalar keys must be registered for AutomaticEnv to see them on Unmarshal.
	v.SetDefault("images_dir", config.ImagesDir)
	v.SetDefault("fail_on_error", config.FailOnError)
	v.SetDefault("orientation_source", config.OrientationSource)
	v.SetDefault("optimizer", config.Optimizer)
	v.SetDefault("server.port", config.Server.Port)
	v.SetDefault("logging.level", config.Logging.Level)
	v.SetDefault("logging.file_path", config.Logging.FilePath)
	v.SetDefault("logging.max_size", config.Logging.MaxSize)
	v.SetDefault("logging.max_backups", config.Logging.MaxBackups)
	v.SetDefault("logging.max_age", config.Logging.MaxAge)
	v.SetDefault("logging.compress", config.Logging.Compress)

	v.SetEnvPrefix("IMAGE_COMPRESSOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// mapstructure decodes into the existing slice element by element, so a
	// configured job list must replace the defaults rather than overlay them.
	if v.IsSet("jobs") {
		config.Jobs = nil
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ImagesDir == "" {
		c.ImagesDir = "."
	}

	if len(c.Jobs) == 0 {
		return fmt.Errorf("jobs must not be empty")
	}
	for i, job := range c.Jobs {
		if job.Source == "" || job.Destination == "" {
			return fmt.Errorf("job %d: source and destination are required", i)
		}
		if job.Source == job.Destination {
			return fmt.Errorf("job %d: destination must differ from source", i)
		}
		if job.Quality < 1 || job.Quality > 100 {
			return fmt.Errorf("job %d (%s): quality %d out of range 1-100", i, job.Source, job.Quality)
		}
		if job.MaxWidth <= 0 {
			return fmt.Errorf("job %d (%s): max_width must be positive", i, job.Source)
		}
	}

	c.OrientationSource = strings.ToLower(c.OrientationSource)
	switch c.OrientationSource {
	case OrientationGoexif, OrientationExiftool, OrientationNone:
	default:
		return fmt.Errorf("invalid orientation_source: %s (valid: goexif, exiftool, none)", c.OrientationSource)
	}

	c.Optimizer = strings.ToLower(c.Optimizer)
	switch c.Optimizer {
	case OptimizerAuto, OptimizerJpegtran, OptimizerNone:
	default:
		return fmt.Errorf("invalid optimizer: %s (valid: auto, jpegtran, none)", c.Optimizer)
	}

	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// ResolvedJobs returns the job list with paths joined onto ImagesDir.
func (c *Config) ResolvedJobs() []compressor.Job {
	jobs := make([]compressor.Job, len(c.Jobs))
	for i, job := range c.Jobs {
		job.Source = c.resolve(job.Source)
		job.Destination = c.resolve(job.Destination)
		jobs[i] = job
	}
	return jobs
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.ImagesDir, path)
}
