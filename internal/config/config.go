package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"hrpulse/internal/attribution"
	"hrpulse/internal/model"
	"hrpulse/internal/pipeline"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// PipelineConfig drives the feature pipeline, the trainer and the
// explainer. Zero-valued training/explainer fields fall back to the
// production defaults, so a config file only needs the overrides.
type PipelineConfig struct {
	// ReferenceDate pins the "as of" date of every age, tenure and
	// window computation (ISO date). Empty means today.
	ReferenceDate string `yaml:"reference_date" envconfig:"REFERENCE_DATE"`
	// PatchOutliers enables the seeded replacement of known-bad
	// attendance and leave values.
	PatchOutliers bool  `yaml:"patch_outliers" envconfig:"PATCH_OUTLIERS" default:"true"`
	Seed          int64 `yaml:"seed" envconfig:"SEED" default:"42"`

	Training  model.Params       `yaml:"training" envconfig:"TRAINING"`
	Explainer attribution.Config `yaml:"explainer" envconfig:"EXPLAINER"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables first
	if err := envconfig.Process("HRPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	// Load from config file if exists
	configFile := getConfigFilePath()
	if configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence)
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Server.Port == 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Server.ReadTimeout == 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if envConfig.Server.WriteTimeout == 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if envConfig.Paths.DataDir == "" || envConfig.Paths.DataDir == "data" {
		if fileConfig.Paths.DataDir != "" {
			envConfig.Paths.DataDir = fileConfig.Paths.DataDir
		}
	}
	if envConfig.Pipeline.ReferenceDate == "" {
		envConfig.Pipeline.ReferenceDate = fileConfig.Pipeline.ReferenceDate
	}
	if envConfig.Pipeline.Training.Rounds == 0 {
		envConfig.Pipeline.Training = fileConfig.Pipeline.Training
	}
	if envConfig.Pipeline.Explainer.BackgroundSize == 0 {
		envConfig.Pipeline.Explainer = fileConfig.Pipeline.Explainer
	}

	return envConfig
}

// GetDataDir returns the resolved data directory path
func (c *Config) GetDataDir() string {
	return resolvePath(c.Paths.DataDir)
}

// GetOutputDir returns the resolved output directory path
func (c *Config) GetOutputDir() string {
	return resolvePath(c.Paths.OutputDir)
}

// GetLogsDir returns the resolved logs directory path
func (c *Config) GetLogsDir() string {
	return resolvePath(c.Paths.LogsDir)
}

func resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

// EngineParams translates the pipeline section into feature engine
// parameters.
func (c *Config) EngineParams() (pipeline.Params, error) {
	params := pipeline.Params{
		PatchOutliers: c.Pipeline.PatchOutliers,
		Seed:          c.Pipeline.Seed,
	}
	if c.Pipeline.ReferenceDate != "" {
		asOf, err := time.Parse("2006-01-02", c.Pipeline.ReferenceDate)
		if err != nil {
			return pipeline.Params{}, fmt.Errorf("invalid reference date %q: %w",
				c.Pipeline.ReferenceDate, err)
		}
		params.AsOf = asOf
	}
	return params, nil
}

// TrainingParams returns the training hyperparameters with defaults
// applied to any field left unset.
func (c *Config) TrainingParams() model.Params {
	params := c.Pipeline.Training
	defaults := model.DefaultParams()
	if params.Rounds == 0 {
		params.Rounds = defaults.Rounds
	}
	if params.MaxDepth == 0 {
		params.MaxDepth = defaults.MaxDepth
	}
	if params.LearningRate == 0 {
		params.LearningRate = defaults.LearningRate
	}
	if params.PositiveWeight == 0 {
		params.PositiveWeight = defaults.PositiveWeight
	}
	if params.MinChildWeight == 0 {
		params.MinChildWeight = defaults.MinChildWeight
	}
	if params.Lambda == 0 {
		params.Lambda = defaults.Lambda
	}
	if params.OversampleRatio == 0 {
		params.OversampleRatio = defaults.OversampleRatio
	}
	if params.Seed == 0 {
		params.Seed = defaults.Seed
	}
	return params
}

// ExplainerConfig returns the explainer configuration with defaults
// applied to any field left unset.
func (c *Config) ExplainerConfig() attribution.Config {
	cfg := c.Pipeline.Explainer
	defaults := attribution.DefaultConfig()
	if cfg.BackgroundSize == 0 {
		cfg.BackgroundSize = defaults.BackgroundSize
	}
	if cfg.GlobalSampleSize == 0 {
		cfg.GlobalSampleSize = defaults.GlobalSampleSize
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaults.Seed
	}
	return cfg
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Paths.DataDir == "" {
		return fmt.Errorf("data directory must be set")
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}

	if c.Logging.Output != "both" && c.Logging.Output != "file" && c.Logging.Output != "console" {
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	if err := c.TrainingParams().Validate(); err != nil {
		return fmt.Errorf("invalid training config: %w", err)
	}

	if _, err := c.EngineParams(); err != nil {
		return err
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "output",
			LogsDir:   "logs",
		},
		Pipeline: PipelineConfig{
			PatchOutliers: true,
			Seed:          42,
			Training:      model.DefaultParams(),
			Explainer:     attribution.DefaultConfig(),
		},
	}
}
