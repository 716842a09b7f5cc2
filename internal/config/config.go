package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	SMTP     SMTPConfig     `yaml:"smtp" envconfig:"SMTP"`
	LLM      LLMConfig      `yaml:"llm" envconfig:"LLM"`
	Report   ReportConfig   `yaml:"report" envconfig:"REPORT"`
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
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ExcelDir     string `yaml:"excel_dir" envconfig:"EXCEL_DIR" default:"data/excel"`
	CompaniesDir string `yaml:"companies_dir" envconfig:"COMPANIES_DIR" default:"data/companies"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" default:"output/reports"`
	ETLOutDir    string `yaml:"etl_out_dir" envconfig:"ETL_OUT_DIR" default:"output/etl"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	AssetsDir    string `yaml:"assets_dir" envconfig:"ASSETS_DIR" default:"assets"`
}

// SMTPConfig contains outbound email configuration. Sender and Password
// are required only when report delivery is actually requested.
type SMTPConfig struct {
	Host     string `yaml:"host" envconfig:"HOST" default:"smtp.gmail.com"`
	Port     int    `yaml:"port" envconfig:"PORT" default:"587"`
	Sender   string `yaml:"sender" envconfig:"SENDER"`
	Password string `yaml:"password" envconfig:"PASSWORD"`
}

// LLMConfig contains hosted model access configuration. The endpoint is
// OpenAI-compatible; the default targets the Groq API.
type LLMConfig struct {
	APIKey      string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.groq.com/openai/v1"`
	Model       string        `yaml:"model" envconfig:"MODEL" default:"llama-3.3-70b-versatile"`
	Temperature float64       `yaml:"temperature" envconfig:"TEMPERATURE" default:"0.2"`
	MaxTokens   int           `yaml:"max_tokens" envconfig:"MAX_TOKENS" default:"800"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"45s"`
}

// ReportConfig contains PDF report generation configuration
type ReportConfig struct {
	Organization string `yaml:"organization" envconfig:"ORGANIZATION" default:"Sustainability Team"`
	LogoFile     string `yaml:"logo_file" envconfig:"LOGO_FILE" default:"company_logo.png"`
}

// Load loads configuration from .env, environment variables and an
// optional YAML config file. Environment variables take precedence over
// the file, matching the original dotenv-first behavior.
func Load() (*Config, error) {
	// Best effort: a missing .env is not an error
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("GRIPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
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
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Paths.BaseDir == "" {
		envConfig.Paths.BaseDir = fileConfig.Paths.BaseDir
	}
	if envConfig.SMTP.Sender == "" {
		envConfig.SMTP.Sender = fileConfig.SMTP.Sender
	}
	if envConfig.SMTP.Password == "" {
		envConfig.SMTP.Password = fileConfig.SMTP.Password
	}
	if envConfig.LLM.APIKey == "" {
		envConfig.LLM.APIKey = fileConfig.LLM.APIKey
	}
	if envConfig.LLM.Model == "" {
		envConfig.LLM.Model = fileConfig.LLM.Model
	}
	if envConfig.Report.Organization == "" {
		envConfig.Report.Organization = fileConfig.Report.Organization
	}

	return envConfig
}

// resolvePaths anchors all configured directories to the base directory
func (c *Config) resolvePaths() error {
	paths, err := GetPathsFromConfig(&c.Paths)
	if err != nil {
		return fmt.Errorf("failed to resolve paths: %w", err)
	}

	c.Paths.BaseDir = paths.BaseDir
	c.Paths.DataDir = paths.DataDir
	c.Paths.ExcelDir = paths.ExcelDir
	c.Paths.CompaniesDir = paths.CompaniesDir
	c.Paths.ReportsDir = paths.ReportsDir
	c.Paths.ETLOutDir = paths.ETLOutDir
	c.Paths.LogsDir = paths.LogsDir
	c.Paths.AssetsDir = paths.AssetsDir

	if !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(paths.BaseDir, c.Logging.FilePath)
	}

	return nil
}

// validate checks the configuration for invalid values
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		return fmt.Errorf("invalid log output: %s", c.Logging.Output)
	}

	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("invalid rate limit rps: %f", c.Security.RateLimit.RPS)
	}

	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		return fmt.Errorf("invalid smtp port: %d", c.SMTP.Port)
	}

	return nil
}

// EmailConfigured reports whether outbound mail credentials are present.
func (c *Config) EmailConfigured() bool {
	return c.SMTP.Sender != "" && c.SMTP.Password != ""
}

// getConfigFilePath returns the path to the YAML config file
func getConfigFilePath() string {
	if path := os.Getenv("GRIPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
