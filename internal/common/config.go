package common

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/lectio/internal/interfaces"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Files       FilesConfig     `toml:"files"`
	Logging     LoggingConfig   `toml:"logging"`
	Parsing     ParsingConfig   `toml:"parsing"`
	Analysis    AnalysisConfig  `toml:"analysis"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	LLM         LLMConfig       `toml:"llm"`
	Cache       CacheConfig     `toml:"cache"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	WebSocket   WebSocketConfig `toml:"websocket"`
}

type ServerConfig struct {
	Port               int    `toml:"port"`
	Host               string `toml:"host"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"` // Per-client request budget, 0 disables limiting
}

type StorageConfig struct {
	Type     string         `toml:"type"` // "badger" (default) or "postgres"
	Badger   BadgerConfig   `toml:"badger"`
	Postgres PostgresConfig `toml:"postgres"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// PostgresConfig represents PostgreSQL-specific configuration
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"ssl_mode"`
}

// FilesConfig contains configuration for the document file store
type FilesConfig struct {
	Root        string `toml:"root"`          // Root directory for stored document files (date-sharded)
	StagingDir  string `toml:"staging_dir"`   // Directory for short-lived staged conversion files
	MaxUploadMB int    `toml:"max_upload_mb"` // Maximum accepted upload size in megabytes
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// ParsingConfig contains configuration for the format parsers
type ParsingConfig struct {
	OCRLanguages  string `toml:"ocr_languages"`  // Tesseract language hint (default: dual English + Traditional Chinese)
	TesseractPath string `toml:"tesseract_path"` // OCR engine binary, resolved via PATH when bare
}

// AnalysisConfig contains configuration for document analysis behavior
type AnalysisConfig struct {
	DefaultDepth string `toml:"default_depth"` // "basic", "standard", or "deep"
	RulesFile    string `toml:"rules_file"`    // Optional YAML rule pack prepended to the built-in classification rules
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Model for AI operations (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 4096)
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.3)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderNone disables AI analysis (heuristics only)
	LLMProviderNone LLMProvider = "none"
)

// LLMConfig contains unified configuration for AI providers
type LLMConfig struct {
	Provider LLMProvider `toml:"provider"` // "gemini", "claude", or "none" (default: "gemini")
}

// CacheConfig contains configuration for the optional Redis analysis cache.
// An empty address disables caching entirely.
type CacheConfig struct {
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTL           string `toml:"ttl"` // Cache entry lifetime as duration string (default: "24h")
}

// SchedulerConfig contains configuration for background maintenance jobs
type SchedulerConfig struct {
	Enabled       bool   `toml:"enabled"`
	StatsSchedule string `toml:"stats_schedule"` // Cron schedule for library stats refresh
	SweepSchedule string `toml:"sweep_schedule"` // Cron schedule for stale staging-file sweep
	StaleAge      string `toml:"stale_age"`      // Staged files older than this are swept (duration string)
	GCSchedule    string `toml:"gc_schedule"`    // Cron schedule for embedded database value-log GC
}

// WebSocketConfig contains configuration for WebSocket event/log streaming
type WebSocketConfig struct {
	MinLevel        string   `toml:"min_level"`        // Minimum log level to broadcast ("debug", "info", "warn", "error")
	ExcludePatterns []string `toml:"exclude_patterns"` // Log message patterns to exclude from broadcasting
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters (parser thresholds, prompt caps) are code constants;
// only user-facing settings are exposed in lectio.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port:               8080,
			Host:               "localhost",
			RateLimitPerMinute: 0, // Disabled unless configured
		},
		Storage: StorageConfig{
			Type: "badger",
			Badger: BadgerConfig{
				Path: "./data/lectio",
			},
			Postgres: PostgresConfig{
				Host:    "localhost",
				Port:    5432,
				User:    "lectio",
				SSLMode: "disable",
			},
		},
		Files: FilesConfig{
			Root:        "./data/files",
			StagingDir:  "./data/staging",
			MaxUploadMB: 25,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Parsing: ParsingConfig{
			OCRLanguages:  "eng+chi_tra",
			TesseractPath: "tesseract",
		},
		Analysis: AnalysisConfig{
			DefaultDepth: "standard",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (GEMINI_API_KEY or config)
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			Provider: LLMProviderGemini,
		},
		Cache: CacheConfig{
			RedisAddr: "", // Empty disables the analysis cache
			TTL:       "24h",
		},
		Scheduler: SchedulerConfig{
			Enabled:       true,
			StatsSchedule: "*/5 * * * *",
			SweepSchedule: "0 * * * *",
			GCSchedule:    "30 * * * *",
			StaleAge:      "24h",
		},
		WebSocket: WebSocketConfig{
			MinLevel: "info",
			ExcludePatterns: []string{
				"WebSocket client connected",
				"WebSocket client disconnected",
				"HTTP request",
				"HTTP response",
				"Publishing event",
			},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env -> CLI.
// kvStorage can be nil (key reference replacement is skipped).
func LoadFromFile(kvStorage interfaces.KeyValueStorage, path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles(kvStorage)
	}
	return LoadFromFiles(kvStorage, path)
}

// LoadFromFiles loads configuration from multiple files; later files override
// earlier ones. Priority: CLI flags > environment > last file > ... > defaults.
// kvStorage can be nil (key reference replacement is skipped).
func LoadFromFiles(kvStorage interfaces.KeyValueStorage, paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	// Perform {key-name} replacement if KV storage is available
	if kvStorage != nil {
		ctx := context.Background()
		kvMap, err := kvStorage.GetAll(ctx)
		if err != nil {
			logger := arbor.NewLogger()
			logger.Warn().Err(err).Msg("Failed to fetch KV map for config replacement, skipping replacement")
		} else {
			logger := arbor.NewLogger()
			if err := ReplaceInStruct(config, kvMap, logger); err != nil {
				logger.Warn().Err(err).Msg("Failed to replace key references in config")
			}
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LECTIO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("LECTIO_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LECTIO_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if rate := os.Getenv("LECTIO_SERVER_RATE_LIMIT_PER_MINUTE"); rate != "" {
		if r, err := strconv.Atoi(rate); err == nil {
			config.Server.RateLimitPerMinute = r
		}
	}

	// Storage configuration
	if storageType := os.Getenv("LECTIO_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if badgerPath := os.Getenv("LECTIO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}
	if pgHost := os.Getenv("LECTIO_POSTGRES_HOST"); pgHost != "" {
		config.Storage.Postgres.Host = pgHost
	}
	if pgPort := os.Getenv("LECTIO_POSTGRES_PORT"); pgPort != "" {
		if p, err := strconv.Atoi(pgPort); err == nil {
			config.Storage.Postgres.Port = p
		}
	}
	if pgUser := os.Getenv("LECTIO_POSTGRES_USER"); pgUser != "" {
		config.Storage.Postgres.User = pgUser
	}
	if pgPassword := os.Getenv("LECTIO_POSTGRES_PASSWORD"); pgPassword != "" {
		config.Storage.Postgres.Password = pgPassword
	}
	if pgDatabase := os.Getenv("LECTIO_POSTGRES_DATABASE"); pgDatabase != "" {
		config.Storage.Postgres.Database = pgDatabase
	}

	// Files configuration
	if root := os.Getenv("LECTIO_FILES_ROOT"); root != "" {
		config.Files.Root = root
	}
	if staging := os.Getenv("LECTIO_FILES_STAGING_DIR"); staging != "" {
		config.Files.StagingDir = staging
	}
	if maxUpload := os.Getenv("LECTIO_FILES_MAX_UPLOAD_MB"); maxUpload != "" {
		if m, err := strconv.Atoi(maxUpload); err == nil {
			config.Files.MaxUploadMB = m
		}
	}

	// Logging configuration
	if level := os.Getenv("LECTIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("LECTIO_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("LECTIO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Parsing configuration
	if langs := os.Getenv("LECTIO_PARSING_OCR_LANGUAGES"); langs != "" {
		config.Parsing.OCRLanguages = langs
	}
	if tesseract := os.Getenv("LECTIO_PARSING_TESSERACT_PATH"); tesseract != "" {
		config.Parsing.TesseractPath = tesseract
	}

	// Analysis configuration
	if depth := os.Getenv("LECTIO_ANALYSIS_DEFAULT_DEPTH"); depth != "" {
		config.Analysis.DefaultDepth = depth
	}
	if rulesFile := os.Getenv("LECTIO_ANALYSIS_RULES_FILE"); rulesFile != "" {
		config.Analysis.RulesFile = rulesFile
	}

	// Gemini configuration
	if apiKey := os.Getenv("LECTIO_GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	} else if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("LECTIO_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if timeout := os.Getenv("LECTIO_GEMINI_TIMEOUT"); timeout != "" {
		config.Gemini.Timeout = timeout
	}
	if temperature := os.Getenv("LECTIO_GEMINI_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Gemini.Temperature = float32(t)
		}
	}

	// Claude configuration
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("LECTIO_CLAUDE_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey // LECTIO_ prefix takes priority
	}
	if model := os.Getenv("LECTIO_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
	if maxTokens := os.Getenv("LECTIO_CLAUDE_MAX_TOKENS"); maxTokens != "" {
		if mt, err := strconv.Atoi(maxTokens); err == nil {
			config.Claude.MaxTokens = mt
		}
	}
	if timeout := os.Getenv("LECTIO_CLAUDE_TIMEOUT"); timeout != "" {
		config.Claude.Timeout = timeout
	}
	if temperature := os.Getenv("LECTIO_CLAUDE_TEMPERATURE"); temperature != "" {
		if t, err := strconv.ParseFloat(temperature, 32); err == nil {
			config.Claude.Temperature = float32(t)
		}
	}

	// LLM provider configuration
	if provider := os.Getenv("LECTIO_LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = LLMProvider(provider)
	}

	// Cache configuration
	if addr := os.Getenv("LECTIO_CACHE_REDIS_ADDR"); addr != "" {
		config.Cache.RedisAddr = addr
	}
	if password := os.Getenv("LECTIO_CACHE_REDIS_PASSWORD"); password != "" {
		config.Cache.RedisPassword = password
	}
	if db := os.Getenv("LECTIO_CACHE_REDIS_DB"); db != "" {
		if d, err := strconv.Atoi(db); err == nil {
			config.Cache.RedisDB = d
		}
	}
	if ttl := os.Getenv("LECTIO_CACHE_TTL"); ttl != "" {
		if _, err := time.ParseDuration(ttl); err == nil {
			config.Cache.TTL = ttl
		}
	}

	// Scheduler configuration
	if enabled := os.Getenv("LECTIO_SCHEDULER_ENABLED"); enabled != "" {
		if e, err := strconv.ParseBool(enabled); err == nil {
			config.Scheduler.Enabled = e
		}
	}
	if schedule := os.Getenv("LECTIO_SCHEDULER_STATS_SCHEDULE"); schedule != "" {
		config.Scheduler.StatsSchedule = schedule
	}
	if schedule := os.Getenv("LECTIO_SCHEDULER_SWEEP_SCHEDULE"); schedule != "" {
		config.Scheduler.SweepSchedule = schedule
	}
	if schedule := os.Getenv("LECTIO_SCHEDULER_GC_SCHEDULE"); schedule != "" {
		config.Scheduler.GCSchedule = schedule
	}

	// WebSocket configuration
	if minLevel := os.Getenv("LECTIO_WEBSOCKET_MIN_LEVEL"); minLevel != "" {
		config.WebSocket.MinLevel = minLevel
	}
	if excludePatterns := os.Getenv("LECTIO_WEBSOCKET_EXCLUDE_PATTERNS"); excludePatterns != "" {
		patterns := []string{}
		for _, p := range strings.Split(excludePatterns, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				patterns = append(patterns, trimmed)
			}
		}
		if len(patterns) > 0 {
			config.WebSocket.ExcludePatterns = patterns
		}
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// ResolveAPIKey resolves an API key by name with environment variable priority.
// Resolution order: environment variables -> KV store -> config fallback -> error.
func ResolveAPIKey(ctx context.Context, kvStorage interfaces.KeyValueStorage, name string, configFallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"gemini_api_key":    {"LECTIO_GEMINI_API_KEY", "GEMINI_API_KEY"},
		"anthropic_api_key": {"LECTIO_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
		"claude_api_key":    {"LECTIO_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	// Check environment variables (highest priority)
	if envVarNames, hasMappedEnv := keyToEnvMapping[name]; hasMappedEnv {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	// Try to resolve from KV store (medium priority)
	if kvStorage != nil {
		apiKey, err := kvStorage.Get(ctx, name)
		if err == nil && apiKey != "" {
			return apiKey, nil
		}
	}

	// Fallback to config value (lowest priority)
	if configFallback != "" {
		return configFallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment, KV store, or config", name)
}

// ValidateSchedule validates a cron schedule expression
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// MaxUploadBytes returns the configured upload cap in bytes
func (c *Config) MaxUploadBytes() int64 {
	if c.Files.MaxUploadMB <= 0 {
		return 25 * 1024 * 1024
	}
	return int64(c.Files.MaxUploadMB) * 1024 * 1024
}

// PostgresDSN builds the connection string for the postgres storage backend
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}
