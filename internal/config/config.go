// Package config loads labelingo settings from .env, the environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/labelingo/internal/cache"
	"github.com/ironsheep/labelingo/internal/layout"
	"github.com/ironsheep/labelingo/internal/render"
)

// Backend names.
const (
	BackendTesseract = "tesseract"
	BackendClaude    = "claude"
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendNone      = "none"
)

// Cache kinds.
const (
	CacheFile   = "file"
	CacheRedis  = "redis"
	CacheMemory = "memory"
	CacheNone   = "none"
)

type Config struct {
	Language         string `yaml:"language" validate:"required,min=2,max=8"`
	SourceLanguage   string `yaml:"source_language" validate:"omitempty,min=2,max=8"`
	DetectBackend    string `yaml:"detect_backend" validate:"oneof=tesseract claude gemini none"`
	TranslateBackend string `yaml:"translate_backend" validate:"oneof=openai gemini claude"`
	Format           string `yaml:"format" validate:"oneof=svg png pdf"`

	MaxWidth          int     `yaml:"max_width" validate:"gt=0"`
	MaxHeight         int     `yaml:"max_height" validate:"gt=0"`
	Concurrency       int     `yaml:"concurrency" validate:"gte=1,lte=64"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`

	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFile  string `yaml:"log_file"`

	AWSRegion string `yaml:"aws_region"`

	Cache  CacheConfig    `yaml:"cache"`
	OpenAI ProviderConfig `yaml:"openai"`
	Gemini ProviderConfig `yaml:"gemini"`
	Claude ProviderConfig `yaml:"claude"`

	Layout layout.Options `yaml:"layout"`
	Render render.Options `yaml:"render"`
}

type CacheConfig struct {
	Kind          string        `yaml:"kind" validate:"oneof=file redis memory none"`
	Dir           string        `yaml:"dir"`
	MaxEntries    int           `yaml:"max_entries" validate:"gte=1"`
	MaxAge        time.Duration `yaml:"max_age" validate:"gt=0"`
	RedisAddress  string        `yaml:"redis_address" validate:"required_if=Kind redis"`
	RedisPassword string        `yaml:"-"`
	RedisDB       int           `yaml:"redis_db" validate:"gte=0"`
}

// Policy returns the cache eviction policy.
func (c CacheConfig) Policy() cache.Policy {
	return cache.Policy{MaxEntries: c.MaxEntries, MaxAge: c.MaxAge}
}

// ProviderConfig holds credentials and model for a hosted backend. API keys are only
// read from the environment.
type ProviderConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	cacheDir, err := cache.DefaultDir()
	if err != nil {
		cacheDir = ".labelingo-cache"
	}
	return &Config{
		Language:          languageFromLocale(os.Getenv("LANG")),
		DetectBackend:     BackendTesseract,
		TranslateBackend:  BackendOpenAI,
		Format:            "svg",
		MaxWidth:          1200,
		MaxHeight:         1600,
		Concurrency:       4,
		RequestsPerSecond: 2,
		LogLevel:          "info",
		Cache: CacheConfig{
			Kind:       CacheFile,
			Dir:        cacheDir,
			MaxEntries: cache.DefaultMaxEntries,
			MaxAge:     cache.DefaultMaxAge,
		},
		OpenAI: ProviderConfig{Model: "gpt-4o-mini"},
		Gemini: ProviderConfig{Model: "gemini-1.5-flash"},
		Claude: ProviderConfig{Model: "claude-3-5-sonnet-20241022"},
		Layout: layout.DefaultOptions(),
		Render: render.DefaultOptions(),
	}
}

// Load builds the configuration. Sources are applied in order, later ones winning:
// built-in defaults, the YAML file at path (or $LABELINGO_CONFIG), then environment
// variables, including those from a .env file in the working directory. The result
// is validated.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Defaults()

	if path == "" {
		path = os.Getenv("LABELINGO_CONFIG")
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Language = getEnv("LABELINGO_LANGUAGE", c.Language)
	c.SourceLanguage = getEnv("LABELINGO_SOURCE_LANGUAGE", c.SourceLanguage)
	c.DetectBackend = strings.ToLower(getEnv("LABELINGO_DETECT_BACKEND", c.DetectBackend))
	c.TranslateBackend = strings.ToLower(getEnv("LABELINGO_TRANSLATE_BACKEND", c.TranslateBackend))
	c.Format = strings.ToLower(getEnv("LABELINGO_FORMAT", c.Format))
	c.MaxWidth = getEnvInt("LABELINGO_MAX_WIDTH", c.MaxWidth)
	c.MaxHeight = getEnvInt("LABELINGO_MAX_HEIGHT", c.MaxHeight)
	c.Concurrency = getEnvInt("LABELINGO_CONCURRENCY", c.Concurrency)
	c.RequestsPerSecond = getEnvFloat("LABELINGO_REQUESTS_PER_SECOND", c.RequestsPerSecond)
	c.LogLevel = strings.ToLower(getEnv("LABELINGO_LOG_LEVEL", c.LogLevel))
	c.LogFile = getEnv("LABELINGO_LOG_FILE", c.LogFile)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)

	c.Cache.Kind = strings.ToLower(getEnv("LABELINGO_CACHE", c.Cache.Kind))
	c.Cache.Dir = getEnv("LABELINGO_CACHE_DIR", c.Cache.Dir)
	c.Cache.MaxEntries = getEnvInt("LABELINGO_CACHE_MAX_ENTRIES", c.Cache.MaxEntries)
	c.Cache.MaxAge = getEnvDuration("LABELINGO_CACHE_MAX_AGE", c.Cache.MaxAge)
	c.Cache.RedisAddress = getEnv("REDIS_ADDRESS", c.Cache.RedisAddress)
	c.Cache.RedisPassword = getEnv("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.RedisDB = getEnvInt("REDIS_DB", c.Cache.RedisDB)

	c.OpenAI.APIKey = getEnv("OPENAI_API_KEY", c.OpenAI.APIKey)
	c.OpenAI.Model = getEnv("OPENAI_MODEL", c.OpenAI.Model)
	c.Gemini.APIKey = getEnv("GEMINI_API_KEY", c.Gemini.APIKey)
	c.Gemini.Model = getEnv("GEMINI_MODEL_NAME", c.Gemini.Model)
	c.Claude.APIKey = getEnv("ANTHROPIC_API_KEY", c.Claude.APIKey)
	c.Claude.Model = getEnv("CLAUDE_MODEL", c.Claude.Model)

	c.Layout.FontSize = getEnvFloat("LABELINGO_FONT_SIZE", c.Layout.FontSize)
	c.Layout.CharWidthFactor = getEnvFloat("LABELINGO_CHAR_WIDTH_FACTOR", c.Layout.CharWidthFactor)
	c.Layout.MinSpacing = getEnvFloat("LABELINGO_MIN_SPACING", c.Layout.MinSpacing)
	c.Render.Accent = getEnv("LABELINGO_ACCENT", c.Render.Accent)
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// languageFromLocale turns a POSIX locale such as "de_DE.UTF-8" into "de".
func languageFromLocale(locale string) string {
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "en"
	}
	lang := strings.ToLower(strings.SplitN(locale, ".", 2)[0])
	lang = strings.SplitN(lang, "_", 2)[0]
	lang = strings.SplitN(lang, "-", 2)[0]
	if len(lang) < 2 {
		return "en"
	}
	return lang
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
