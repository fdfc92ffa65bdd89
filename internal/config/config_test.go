package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LANG", "de_DE.UTF-8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Language != "de" {
		t.Errorf("Language: got %s, want de", cfg.Language)
	}
	if cfg.DetectBackend != BackendTesseract || cfg.TranslateBackend != BackendOpenAI {
		t.Errorf("backends: got %s/%s", cfg.DetectBackend, cfg.TranslateBackend)
	}
	if cfg.Layout.MinSpacing != 25 || cfg.Layout.FontSize != 15 || cfg.Layout.CharWidthFactor != 0.65 {
		t.Errorf("layout defaults: %+v", cfg.Layout)
	}
	if cfg.Cache.Kind != CacheFile || cfg.Cache.MaxEntries != 500 {
		t.Errorf("cache defaults: %+v", cfg.Cache)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LABELINGO_LANGUAGE", "fr")
	t.Setenv("LABELINGO_DETECT_BACKEND", "Claude")
	t.Setenv("LABELINGO_TRANSLATE_BACKEND", "claude")
	t.Setenv("LABELINGO_CHAR_WIDTH_FACTOR", "0.6")
	t.Setenv("LABELINGO_CACHE_MAX_AGE", "2h")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("LABELINGO_MAX_WIDTH", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Language != "fr" {
		t.Errorf("Language: got %s", cfg.Language)
	}
	if cfg.DetectBackend != BackendClaude {
		t.Errorf("DetectBackend should be lower-cased, got %s", cfg.DetectBackend)
	}
	if cfg.Layout.CharWidthFactor != 0.6 {
		t.Errorf("CharWidthFactor: got %v", cfg.Layout.CharWidthFactor)
	}
	if cfg.Cache.MaxAge != 2*time.Hour {
		t.Errorf("MaxAge: got %v", cfg.Cache.MaxAge)
	}
	if cfg.Claude.APIKey != "sk-test" {
		t.Error("API key not read from environment")
	}
	if cfg.MaxWidth != 1200 {
		t.Errorf("invalid integer should keep the default, got %d", cfg.MaxWidth)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labelingo.yaml")
	content := `
language: ja
translate_backend: gemini
layout:
  min_spacing: 30
  separator: " = "
render:
  accent: "#1e88e5"
  distinct_colors: true
cache:
  kind: memory
  max_age: 1h
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LABELINGO_LANGUAGE", "ko")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Language != "ko" {
		t.Errorf("environment should win over the file, got %s", cfg.Language)
	}
	if cfg.TranslateBackend != BackendGemini {
		t.Errorf("TranslateBackend: got %s", cfg.TranslateBackend)
	}
	if cfg.Layout.MinSpacing != 30 || cfg.Layout.Separator != " = " {
		t.Errorf("layout from file: %+v", cfg.Layout)
	}
	if cfg.Layout.FontSize != 15 {
		t.Errorf("unset layout fields keep defaults, got font size %v", cfg.Layout.FontSize)
	}
	if cfg.Render.Accent != "#1e88e5" || !cfg.Render.DistinctColors {
		t.Errorf("render from file: %+v", cfg.Render)
	}
	if cfg.Cache.Kind != CacheMemory || cfg.Cache.MaxAge != time.Hour {
		t.Errorf("cache from file: %+v", cfg.Cache)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown detector", func(c *Config) { c.DetectBackend = "easyocr" }, true},
		{"unknown translator", func(c *Config) { c.TranslateBackend = "none" }, true},
		{"bad format", func(c *Config) { c.Format = "gif" }, true},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, true},
		{"redis without address", func(c *Config) { c.Cache.Kind = CacheRedis }, true},
		{"redis with address", func(c *Config) {
			c.Cache.Kind = CacheRedis
			c.Cache.RedisAddress = "localhost:6379"
		}, false},
		{"empty language", func(c *Config) { c.Language = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Language = "en"
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLanguageFromLocale(t *testing.T) {
	tests := map[string]string{
		"":            "en",
		"C":           "en",
		"de_DE.UTF-8": "de",
		"pt_BR":       "pt",
		"zh-Hans":     "zh",
		"ja_JP.eucJP": "ja",
	}
	for in, want := range tests {
		if got := languageFromLocale(in); got != want {
			t.Errorf("languageFromLocale(%q) = %q, want %q", in, got, want)
		}
	}
}
