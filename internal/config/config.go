// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // progress snapshot expiry
}

type LLMConfig struct {
	APIURL       string        `yaml:"api_url"` // OpenAI-compatible base, e.g. https://api.openai.com/v1
	APIKey       string        `yaml:"api_key"`
	DefaultModel string        `yaml:"default_model"`
	LlamaCppURL  string        `yaml:"llama_cpp_url"` // llama.cpp server base, e.g. http://127.0.0.1:8080
	Timeout      time.Duration `yaml:"timeout"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type PDFConfig struct {
	Pdftotext     string `yaml:"pdftotext"` // binary name or absolute path
	Pdfinfo       string `yaml:"pdfinfo"`
	Pdfimages     string `yaml:"pdfimages"`
	MaxPages      int    `yaml:"max_pages"`
	ImagesPerPage int    `yaml:"images_per_page"`
}

type MediaConfig struct {
	Root string `yaml:"root"` // thumbnails are written under {root}/images
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Admin    AdminConfig    `yaml:"admin"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	LLM      LLMConfig      `yaml:"llm"`
	Fetch    FetchConfig    `yaml:"fetch"`
	PDF      PDFConfig      `yaml:"pdf"`
	Media    MediaConfig    `yaml:"media"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 8090
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = time.Hour
	}
	if cfg.LLM.APIURL == "" {
		cfg.LLM.APIURL = "https://api.openai.com/v1"
	}
	if cfg.LLM.DefaultModel == "" {
		cfg.LLM.DefaultModel = "gpt-3.5-turbo-1106"
	}
	// Completion calls block the whole batch, so the timeout stays generous
	// but bounded.
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 2 * time.Minute
	}
	if cfg.Fetch.Timeout <= 0 {
		cfg.Fetch.Timeout = 30 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "semi-agentic-knowledge-base/1.0"
	}
	if cfg.Fetch.MaxBodyBytes <= 0 {
		cfg.Fetch.MaxBodyBytes = 32 << 20
	}
	if cfg.PDF.Pdftotext == "" {
		cfg.PDF.Pdftotext = "pdftotext"
	}
	if cfg.PDF.Pdfinfo == "" {
		cfg.PDF.Pdfinfo = "pdfinfo"
	}
	if cfg.PDF.Pdfimages == "" {
		cfg.PDF.Pdfimages = "pdfimages"
	}
	if cfg.PDF.MaxPages <= 0 {
		cfg.PDF.MaxPages = 5
	}
	if cfg.PDF.ImagesPerPage <= 0 {
		cfg.PDF.ImagesPerPage = 2
	}
	if cfg.Media.Root == "" {
		cfg.Media.Root = "media"
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Redis.URL == "" {
		return nil, errors.New("redis.url is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
