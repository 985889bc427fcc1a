package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration
type Config struct {
	Catalog CatalogConfig
	OCR     OCRConfig
	Store   StoreConfig
	Server  ServerConfig
	Batch   BatchConfig
	Pricing PricingConfig
}

// CatalogConfig locates the rule catalog. An empty path selects the embedded default catalog.
type CatalogConfig struct {
	Path string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Enabled       bool
	Tesseract     string `validate:"required_if=Enabled true"`
	Lang          string `validate:"required"`
	TessdataDir   string
	HeicConverter string `validate:"omitempty,oneof=heif-convert magick sips"`
	Timeout       time.Duration
}

// StoreConfig selects and configures the purchases table backend.
type StoreConfig struct {
	Driver          string `validate:"oneof=csv sqlite postgres"`
	CSVPath         string `validate:"required_if=Driver csv"`
	SQLitePath      string `validate:"required_if=Driver sqlite"`
	DSN             string `validate:"required_if=Driver postgres"`
	MaxConns        int32  `validate:"gte=0"`
	MinConns        int32  `validate:"gte=0"`
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
	ConnectAttempts uint `validate:"gte=1"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `validate:"required"`
	InboxDir string
}

// BatchConfig bounds document-level parallelism.
type BatchConfig struct {
	Workers    int `validate:"min=1,max=64"`
	QueueSize  int `validate:"min=1"`
	DocTimeout time.Duration
}

// PricingConfig points at the recipe tables used for suggested prices.
type PricingConfig struct {
	RecipesPath string
	YieldsPath  string
	MarginsPath string
}

// LoadConfig loads configuration from an optional YAML file (CONFIG_FILE) overlaid by
// environment variables. Keys are the environment variable names in both sources.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}
	if path := k.String("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		// environment wins over the file
		if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
			return nil, fmt.Errorf("loading config from environment: %w", err)
		}
	}

	return &Config{
		Catalog: CatalogConfig{
			Path: getString(k, "PVP_CATALOG_PATH", ""),
		},
		OCR: OCRConfig{
			Enabled:       getBool(k, "OCR_ENABLED", true),
			Tesseract:     getString(k, "TESSERACT_BIN", "tesseract"),
			Lang:          getString(k, "OCR_LANG", "spa+eng"),
			TessdataDir:   getString(k, "TESSDATA_PREFIX", ""),
			HeicConverter: getString(k, "HEIC_CONVERTER", "magick"),
			Timeout:       getDuration(k, "OCR_TIMEOUT", 2*time.Minute),
		},
		Store: StoreConfig{
			Driver:          strings.ToLower(getString(k, "STORE_DRIVER", "csv")),
			CSVPath:         getString(k, "PURCHASES_CSV", "data/purchases.csv"),
			SQLitePath:      getString(k, "PURCHASES_SQLITE", "data/purchases.db"),
			DSN:             getString(k, "DB_URL", ""),
			MaxConns:        int32(getInt(k, "DB_MAX_CONNS", 10)),
			MinConns:        int32(getInt(k, "DB_MIN_CONNS", 1)),
			MaxConnLifetime: getDuration(k, "DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getDuration(k, "DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getDuration(k, "DB_DIAL_TIMEOUT", 3*time.Second),
			ConnectAttempts: uint(getInt(k, "DB_CONNECT_ATTEMPTS", 3)),
		},
		Server: ServerConfig{
			GRPCAddr: getString(k, "GRPC_ADDR", ":8080"),
			InboxDir: getString(k, "INBOX_DIR", ""),
		},
		Batch: BatchConfig{
			Workers:    getInt(k, "BATCH_WORKERS", 4),
			QueueSize:  getInt(k, "BATCH_QUEUE_SIZE", 256),
			DocTimeout: getDuration(k, "DOC_TIMEOUT", 3*time.Minute),
		},
		Pricing: PricingConfig{
			RecipesPath: getString(k, "RECIPES_CSV", "data/recipes.csv"),
			YieldsPath:  getString(k, "YIELDS_CSV", "data/ingredients_yield.csv"),
			MarginsPath: getString(k, "MARGINS_CSV", "data/category_margins.csv"),
		},
	}, nil
}

// Helper functions for koanf lookups with defaults
func getString(k *koanf.Koanf, key, defaultValue string) string {
	if value := strings.TrimSpace(k.String(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(k *koanf.Koanf, key string, defaultValue int) int {
	if !k.Exists(key) || k.String(key) == "" {
		return defaultValue
	}
	return k.Int(key)
}

func getBool(k *koanf.Koanf, key string, defaultValue bool) bool {
	if !k.Exists(key) || k.String(key) == "" {
		return defaultValue
	}
	return k.Bool(key)
}

func getDuration(k *koanf.Koanf, key string, defaultValue time.Duration) time.Duration {
	if !k.Exists(key) || k.String(key) == "" {
		return defaultValue
	}
	if d := k.Duration(key); d > 0 {
		return d
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	return nil
}
