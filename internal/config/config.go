package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	apperrors "github.com/g30r93g/PRereq/internal/errors"
)

type (
	Config struct {
		Language string        `json:"language"`
		Server   ServerConfig  `json:"server"`
		GitHub   GitHubConfig  `json:"github"`
		Storage  StorageConfig `json:"storage"`
		Graph    GraphConfig   `json:"graph"`
		Checks   ChecksConfig  `json:"checks"`
		Cache    CacheConfig   `json:"cache"`

		PathFile string `json:"-"`
	}

	ServerConfig struct {
		Addr          string `json:"addr"`
		WebhookPath   string `json:"webhook_path"`
		WebhookSecret string `json:"webhook_secret,omitempty"`
	}

	GitHubConfig struct {
		Token          string `json:"token,omitempty"`
		AppID          int64  `json:"app_id,omitempty"`
		PrivateKeyPath string `json:"private_key_path,omitempty"`
		BaseURL        string `json:"base_url,omitempty"`
	}

	StorageConfig struct {
		Driver string `json:"driver"` // "sqlite", "postgres" or "memory"
		DSN    string `json:"dsn,omitempty"`
	}

	GraphConfig struct {
		MaxCycleNodes int `json:"max_cycle_nodes"`
		// StatusConcurrency caps parallel dependency status lookups per evaluation.
		StatusConcurrency int `json:"status_concurrency"`
	}

	ChecksConfig struct {
		Name         string   `json:"name"`
		BypassLabels []string `json:"bypass_labels"`
	}

	CacheConfig struct {
		Size int      `json:"size"`
		TTL  Duration `json:"ttl"`
	}
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultDir           = ".prereq"
	defaultFile          = "config.json"
	defaultAddr          = ":3000"
	defaultWebhookPath   = "/api/github/webhooks"
	defaultDBFile        = "prereq.db"
	defaultMaxCycleNodes = 200
	defaultConcurrency   = 8
	defaultCheckName     = "PRereq Checks"
	defaultCacheSize     = 1024
	defaultCacheTTL      = 10 * time.Minute
)

var defaultBypassLabels = []string{"prereq:deps", "skip-prereq"}

// DefaultPath is ~/.prereq/config.json, or ./.prereq/config.json when the
// home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, defaultDir, defaultFile)
}

func Default(path string) *Config {
	return &Config{
		Language: LangEN,
		Server: ServerConfig{
			Addr:        defaultAddr,
			WebhookPath: defaultWebhookPath,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    filepath.Join(filepath.Dir(path), defaultDBFile),
		},
		Graph: GraphConfig{
			MaxCycleNodes:     defaultMaxCycleNodes,
			StatusConcurrency: defaultConcurrency,
		},
		Checks: ChecksConfig{
			Name:         defaultCheckName,
			BypassLabels: append([]string(nil), defaultBypassLabels...),
		},
		Cache: CacheConfig{
			Size: defaultCacheSize,
			TTL:  Duration(defaultCacheTTL),
		},
		PathFile: path,
	}
}

// LoadConfig reads path (DefaultPath when empty), then applies .env and
// environment overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	config := Default(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, apperrors.ErrConfigRead.WithError(fmt.Errorf("decode %s: %w", path, err))
		}
		config.PathFile = path
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, apperrors.ErrConfigRead.WithError(err)
	}

	_ = godotenv.Load()

	if err := applyEnv(config); err != nil {
		return nil, apperrors.ErrConfigInvalid.WithError(err)
	}

	if err := validateConfig(config); err != nil {
		return nil, apperrors.ErrConfigInvalid.WithError(err)
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return apperrors.ErrConfigInvalid.WithError(err)
	}

	if config.PathFile == "" {
		return errors.New("config file path is not set")
	}

	if err := os.MkdirAll(filepath.Dir(config.PathFile), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}

	if err := os.WriteFile(config.PathFile, data, 0600); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	return nil
}

func applyEnv(config *Config) error {
	config.Language = firstNonEmpty(env("PREREQ_LANGUAGE"), config.Language)

	config.Server.Addr = firstNonEmpty(env("PREREQ_ADDR"), config.Server.Addr)
	config.Server.WebhookPath = firstNonEmpty(env("PREREQ_WEBHOOK_PATH"), config.Server.WebhookPath)
	config.Server.WebhookSecret = firstNonEmpty(env("PREREQ_WEBHOOK_SECRET"), env("WEBHOOK_SECRET"), config.Server.WebhookSecret)

	config.GitHub.Token = firstNonEmpty(env("PREREQ_GITHUB_TOKEN"), env("GITHUB_TOKEN"), config.GitHub.Token)
	config.GitHub.PrivateKeyPath = firstNonEmpty(env("PREREQ_GITHUB_PRIVATE_KEY_PATH"), env("PRIVATE_KEY_PATH"), config.GitHub.PrivateKeyPath)
	config.GitHub.BaseURL = firstNonEmpty(env("PREREQ_GITHUB_BASE_URL"), config.GitHub.BaseURL)
	if v := firstNonEmpty(env("PREREQ_GITHUB_APP_ID"), env("APP_ID")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid app id %q: %w", v, err)
		}
		config.GitHub.AppID = id
	}

	config.Storage.Driver = firstNonEmpty(env("PREREQ_STORAGE_DRIVER"), config.Storage.Driver)
	config.Storage.DSN = firstNonEmpty(env("PREREQ_STORAGE_DSN"), env("DATABASE_URL"), config.Storage.DSN)

	if v := env("PREREQ_MAX_CYCLE_NODES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREREQ_MAX_CYCLE_NODES %q: %w", v, err)
		}
		config.Graph.MaxCycleNodes = n
	}
	if v := env("PREREQ_STATUS_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREREQ_STATUS_CONCURRENCY %q: %w", v, err)
		}
		config.Graph.StatusConcurrency = n
	}

	config.Checks.Name = firstNonEmpty(env("PREREQ_CHECK_NAME"), config.Checks.Name)
	if v := env("PREREQ_BYPASS_LABELS"); v != "" {
		config.Checks.BypassLabels = splitList(v)
	}

	if v := env("PREREQ_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PREREQ_CACHE_SIZE %q: %w", v, err)
		}
		config.Cache.Size = n
	}
	if v := env("PREREQ_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PREREQ_CACHE_TTL %q: %w", v, err)
		}
		config.Cache.TTL = Duration(d)
	}

	return nil
}

func validateConfig(config *Config) error {
	if !isSupportedLanguage(config.Language) {
		return fmt.Errorf("unsupported language: %s", config.Language)
	}

	switch config.Storage.Driver {
	case DriverSQLite, DriverPostgres:
		if config.Storage.DSN == "" {
			return fmt.Errorf("storage driver %s requires a dsn", config.Storage.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver: %s", config.Storage.Driver)
	}

	if config.Graph.MaxCycleNodes <= 0 {
		return errors.New("graph.max_cycle_nodes must be greater than 0")
	}
	if config.Graph.StatusConcurrency <= 0 {
		return errors.New("graph.status_concurrency must be greater than 0")
	}
	if config.Checks.Name == "" {
		return errors.New("checks.name cannot be empty")
	}
	if config.Cache.Size < 0 {
		return errors.New("cache.size cannot be negative")
	}
	if config.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if config.GitHub.AppID != 0 && config.GitHub.PrivateKeyPath == "" {
		return errors.New("github.app_id requires github.private_key_path")
	}

	return nil
}

// HasAppCredentials reports whether GitHub App authentication is configured.
func (c *Config) HasAppCredentials() bool {
	return c.GitHub.AppID != 0 && c.GitHub.PrivateKeyPath != ""
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
