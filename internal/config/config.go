package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/build-warden/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Logging  logger.Config  `mapstructure:"logging"`
	Database DBConfig       `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	FAS      FASConfig      `mapstructure:"fas"`
	Backends BackendsConfig `mapstructure:"backends"`

	// Admins may trigger builds regardless of their repository permissions.
	Admins []string `mapstructure:"admins"`
	// NotificationsRepo receives issues about installations awaiting approval.
	NotificationsRepo string `mapstructure:"notifications_repo"`
	// EnabledPrivateNamespaces lists "github.com/<owner>" namespaces whose
	// private repositories are served.
	EnabledPrivateNamespaces []string `mapstructure:"enabled_private_namespaces"`
	SentryDSN                string   `mapstructure:"sentry_dsn"`
}

// ServerConfig configures the webhook HTTP server.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// GitHubConfig holds the GitHub App credentials.
type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	// Token is a personal access token used by the CLI.
	Token string `mapstructure:"token"`
}

// DBConfig holds the PostgreSQL connection settings.
type DBConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds the Redis connection settings used by the redis queue.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig controls the task queue and the retry budget.
type QueueConfig struct {
	// Backend is either "memory" or "redis".
	Backend        string        `mapstructure:"backend"`
	MaxWorkers     int           `mapstructure:"max_workers"`
	RetryLimit     int           `mapstructure:"retry_limit"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// FASConfig holds the account system credentials used for automatic approval.
type FASConfig struct {
	URL      string `mapstructure:"url"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// BackendsConfig points at the downstream systems.
type BackendsConfig struct {
	CoprURL            string `mapstructure:"copr_url"`
	CoprToken          string `mapstructure:"copr_token"`
	CoprOwner          string `mapstructure:"copr_owner"`
	// CoprWebhookSecret signs build end notifications. The endpoint rejects
	// every notification while it is empty.
	CoprWebhookSecret string `mapstructure:"copr_webhook_secret"`
	KojiURL            string `mapstructure:"koji_url"`
	KojiToken          string `mapstructure:"koji_token"`
	TestingFarmURL     string `mapstructure:"testing_farm_url"`
	TestingFarmAPIKey  string `mapstructure:"testing_farm_api_key"`
	DistGitURL         string `mapstructure:"dist_git_url"`
	DistGitToken       string `mapstructure:"dist_git_token"`
	ArchiveURLTemplate string `mapstructure:"archive_url_template"`
	WorkDir            string `mapstructure:"work_dir"`
}

// MaxRetryLimit bounds queue.retry_limit; longer backoffs saturate anyway.
const MaxRetryLimit = 20

var (
	ErrMissingAppID         = errors.New("github.app_id must be set")
	ErrMissingWebhookSecret = errors.New("github.webhook_secret must be set")
)

// IsAdmin reports whether login is a configured administrator.
func (c *Config) IsAdmin(login string) bool {
	return slices.Contains(c.Admins, login)
}

// IsPrivateNamespaceEnabled reports whether private repositories of the
// namespace are served.
func (c *Config) IsPrivateNamespaceEnabled(namespace string) bool {
	return slices.Contains(c.EnabledPrivateNamespaces, namespace)
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.GitHub.AppID == 0 {
		errs = append(errs, ErrMissingAppID)
	}
	if c.GitHub.WebhookSecret == "" {
		errs = append(errs, ErrMissingWebhookSecret)
	}
	switch c.Queue.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unsupported queue backend %q", c.Queue.Backend))
	}
	if c.Queue.RetryLimit < 0 || c.Queue.RetryLimit > MaxRetryLimit {
		errs = append(errs, fmt.Errorf("queue.retry_limit must be between 0 and %d, got %d", MaxRetryLimit, c.Queue.RetryLimit))
	}
	if c.Queue.RetryBaseDelay <= 0 {
		errs = append(errs, fmt.Errorf("queue.retry_base_delay must be positive, got %s", c.Queue.RetryBaseDelay))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("github.private_key_path", "keys/build-warden.private-key.pem")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "warden")
	v.SetDefault("database.database", "build_warden")
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.conn_max_idle_time", 5*time.Minute)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("queue.backend", "memory")
	v.SetDefault("queue.max_workers", 5)
	v.SetDefault("queue.retry_limit", 2)
	v.SetDefault("queue.retry_base_delay", 15*time.Second)
	v.SetDefault("fas.url", "https://fasjson.fedoraproject.org/v1")
	v.SetDefault("notifications_repo", "packit/notifications")
	v.SetDefault("backends.copr_url", "https://copr.fedorainfracloud.org")
	v.SetDefault("backends.copr_owner", "packit")
	v.SetDefault("backends.testing_farm_url", "https://api.dev.testing-farm.io/v0.1")
	v.SetDefault("backends.dist_git_url", "https://src.fedoraproject.org/rpms")
	v.SetDefault("backends.work_dir", "/tmp/build-warden")
	// Keys without a default are not bound to the environment by viper.
	for _, key := range []string{
		"github.app_id", "github.webhook_secret", "github.token", "database.password",
		"redis.password", "redis.db", "fas.user", "fas.password", "admins",
		"enabled_private_namespaces", "sentry_dsn", "backends.copr_token", "backends.copr_webhook_secret",
		"backends.koji_url", "backends.koji_token", "backends.testing_farm_api_key",
		"backends.dist_git_token", "backends.archive_url_template",
	} {
		_ = v.BindEnv(key)
	}
}

// LoadConfig reads the configuration with Read and validates it.
func LoadConfig() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads configuration from an optional config.yaml and from
// BW_-prefixed environment variables and applies defaults. The result is
// not validated; administrative tools only need parts of it.
func Read() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/build-warden")
	v.SetEnvPrefix("BW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		slog.Debug("no config file found, using environment only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	// Lists from the environment arrive as a single space separated string.
	cfg.Admins = splitList(cfg.Admins)
	cfg.EnabledPrivateNamespaces = splitList(cfg.EnabledPrivateNamespaces)
	return &cfg, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, f)
		}
	}
	return out
}
