package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"BOT_TOKEN"`
	// AdminIDs is the ordered administrator roster; comma separated in env.
	AdminIDs []int64 `yaml:"admin_ids" envconfig:"TELEGRAM_ADMIN_IDS"`
	RunMode  string  `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// SenderConfig tunes the asynchronous dispatcher used for replies to users.
type SenderConfig struct {
	QueueSize  int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers    int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Sender   SenderConfig   `yaml:"sender"`
}

// IsAdmin reports whether the user belongs to the administrator roster.
func (c *Config) IsAdmin(userID int64) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Telegram.AdminIDs, userID)
}

// ErrInvalid marks configuration rejected by Normalize.
var ErrInvalid = errors.New("invalid config")

func invalid(format string, args ...any) error {
	return fmt.Errorf("config: %w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	cfg := new(Config)
	if err := Decode(path, cfg); err != nil {
		return nil, err
	}
	if err := Normalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode fills dst from the YAML file at path, then lets the environment
// override it. dst may be any struct, so bots can embed Config in their own
// settings.
func Decode(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := envconfig.Process("", dst); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// Normalize validates cfg and resolves defaults in place.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return invalid("nil config")
	}
	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return invalid("telegram token is required")
	}
	if err := checkRoster(cfg.Telegram.AdminIDs); err != nil {
		return err
	}
	mode, err := runMode(cfg)
	if err != nil {
		return err
	}
	cfg.Telegram.RunMode = mode
	return checkSender(cfg.Sender)
}

func checkRoster(ids []int64) error {
	if len(ids) == 0 {
		return invalid("telegram.admin_ids must list at least one administrator")
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		switch {
		case id == 0:
			return invalid("telegram.admin_ids must not contain 0")
		case seen[id]:
			return invalid("telegram.admin_ids contains duplicate id %d", id)
		}
		seen[id] = true
	}
	return nil
}

func runMode(cfg *Config) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	switch mode {
	case "", "polling":
		mode = RunModeLongpoll
	}
	switch mode {
	case RunModeWebhook:
		wh := cfg.Webhook
		switch {
		case strings.TrimSpace(wh.URL) == "":
			return "", invalid("webhook.url is required in webhook mode")
		case strings.TrimSpace(wh.Listen) == "":
			return "", invalid("webhook.listen is required in webhook mode")
		case wh.Port <= 0:
			return "", invalid("webhook.port must be > 0 in webhook mode")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return "", invalid("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return "", invalid("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	return mode, nil
}

func checkSender(sc SenderConfig) error {
	for name, v := range map[string]int{
		"queue_size":  sc.QueueSize,
		"workers":     sc.Workers,
		"max_retries": sc.MaxRetries,
	} {
		if v < 0 {
			return invalid("sender.%s must be >= 0", name)
		}
	}
	return nil
}
