package tgbot

import (
	"fmt"
	"time"

	coreconfig "github.com/m3rciful/reviewbot/core/config"
	coredatabase "github.com/m3rciful/reviewbot/core/database"
	"github.com/m3rciful/reviewbot/review"
)

const (
	defaultSessionTTL    = 72 * time.Hour
	defaultSweepInterval = 10 * time.Minute

	// Telegram limits callback data to 64 bytes.
	maxCallbackData = 64
)

// ReviewConfig tunes the conversation.
type ReviewConfig struct {
	// Bonuses is the ordered bonus menu; comma separated in env.
	Bonuses []string `yaml:"bonuses" envconfig:"REVIEW_BONUSES"`
	// SessionTTL evicts sessions idle for longer; "0s" keeps them forever.
	SessionTTL    *time.Duration `yaml:"session_ttl" envconfig:"REVIEW_SESSION_TTL"`
	SweepInterval time.Duration  `yaml:"sweep_interval" envconfig:"REVIEW_SWEEP_INTERVAL"`
	// AllowGroups lets the bot answer outside private chats.
	AllowGroups bool `yaml:"allow_groups" envconfig:"REVIEW_ALLOW_GROUPS"`
}

// TTL returns the effective idle timeout. Zero disables eviction.
func (c ReviewConfig) TTL() time.Duration {
	if c.SessionTTL == nil {
		return defaultSessionTTL
	}
	return *c.SessionTTL
}

// Config is the full bot configuration: the core sections plus the review
// and optional database sections.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Review   ReviewConfig        `yaml:"review"`
	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig implements the core runner's config carrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads path, applies the environment and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates cfg and fills review defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return err
	}

	rc := &cfg.Review
	if len(rc.Bonuses) == 0 {
		rc.Bonuses = append([]string(nil), review.DefaultBonuses...)
	}
	catalog, err := review.NewCatalog(rc.Bonuses...)
	if err != nil {
		return fmt.Errorf("review.bonuses: %w", err)
	}
	for _, label := range catalog.Labels() {
		if n := len(bonusCallbackData(label)); n > maxCallbackData {
			return fmt.Errorf("review.bonuses: label %q is %d bytes of callback data, max %d", label, n, maxCallbackData)
		}
	}
	rc.Bonuses = catalog.Labels()

	if rc.SessionTTL == nil {
		ttl := defaultSessionTTL
		rc.SessionTTL = &ttl
	}
	if *rc.SessionTTL < 0 {
		return fmt.Errorf("review.session_ttl must be >= 0")
	}
	switch {
	case rc.SweepInterval < 0:
		return fmt.Errorf("review.sweep_interval must be >= 0")
	case rc.SweepInterval == 0:
		rc.SweepInterval = defaultSweepInterval
	}
	return nil
}
