package tgbot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/reviewbot/review"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const baseYAML = `
telegram:
  token: "t"
  admin_ids: [100, 200]
`

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeYAML(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, review.DefaultBonuses, cfg.Review.Bonuses)
	assert.Equal(t, 72*time.Hour, cfg.Review.TTL())
	assert.Equal(t, 10*time.Minute, cfg.Review.SweepInterval)
	assert.False(t, cfg.Review.AllowGroups)
	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, []int64{100, 200}, cfg.Telegram.AdminIDs)
	assert.True(t, cfg.IsAdmin(200))
}

func TestLoadConfigReviewSection(t *testing.T) {
	cfg, err := LoadConfig(writeYAML(t, baseYAML+`
review:
  bonuses: ["Massage", "Facial"]
  session_ttl: "0s"
  sweep_interval: "1m"
  allow_groups: true
database:
  host: db
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Massage", "Facial"}, cfg.Review.Bonuses)
	assert.Zero(t, cfg.Review.TTL())
	assert.Equal(t, time.Minute, cfg.Review.SweepInterval)
	assert.True(t, cfg.Review.AllowGroups)
	assert.True(t, cfg.Database.Enabled())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("REVIEW_BONUSES", "Spa,Sauna")
	t.Setenv("REVIEW_SESSION_TTL", "2h")
	t.Setenv("TELEGRAM_ADMIN_IDS", "7")

	cfg, err := LoadConfig(writeYAML(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Spa", "Sauna"}, cfg.Review.Bonuses)
	assert.Equal(t, 2*time.Hour, cfg.Review.TTL())
	assert.Equal(t, []int64{7}, cfg.Telegram.AdminIDs)
}

func TestNormalizeRejectsReviewSettings(t *testing.T) {
	cases := map[string]string{
		"duplicate bonus":   "review:\n  bonuses: [\"A\", \"A\"]\n",
		"long bonus":        "review:\n  bonuses: [\"" + strings.Repeat("б", 30) + "\"]\n",
		"negative ttl":      "review:\n  session_ttl: \"-1h\"\n",
		"negative interval": "review:\n  sweep_interval: \"-1s\"\n",
		"no admins":         "telegram:\n  token: \"t\"\n",
	}
	for name, extra := range cases {
		t.Run(name, func(t *testing.T) {
			body := baseYAML + extra
			if name == "no admins" {
				body = extra
			}
			_, err := LoadConfig(writeYAML(t, body))
			assert.Error(t, err)
		})
	}
}

func TestBonusCallbackDataFits(t *testing.T) {
	for _, label := range review.DefaultBonuses {
		assert.LessOrEqual(t, len(bonusCallbackData(label)), maxCallbackData, label)
	}
}
