package telegram

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/reviewbot/core/config"

	tele "gopkg.in/telebot.v4"
)

const defaultLongPollTimeout = 10 * time.Second

// AllowedUpdates lists the update kinds the bot subscribes to. Everything
// else is filtered out by Telegram.
var AllowedUpdates = []string{"message", "callback_query"}

// WebhookOptions declares webhook listener settings.
type WebhookOptions struct {
	Listen string
	Port   int
	URL    string
}

// PollerOptions configures BuildPoller.
type PollerOptions struct {
	RunMode                string
	LongPollTimeoutSeconds int
	Webhook                WebhookOptions
}

// BuildPoller returns a Telebot poller based on provided options.
func BuildPoller(opts PollerOptions) tele.Poller {
	runMode := strings.ToLower(strings.TrimSpace(opts.RunMode))
	if runMode == coreconfig.RunModeWebhook {
		return &tele.Webhook{
			Listen:         fmt.Sprintf("%s:%d", opts.Webhook.Listen, opts.Webhook.Port),
			Endpoint:       &tele.WebhookEndpoint{PublicURL: opts.Webhook.URL},
			AllowedUpdates: AllowedUpdates,
		}
	}

	return &tele.LongPoller{
		Timeout:        PollTimeout(opts),
		AllowedUpdates: AllowedUpdates,
	}
}

// PollTimeout is how long getUpdates may wait for updates; zero in webhook mode.
func PollTimeout(opts PollerOptions) time.Duration {
	if strings.EqualFold(strings.TrimSpace(opts.RunMode), coreconfig.RunModeWebhook) {
		return 0
	}
	if opts.LongPollTimeoutSeconds > 0 {
		return time.Duration(opts.LongPollTimeoutSeconds) * time.Second
	}
	return defaultLongPollTimeout
}
