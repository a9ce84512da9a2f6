package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions customises fallback behaviour for callbacks.
type CallbackOptions struct {
	// NotFound handles presses of buttons whose key is not registered,
	// e.g. menus sent by an older deployment.
	NotFound tele.HandlerFunc
}

// CallbackRoute answers every callback query and dispatches it to the
// handler registered for its unique key.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		if c.Callback() == nil {
			return nil
		}
		start := time.Now()
		key, _ := callbacks.Parse(c.Callback())
		name := "callback." + normalizeHandlerName(key)

		// stops the client spinner even if the handler fails
		_ = c.Respond()

		run, ok := reg.GetCallback(key)
		if !ok || run == nil {
			return runLogged(c, name, "skip", start, func() error {
				if opts.NotFound == nil {
					return nil
				}
				return opts.NotFound(c)
			}, slog.String("cb_key", key), slog.String("cause", "not_found"))
		}
		return runLogged(c, name, "", start, func() error {
			return run(c)
		}, slog.String("cb_key", key))
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
