package router

import (
	"time"

	tg "github.com/m3rciful/reviewbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// MessageHandlers binds message kinds to handlers. Nil handlers leave the
// kind unrouted.
type MessageHandlers struct {
	Text      tele.HandlerFunc
	Contact   tele.HandlerFunc
	Photo     tele.HandlerFunc
	Video     tele.HandlerFunc
	VideoNote tele.HandlerFunc
}

// MessageRoutes builds handlers for plain messages. Text matching a
// registered command or alias is routed to that command first.
func MessageRoutes(reg *tg.Registry, h MessageHandlers) []tg.Route {
	text := func(c tele.Context) error {
		start := time.Now()
		if reg != nil {
			// admin-only commands are reachable through their own route only
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return runLogged(c, normalizeHandlerName(key), "", start, func() error {
					return cmd.Handler(c)
				})
			}
		}
		if h.Text == nil {
			return runLogged(c, "unknown_text", "skip", start, func() error { return nil })
		}
		return runLogged(c, "message.text", "", start, func() error {
			return h.Text(c)
		})
	}

	routes := []tg.Route{{Endpoint: tele.OnText, Handler: text}}
	for _, r := range []struct {
		endpoint string
		name     string
		handler  tele.HandlerFunc
	}{
		{tele.OnContact, "message.contact", h.Contact},
		{tele.OnPhoto, "message.photo", h.Photo},
		{tele.OnVideo, "message.video", h.Video},
		{tele.OnVideoNote, "message.video_note", h.VideoNote},
	} {
		if r.handler != nil {
			routes = append(routes, tg.Route{Endpoint: r.endpoint, Handler: logged(r.name, r.handler)})
		}
	}
	return routes
}

func logged(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		return runLogged(c, name, "", time.Now(), func() error {
			return h(c)
		})
	}
}
