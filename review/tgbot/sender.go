package tgbot

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/m3rciful/reviewbot/review/fanout"

	tele "gopkg.in/telebot.v4"
)

// ErrBotNotBound is returned by BotSender before the bot is started.
var ErrBotNotBound = errors.New("tgbot: bot not bound")

// API is the part of *tele.Bot used for administrator notifications.
type API interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// BotSender delivers fan-out notifications through the Telegram Bot API.
// The bot is created by the runtime, so it is bound after construction.
type BotSender struct {
	api atomic.Pointer[API]
}

// Bind sets the API used by subsequent sends.
func (s *BotSender) Bind(api API) {
	if api == nil {
		s.api.Store(nil)
		return
	}
	s.api.Store(&api)
}

// Send implements fanout.Sender.
func (s *BotSender) Send(ctx context.Context, n fanout.Notify) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	api := s.api.Load()
	if api == nil {
		return ErrBotNotBound
	}
	_, err := (*api).Send(tele.ChatID(n.AdminID), notifyContent(n))
	return err
}

func notifyContent(n fanout.Notify) any {
	switch n.Kind {
	case fanout.KindPhoto:
		return &tele.Photo{File: tele.File{FileID: n.FileID}, Caption: n.Caption}
	case fanout.KindVideo:
		return &tele.Video{File: tele.File{FileID: n.FileID}, Caption: n.Caption}
	case fanout.KindVideoNote:
		return &tele.VideoNote{File: tele.File{FileID: n.FileID}}
	}
	return n.Text
}
