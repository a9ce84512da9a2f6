package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var replies atomic.Pointer[sender.Dispatcher]

// SetDispatcher routes helper sends through d. With nil, helpers send
// synchronously on the handler goroutine.
func SetDispatcher(d *sender.Dispatcher) {
	replies.Store(d)
}

// chatKey keeps all replies to one chat on one dispatcher lane.
func chatKey(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if user := c.Sender(); user != nil {
		return user.ID
	}
	return 0
}

func dispatch(c tele.Context, action, endpoint string, run func() error) error {
	d := replies.Load()
	if d == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := d.EnqueueKeyed(ctx, chatKey(c), action, endpoint, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		// send inline rather than drop the reply
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("op", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

// SendText sends plain text to the current chat.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	return dispatch(c, "send.text", "sendMessage", func() error {
		if len(opts) > 0 && opts[0] != nil {
			return c.Send(text, opts[0])
		}
		return c.Send(text)
	})
}

// SendWithMarkup sends plain text with a keyboard attached.
func SendWithMarkup(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if markup == nil {
		return SendText(c, text)
	}
	return SendText(c, text, &tele.SendOptions{ReplyMarkup: markup})
}

// EditOrSendText replaces the message the current callback was pressed on.
// Outside a callback a new message is sent instead.
func EditOrSendText(c tele.Context, text string) error {
	return dispatch(c, "edit.text", "editMessageText", func() error {
		return c.EditOrSend(text)
	})
}
