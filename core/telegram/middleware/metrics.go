package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const countersKey = "reply_counters"

// Counters summarizes what a handler sent back for one update.
type Counters struct {
	Messages int
	Edits    int
	Keyboard bool
}

// replyCounters may be updated by dispatcher workers while the handler
// summary reads it.
type replyCounters struct {
	messages atomic.Int64
	edits    atomic.Int64
	keyboard atomic.Bool
}

// countingContext records outbound calls made through tele.Context.
type countingContext struct {
	tele.Context
	n *replyCounters
}

func withMarkup(opts []any) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		}
	}
	return false
}

func (c countingContext) count(err error, edit bool, opts []any) error {
	if err != nil {
		return err
	}
	if edit {
		c.n.edits.Add(1)
	} else {
		c.n.messages.Add(1)
	}
	if withMarkup(opts) {
		c.n.keyboard.Store(true)
	}
	return nil
}

func (c countingContext) Send(what any, opts ...any) error {
	return c.count(c.Context.Send(what, opts...), false, opts)
}

func (c countingContext) Reply(what any, opts ...any) error {
	return c.count(c.Context.Reply(what, opts...), false, opts)
}

func (c countingContext) Edit(what any, opts ...any) error {
	return c.count(c.Context.Edit(what, opts...), true, opts)
}

func (c countingContext) EditOrSend(what any, opts ...any) error {
	return c.count(c.Context.EditOrSend(what, opts...), c.Callback() != nil, opts)
}

func (c countingContext) EditOrReply(what any, opts ...any) error {
	return c.count(c.Context.EditOrReply(what, opts...), c.Callback() != nil, opts)
}

// MessageMetricsMiddleware counts replies produced while handling an update.
// Replies sent from the async dispatcher after the handler returned are
// counted too, but after the handler summary has been logged.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		n := &replyCounters{}
		c.Set(countersKey, n)
		return next(countingContext{Context: c, n: n})
	}
}

// GetCounters returns the reply counters of the current update.
func GetCounters(c tele.Context) Counters {
	n, ok := c.Get(countersKey).(*replyCounters)
	if !ok || n == nil {
		return Counters{}
	}
	return Counters{
		Messages: int(n.messages.Load()),
		Edits:    int(n.edits.Load()),
		Keyboard: n.keyboard.Load(),
	}
}
