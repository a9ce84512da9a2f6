// Package keyboard builds the reply and inline markups attached to bot messages.
package keyboard

import tele "gopkg.in/telebot.v4"

// Choice is one inline button. Payload travels back in the callback data.
type Choice struct {
	Label   string
	Payload string
}

// Hide removes the custom reply keyboard from the chat.
func Hide() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ShareContact is a one-time keyboard whose only button sends the user's
// phone number.
func ShareContact(label string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: true}
	m.Reply(m.Row(m.Contact(label)))
	return m
}

// Column is a persistent reply keyboard with one text button per row.
func Column(labels ...string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	rows := make([]tele.Row, len(labels))
	for i, label := range labels {
		rows[i] = m.Row(m.Text(label))
	}
	m.Reply(rows...)
	return m
}

// InlineColumn stacks choices one per row under the callback key unique.
func InlineColumn(unique string, choices []Choice) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{}
	rows := make([]tele.Row, len(choices))
	for i, ch := range choices {
		rows[i] = m.Row(m.Data(ch.Label, unique, ch.Payload))
	}
	m.Inline(rows...)
	return m
}
