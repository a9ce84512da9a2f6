package tgbot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m3rciful/reviewbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/reviewbot/core/telegram/helpers"
	"github.com/m3rciful/reviewbot/core/telegram/keyboard"
	"github.com/m3rciful/reviewbot/review"

	tele "gopkg.in/telebot.v4"
)

// BonusUnique is the callback key of bonus menu buttons; the payload is the label.
const BonusUnique = "bonus"

const statsFormat = "Сессии: %d\nСобирают отзыв: %d\nОжидают бонус: %d\nСообщений в черновиках: %d\nОшибок рассылки: %d"

func bonusCallbackData(label string) string {
	return "\f" + BonusUnique + callbacks.Sep + label
}

// handlers translates Telegram updates into review events and executes the
// resulting actions against the current chat.
type handlers struct {
	svc *review.Service
	// fanoutErrors reports failed administrator jobs for /stats.
	fanoutErrors func() uint64
}

func (h *handlers) handle(c tele.Context, ev review.Event) error {
	ctx := tghelpers.BuildContext(c)
	return execute(c, h.svc.Handle(ctx, ev))
}

func (h *handlers) start(c tele.Context) error {
	return h.handle(c, review.Start{User: c.Sender().ID})
}

func (h *handlers) contact(c tele.Context) error {
	ct := c.Message().Contact
	if ct == nil || strings.TrimSpace(ct.PhoneNumber) == "" {
		return nil
	}
	return h.handle(c, review.ContactShared{User: c.Sender().ID, Phone: strings.TrimSpace(ct.PhoneNumber)})
}

func (h *handlers) text(c tele.Context) error {
	return h.handle(c, review.TextReceived{User: c.Sender().ID, Text: c.Text()})
}

func (h *handlers) media(c tele.Context) error {
	item := itemOf(c.Message())
	if item == nil {
		return nil
	}
	return h.handle(c, review.ContentReceived{User: c.Sender().ID, Item: item})
}

func (h *handlers) bonus(c tele.Context) error {
	label := callbacks.CallbackPayload(c)
	return h.handle(c, review.BonusSelected{User: c.Sender().ID, Label: label})
}

func (h *handlers) stats(c tele.Context) error {
	st := h.svc.Registry().Stats()
	var failed uint64
	if h.fanoutErrors != nil {
		failed = h.fanoutErrors()
	}
	return tghelpers.SendText(c, fmt.Sprintf(statsFormat,
		st.Sessions, st.Collecting, st.AwaitingBonus, st.PendingItems, failed))
}

// itemOf extracts the review item carried by a media message.
func itemOf(m *tele.Message) review.Item {
	if m == nil {
		return nil
	}
	switch {
	case m.Photo != nil:
		return review.Photo{FileID: m.Photo.FileID, Caption: m.Caption}
	case m.Video != nil:
		return review.Video{FileID: m.Video.FileID, Caption: m.Caption}
	case m.VideoNote != nil:
		return review.VideoNote{FileID: m.VideoNote.FileID}
	}
	return nil
}

func execute(c tele.Context, actions []review.Action) error {
	var errs []error
	for _, a := range actions {
		var err error
		switch a := a.(type) {
		case review.Reply:
			if a.Replace {
				err = tghelpers.EditOrSendText(c, a.Text)
			} else {
				err = tghelpers.SendWithMarkup(c, a.Text, markupFor(a.Keyboard))
			}
		case review.OfferBonusMenu:
			err = tghelpers.SendWithMarkup(c, a.Text, bonusMenu(a.Labels))
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func markupFor(kb review.Keyboard) *tele.ReplyMarkup {
	switch kb {
	case review.KeyboardContact:
		return keyboard.ShareContact(review.ButtonShareContact)
	case review.KeyboardReview:
		return keyboard.Column(review.ButtonSubmit, review.ButtonClear)
	case review.KeyboardRemove:
		return keyboard.Hide()
	}
	return nil
}

func bonusMenu(labels []string) *tele.ReplyMarkup {
	choices := make([]keyboard.Choice, len(labels))
	for i, label := range labels {
		choices[i] = keyboard.Choice{Label: review.BonusButtonPrefix + label, Payload: label}
	}
	return keyboard.InlineColumn(BonusUnique, choices)
}
