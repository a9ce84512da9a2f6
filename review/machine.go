package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Command is a recognized text trigger.
type Command int

const (
	CommandNone Command = iota
	CommandSubmit
	CommandClear
)

// ParseCommand matches text case-insensitively against the submit and clear
// triggers by prefix. Any other text is review content.
func ParseCommand(text string) Command {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return CommandNone
	case strings.HasPrefix(t, strings.ToLower(TriggerSubmit)):
		return CommandSubmit
	case strings.HasPrefix(t, strings.ToLower(TriggerClear)):
		return CommandClear
	}
	return CommandNone
}

// Machine is the conversation state machine. Step is a pure function of the
// current session and the event apart from review id generation.
type Machine struct {
	catalog Catalog
	newID   func() string
}

// NewMachine builds a machine offering the given catalog. A nil id
// generator defaults to random UUIDs.
func NewMachine(catalog Catalog, newID func() string) *Machine {
	if newID == nil {
		newID = uuid.NewString
	}
	return &Machine{catalog: catalog, newID: newID}
}

// Catalog returns the bonus catalog offered by the machine.
func (m *Machine) Catalog() Catalog {
	return m.catalog
}

// Step computes the next session and the outbound actions for ev. The input
// session is never modified; nil means the user is unregistered. Domain
// errors are resolved here into acknowledgments.
func (m *Machine) Step(current *Session, ev Event) (*Session, []Action) {
	uid := ev.UserID()

	switch e := ev.(type) {
	case Start:
		return current, reply(uid, textGreeting, KeyboardContact)

	case ContactShared:
		return NewSession(e.Phone), reply(uid, textRegistered, KeyboardReview)

	case TextReceived:
		switch ParseCommand(e.Text) {
		case CommandSubmit:
			return m.confirm(current, uid)
		case CommandClear:
			return m.clear(current, uid)
		}
		return m.appendItem(current, uid, Text{Body: e.Text})

	case ContentReceived:
		if e.Item == nil {
			return current, nil
		}
		return m.appendItem(current, uid, e.Item)

	case BonusSelected:
		return m.chooseBonus(current, uid, e.Label)
	}
	return current, nil
}

func (m *Machine) appendItem(current *Session, uid int64, item Item) (*Session, []Action) {
	if current == nil {
		return nil, errorReply(uid, ErrNotRegistered, "")
	}
	next := current.Clone()
	next.appendContent(item)
	return next, reply(uid, textAdded, KeyboardNone)
}

func (m *Machine) confirm(current *Session, uid int64) (*Session, []Action) {
	if current == nil {
		return nil, errorReply(uid, ErrNotRegistered, "")
	}
	next := current.Clone()
	batch, err := next.takeSentBatch(m.newID())
	if err != nil {
		return current, errorReply(uid, err, textNothingToSend)
	}
	return next, []Action{
		Dispatch{Payload: Batch{
			ReviewID: next.ReviewID,
			User:     uid,
			Phone:    next.Phone,
			Items:    batch,
		}},
		Reply{User: uid, Text: textThanks, Keyboard: KeyboardRemove},
		OfferBonusMenu{User: uid, Text: textBonusMenu, Labels: m.catalog.Labels()},
	}
}

func (m *Machine) clear(current *Session, uid int64) (*Session, []Action) {
	if current == nil {
		return nil, errorReply(uid, ErrNotRegistered, "")
	}
	next := current.Clone()
	if err := next.clearMessages(); err != nil {
		return current, errorReply(uid, err, textNothingToClear)
	}
	return next, reply(uid, textCleared, KeyboardNone)
}

func (m *Machine) chooseBonus(current *Session, uid int64, label string) (*Session, []Action) {
	if current == nil {
		return nil, errorReply(uid, ErrNotRegistered, "")
	}
	next := current.Clone()
	if err := next.recordBonus(label); err != nil {
		return current, errorReply(uid, err, "")
	}
	if !m.catalog.Contains(label) {
		return current, errorReply(uid, ErrUnknownBonus, "")
	}
	notice := BonusNotice{
		ReviewID: next.ReviewID,
		User:     uid,
		Phone:    next.Phone,
		Label:    next.Bonus,
	}
	next.resetAfterBonus()
	return next, []Action{
		Dispatch{Payload: notice},
		Reply{User: uid, Text: fmt.Sprintf(textBonusChosen, label), Replace: true},
	}
}

func reply(uid int64, text string, kb Keyboard) []Action {
	return []Action{Reply{User: uid, Text: text, Keyboard: kb}}
}

// errorReply maps a domain error to its acknowledgment. emptyText selects
// the wording for ErrEmptyReview, which differs between confirm and clear.
func errorReply(uid int64, err error, emptyText string) []Action {
	var text string
	switch {
	case errors.Is(err, ErrNotRegistered):
		text = textShareFirst
	case errors.Is(err, ErrEmptyReview):
		text = emptyText
	case errors.Is(err, ErrNoPendingReview):
		text = textSendReviewFirst
	case errors.Is(err, ErrUnknownBonus):
		text = textBonusUnknown
	default:
		text = err.Error()
	}
	return reply(uid, text, KeyboardNone)
}
