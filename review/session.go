package review

import "slices"

// Phase is the conversation state derived from a session.
type Phase string

const (
	PhaseUnregistered  Phase = "unregistered"
	PhaseCollecting    Phase = "collecting"
	PhaseAwaitingBonus Phase = "awaiting_bonus"
)

// Session is the per-user review record.
//
// Messages holds input that is not confirmed yet. Sent holds the last batch
// already delivered to administrators and awaiting a bonus choice; ReviewID
// identifies that batch. An empty Bonus means no bonus was chosen.
type Session struct {
	Phone    string
	Messages []Item
	Sent     []Item
	Bonus    string
	ReviewID string
}

// NewSession returns a fresh session for the shared phone number.
func NewSession(phone string) *Session {
	return &Session{Phone: phone}
}

// PhaseOf reports the conversation state for s; nil means unregistered.
func PhaseOf(s *Session) Phase {
	switch {
	case s == nil:
		return PhaseUnregistered
	case len(s.Sent) > 0:
		return PhaseAwaitingBonus
	default:
		return PhaseCollecting
	}
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = slices.Clone(s.Messages)
	c.Sent = slices.Clone(s.Sent)
	return &c
}

func (s *Session) appendContent(item Item) {
	s.Messages = append(slices.Clip(s.Messages), item)
}

// takeSentBatch moves pending messages into Sent and returns them.
func (s *Session) takeSentBatch(reviewID string) ([]Item, error) {
	if len(s.Messages) == 0 {
		return nil, ErrEmptyReview
	}
	batch := s.Messages
	s.Sent = batch
	s.Messages = nil
	s.Bonus = ""
	s.ReviewID = reviewID
	return slices.Clone(batch), nil
}

func (s *Session) clearMessages() error {
	if len(s.Messages) == 0 {
		return ErrEmptyReview
	}
	s.Messages = nil
	return nil
}

func (s *Session) recordBonus(label string) error {
	if len(s.Sent) == 0 {
		return ErrNoPendingReview
	}
	s.Bonus = label
	return nil
}

func (s *Session) resetAfterBonus() {
	s.Sent = nil
	s.Bonus = ""
	s.ReviewID = ""
}
