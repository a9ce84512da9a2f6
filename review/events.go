package review

// Event is an inbound conversation event produced by the transport adapter.
type Event interface {
	UserID() int64
	isEvent()
}

// Start is the /start greeting request.
type Start struct {
	User int64
}

// ContactShared carries the phone number from a shared contact.
type ContactShared struct {
	User  int64
	Phone string
}

// ContentReceived carries a photo, video or video note.
type ContentReceived struct {
	User int64
	Item Item
}

// TextReceived carries raw text; it is either a command trigger or review content.
type TextReceived struct {
	User int64
	Text string
}

// BonusSelected carries the label decoded from a bonus menu press.
type BonusSelected struct {
	User  int64
	Label string
}

func (e Start) UserID() int64           { return e.User }
func (e ContactShared) UserID() int64   { return e.User }
func (e ContentReceived) UserID() int64 { return e.User }
func (e TextReceived) UserID() int64    { return e.User }
func (e BonusSelected) UserID() int64   { return e.User }

func (Start) isEvent()           {}
func (ContactShared) isEvent()   {}
func (ContentReceived) isEvent() {}
func (TextReceived) isEvent()    {}
func (BonusSelected) isEvent()   {}

// Keyboard selects the reply keyboard attached to an acknowledgment.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	// KeyboardContact asks the user to share a phone number.
	KeyboardContact
	// KeyboardReview shows the submit and clear buttons.
	KeyboardReview
	// KeyboardRemove hides the reply keyboard.
	KeyboardRemove
)

// Action is an outbound effect decided by the state machine.
type Action interface {
	isAction()
}

// Reply acknowledges the user. Replace asks the adapter to edit the message
// that triggered the event instead of sending a new one.
type Reply struct {
	User     int64
	Text     string
	Keyboard Keyboard
	Replace  bool
}

// OfferBonusMenu shows the one-shot bonus selection.
type OfferBonusMenu struct {
	User   int64
	Text   string
	Labels []string
}

// Dispatch hands a payload to the administrator fan-out.
type Dispatch struct {
	Payload Payload
}

func (Reply) isAction()          {}
func (OfferBonusMenu) isAction() {}
func (Dispatch) isAction()       {}

// Payload is what the fan-out delivers: a Batch or a BonusNotice.
type Payload interface {
	Reference() string
	isPayload()
}

// Batch is a confirmed review.
type Batch struct {
	ReviewID string
	User     int64
	Phone    string
	Items    []Item
}

// BonusNotice reports the bonus chosen for a delivered review.
type BonusNotice struct {
	ReviewID string
	User     int64
	Phone    string
	Label    string
}

func (b Batch) Reference() string       { return b.ReviewID }
func (n BonusNotice) Reference() string { return n.ReviewID }

func (Batch) isPayload()       {}
func (BonusNotice) isPayload() {}
