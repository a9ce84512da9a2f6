package review

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// slot serializes all events of a single user.
type slot struct {
	mu      sync.Mutex
	session *Session
	touched time.Time
	evicted bool
}

// Registry owns the mapping from Telegram user id to session. Operations for
// the same user are serialized by that user's slot; different users never
// contend beyond the short map lookup.
type Registry struct {
	mu    sync.RWMutex
	slots map[int64]*slot

	now   func() time.Time
	newID func() string
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

// WithClock overrides the time source used for idle tracking.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides review id generation.
func WithIDGenerator(gen func() string) RegistryOption {
	return func(r *Registry) {
		if gen != nil {
			r.newID = gen
		}
	}
}

// NewRegistry constructs an empty in-memory registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		slots: make(map[int64]*slot),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) slotFor(userID int64) *slot {
	r.mu.RLock()
	sl, ok := r.slots[userID]
	r.mu.RUnlock()
	if ok {
		return sl
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if sl, ok = r.slots[userID]; ok {
		return sl
	}
	sl = &slot{touched: r.now()}
	r.slots[userID] = sl
	return sl
}

// lock returns the locked live slot of the user.
func (r *Registry) lock(userID int64) *slot {
	for {
		sl := r.slotFor(userID)
		sl.mu.Lock()
		if !sl.evicted {
			return sl
		}
		// Lost a race with Sweep; the slot is gone from the map.
		sl.mu.Unlock()
	}
}

// Update applies fn to the user's current session while holding the user's
// lock and stores the session fn returns. The current session is nil for
// unregistered users; returning nil leaves the user unregistered.
func (r *Registry) Update(userID int64, fn func(current *Session) *Session) {
	sl := r.lock(userID)
	defer sl.mu.Unlock()
	sl.session = fn(sl.session)
	sl.touched = r.now()
}

// with runs op against an existing session and reports ErrNotRegistered otherwise.
func (r *Registry) with(userID int64, op func(s *Session) error) error {
	var err error
	r.Update(userID, func(cur *Session) *Session {
		if cur == nil {
			err = ErrNotRegistered
			return nil
		}
		err = op(cur)
		return cur
	})
	return err
}

// RegisterContact creates a fresh session for the user, replacing any
// previous one without merging.
func (r *Registry) RegisterContact(userID int64, phone string) {
	r.Update(userID, func(*Session) *Session {
		return NewSession(phone)
	})
}

// AppendContent adds the item to the pending messages in arrival order.
func (r *Registry) AppendContent(userID int64, item Item) error {
	return r.with(userID, func(s *Session) error {
		s.appendContent(item)
		return nil
	})
}

// TakeSentBatch moves pending messages into the sent batch and returns the
// phone together with the batch.
func (r *Registry) TakeSentBatch(userID int64) (string, []Item, error) {
	var (
		phone string
		batch []Item
	)
	err := r.with(userID, func(s *Session) error {
		items, err := s.takeSentBatch(r.newID())
		if err != nil {
			return err
		}
		phone, batch = s.Phone, items
		return nil
	})
	return phone, batch, err
}

// ClearMessages drops pending messages without producing a batch.
func (r *Registry) ClearMessages(userID int64) error {
	return r.with(userID, func(s *Session) error {
		return s.clearMessages()
	})
}

// RecordBonus stores the chosen bonus for the delivered batch.
func (r *Registry) RecordBonus(userID int64, label string) error {
	return r.with(userID, func(s *Session) error {
		return s.recordBonus(label)
	})
}

// ResetAfterBonus clears the delivered batch and the bonus choice.
func (r *Registry) ResetAfterBonus(userID int64) error {
	return r.with(userID, func(s *Session) error {
		s.resetAfterBonus()
		return nil
	})
}

// Snapshot returns a deep copy of the user's session.
func (r *Registry) Snapshot(userID int64) (*Session, bool) {
	r.mu.RLock()
	sl, ok := r.slots[userID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.session == nil {
		return nil, false
	}
	return sl.session.Clone(), true
}

// Stats summarizes registry contents.
type Stats struct {
	Sessions      int
	Collecting    int
	AwaitingBonus int
	PendingItems  int
}

// Stats counts registered sessions by phase.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	slots := make([]*slot, 0, len(r.slots))
	for _, sl := range r.slots {
		slots = append(slots, sl)
	}
	r.mu.RUnlock()

	var st Stats
	for _, sl := range slots {
		sl.mu.Lock()
		s := sl.session
		if s != nil {
			st.Sessions++
			st.PendingItems += len(s.Messages)
			if PhaseOf(s) == PhaseAwaitingBonus {
				st.AwaitingBonus++
			} else {
				st.Collecting++
			}
		}
		sl.mu.Unlock()
	}
	return st
}

// Sweep evicts slots untouched for longer than idle and returns how many were
// removed. Slots busy with an event are skipped until the next sweep.
func (r *Registry) Sweep(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, sl := range r.slots {
		if !sl.mu.TryLock() {
			continue
		}
		if sl.touched.Before(cutoff) {
			sl.evicted = true
			delete(r.slots, id)
			removed++
		}
		sl.mu.Unlock()
	}
	return removed
}
