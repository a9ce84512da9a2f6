package review

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + string(rune('0'+n))
	}
}

func TestRegistryRequiresContact(t *testing.T) {
	r := NewRegistry()

	assert.ErrorIs(t, r.AppendContent(1, Text{Body: "hi"}), ErrNotRegistered)
	_, _, err := r.TakeSentBatch(1)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.ErrorIs(t, r.ClearMessages(1), ErrNotRegistered)
	assert.ErrorIs(t, r.RecordBonus(1, "x"), ErrNotRegistered)
	assert.ErrorIs(t, r.ResetAfterBonus(1), ErrNotRegistered)

	_, ok := r.Snapshot(1)
	assert.False(t, ok)
}

func TestRegistryTakeSentBatch(t *testing.T) {
	r := NewRegistry(WithIDGenerator(sequentialIDs("rev-")))
	r.RegisterContact(1, "555-0100")

	_, _, err := r.TakeSentBatch(1)
	require.ErrorIs(t, err, ErrEmptyReview)

	items := []Item{
		Text{Body: "one"},
		Photo{FileID: "p1", Caption: "two"},
		VideoNote{FileID: "v1"},
	}
	for _, it := range items {
		require.NoError(t, r.AppendContent(1, it))
	}

	phone, batch, err := r.TakeSentBatch(1)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", phone)
	assert.Equal(t, items, batch)

	s, ok := r.Snapshot(1)
	require.True(t, ok)
	assert.Empty(t, s.Messages)
	assert.Equal(t, items, s.Sent)
	assert.Equal(t, "rev-1", s.ReviewID)
	assert.Equal(t, PhaseAwaitingBonus, PhaseOf(s))
}

func TestRegistryClearMessages(t *testing.T) {
	r := NewRegistry()
	r.RegisterContact(2, "555-0200")

	require.ErrorIs(t, r.ClearMessages(2), ErrEmptyReview)

	require.NoError(t, r.AppendContent(2, Text{Body: "draft"}))
	require.NoError(t, r.ClearMessages(2))

	s, _ := r.Snapshot(2)
	assert.Empty(t, s.Messages)
	assert.Empty(t, s.Sent)
}

func TestRegistryBonusCycle(t *testing.T) {
	r := NewRegistry()
	r.RegisterContact(1, "555-0100")

	// no delivered batch: rejected regardless of the label
	assert.ErrorIs(t, r.RecordBonus(1, "Massage"), ErrNoPendingReview)
	assert.ErrorIs(t, r.RecordBonus(1, "unknown"), ErrNoPendingReview)

	require.NoError(t, r.AppendContent(1, Text{Body: "Great service"}))
	_, _, err := r.TakeSentBatch(1)
	require.NoError(t, err)

	require.NoError(t, r.RecordBonus(1, "Massage"))
	s, _ := r.Snapshot(1)
	assert.Equal(t, "Massage", s.Bonus)

	require.NoError(t, r.ResetAfterBonus(1))
	s, _ = r.Snapshot(1)
	assert.Empty(t, s.Sent)
	assert.Empty(t, s.Bonus)
	assert.Empty(t, s.ReviewID)

	// a new confirm cycle is possible
	require.NoError(t, r.AppendContent(1, Text{Body: "again"}))
	_, batch, err := r.TakeSentBatch(1)
	require.NoError(t, err)
	assert.Equal(t, []Item{Text{Body: "again"}}, batch)
}

func TestRegistryRegisterContactReplacesSession(t *testing.T) {
	r := NewRegistry()
	r.RegisterContact(1, "111")
	require.NoError(t, r.AppendContent(1, Text{Body: "old"}))

	r.RegisterContact(1, "222")
	s, ok := r.Snapshot(1)
	require.True(t, ok)
	assert.Equal(t, "222", s.Phone)
	assert.Empty(t, s.Messages)
}

func TestRegistrySnapshotIsACopy(t *testing.T) {
	r := NewRegistry()
	r.RegisterContact(1, "111")
	require.NoError(t, r.AppendContent(1, Text{Body: "a"}))

	s, _ := r.Snapshot(1)
	s.Messages[0] = Text{Body: "mutated"}
	s.Phone = "x"

	again, _ := r.Snapshot(1)
	assert.Equal(t, "111", again.Phone)
	assert.Equal(t, Text{Body: "a"}, again.Messages[0])
}

func TestRegistryConcurrentAppendsPerUser(t *testing.T) {
	r := NewRegistry()
	const users, perUser = 8, 200
	for uid := int64(1); uid <= users; uid++ {
		r.RegisterContact(uid, "p")
	}

	var wg sync.WaitGroup
	for uid := int64(1); uid <= users; uid++ {
		for i := 0; i < perUser; i++ {
			wg.Add(1)
			go func(uid int64) {
				defer wg.Done()
				_ = r.AppendContent(uid, Text{Body: "x"})
			}(uid)
		}
	}
	wg.Wait()

	for uid := int64(1); uid <= users; uid++ {
		s, ok := r.Snapshot(uid)
		require.True(t, ok)
		assert.Len(t, s.Messages, perUser)
	}
	st := r.Stats()
	assert.Equal(t, users, st.Sessions)
	assert.Equal(t, users*perUser, st.PendingItems)
}

func TestRegistrySweep(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := NewRegistry(WithClock(clock.Now))

	r.RegisterContact(1, "idle")
	clock.Advance(time.Hour)
	r.RegisterContact(2, "active")

	assert.Zero(t, r.Sweep(0))
	assert.Equal(t, 1, r.Sweep(30*time.Minute))

	_, ok := r.Snapshot(1)
	assert.False(t, ok)
	_, ok = r.Snapshot(2)
	assert.True(t, ok)

	// an evicted user starts over
	assert.ErrorIs(t, r.AppendContent(1, Text{Body: "late"}), ErrNotRegistered)
}

func TestRegistryStats(t *testing.T) {
	r := NewRegistry()
	r.RegisterContact(1, "a")
	r.RegisterContact(2, "b")
	require.NoError(t, r.AppendContent(1, Text{Body: "x"}))
	require.NoError(t, r.AppendContent(2, Text{Body: "y"}))
	_, _, err := r.TakeSentBatch(2)
	require.NoError(t, err)
	_ = r.AppendContent(3, Text{Body: "unregistered"})

	assert.Equal(t, Stats{Sessions: 2, Collecting: 1, AwaitingBonus: 1, PendingItems: 1}, r.Stats())
}
