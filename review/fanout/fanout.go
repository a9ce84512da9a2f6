// Package fanout delivers confirmed reviews and bonus choices to every
// administrator of a fixed roster.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/review"
)

const component = "fanout"

// Kind identifies one administrator notification.
type Kind string

const (
	KindHeader      Kind = "header"
	KindText        Kind = "text"
	KindPhoto       Kind = "photo"
	KindVideo       Kind = "video"
	KindVideoNote   Kind = "video_note"
	KindBonusNotice Kind = "bonus_notice"
)

const (
	headerFormat = "📞 Новый отзыв от: %s"
	bonusFormat  = "📞 Контакт: %s 🎁 Выбранный бонус: %s"
)

// Notify is a single outbound send to an administrator. FileID is set for
// media kinds; Caption is never set for video notes.
type Notify struct {
	AdminID int64
	Kind    Kind
	Text    string
	FileID  string
	Caption string
}

// Sender performs one send. Implementations talk to the chat transport.
type Sender interface {
	Send(ctx context.Context, n Notify) error
}

// Lanes schedules jobs; jobs with the same key run sequentially in order.
type Lanes interface {
	EnqueueKeyed(ctx context.Context, key int64, action, endpoint string, run func() error) error
}

// PlanFor returns the ordered notifications one administrator receives for p.
func PlanFor(adminID int64, p review.Payload) []Notify {
	switch v := p.(type) {
	case review.Batch:
		out := make([]Notify, 0, len(v.Items)+1)
		out = append(out, Notify{
			AdminID: adminID,
			Kind:    KindHeader,
			Text:    fmt.Sprintf(headerFormat, v.Phone),
		})
		for _, it := range v.Items {
			if n, ok := itemNotify(adminID, it); ok {
				out = append(out, n)
			}
		}
		return out
	case review.BonusNotice:
		return []Notify{{
			AdminID: adminID,
			Kind:    KindBonusNotice,
			Text:    fmt.Sprintf(bonusFormat, v.Phone, v.Label),
		}}
	}
	return nil
}

// Plan returns the notifications for every administrator in roster order.
func Plan(roster []int64, p review.Payload) []Notify {
	var out []Notify
	for _, admin := range roster {
		out = append(out, PlanFor(admin, p)...)
	}
	return out
}

func itemNotify(adminID int64, it review.Item) (Notify, bool) {
	switch v := it.(type) {
	case review.Text:
		return Notify{AdminID: adminID, Kind: KindText, Text: v.Body}, true
	case review.Photo:
		return Notify{AdminID: adminID, Kind: KindPhoto, FileID: v.FileID, Caption: v.Caption}, true
	case review.Video:
		return Notify{AdminID: adminID, Kind: KindVideo, FileID: v.FileID, Caption: v.Caption}, true
	case review.VideoNote:
		return Notify{AdminID: adminID, Kind: KindVideoNote, FileID: v.FileID}, true
	}
	return Notify{}, false
}

// Notifier implements review.Deliverer on top of keyed lanes.
type Notifier struct {
	roster []int64
	sender Sender
	lanes  Lanes
}

// New builds a Notifier. Administrator i of the roster is scheduled on lane
// key i, so a dispatcher with at least len(roster) lanes gives each
// administrator its own worker.
func New(roster []int64, sender Sender, lanes Lanes) (*Notifier, error) {
	if len(roster) == 0 {
		return nil, fmt.Errorf("fanout: empty administrator roster")
	}
	if sender == nil || lanes == nil {
		return nil, fmt.Errorf("fanout: sender and lanes are required")
	}
	return &Notifier{
		roster: slices.Clone(roster),
		sender: sender,
		lanes:  lanes,
	}, nil
}

// Roster returns the administrator ids in delivery order.
func (n *Notifier) Roster() []int64 {
	return slices.Clone(n.roster)
}

// Deliver schedules one job per administrator and returns once all jobs are
// queued. A job attempts every notification even after a failure; failures
// are logged and never retried.
func (n *Notifier) Deliver(ctx context.Context, p review.Payload) error {
	var errs []error
	for i, admin := range n.roster {
		plan := PlanFor(admin, p)
		if len(plan) == 0 {
			continue
		}
		run := n.job(ctx, p.Reference(), plan)
		if err := n.lanes.EnqueueKeyed(ctx, int64(i), "fanout."+string(plan[0].Kind), "admin", run); err != nil {
			logger.Error(ctx, component, "fanout.enqueue",
				slog.String("status", "fail"),
				slog.Int64("admin_id", admin),
				slog.String("review_id", p.Reference()),
				slog.String("err", err.Error()),
			)
			errs = append(errs, fmt.Errorf("fanout: admin %d: %w", admin, err))
		}
	}
	return errors.Join(errs...)
}

func (n *Notifier) job(ctx context.Context, reviewID string, plan []Notify) func() error {
	return func() error {
		var errs []error
		for i, note := range plan {
			if err := n.sender.Send(ctx, note); err != nil {
				logger.Warn(ctx, component, "fanout.send",
					slog.String("status", "fail"),
					slog.Int64("admin_id", note.AdminID),
					slog.String("review_id", reviewID),
					slog.String("kind", string(note.Kind)),
					slog.Int("position", i),
					slog.String("err", err.Error()),
				)
				errs = append(errs, fmt.Errorf("%s #%d: %w", note.Kind, i, err))
			}
		}
		return errors.Join(errs...)
	}
}
