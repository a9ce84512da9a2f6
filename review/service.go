package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/reviewbot/core/logger"
)

const component = "review"

// Deliverer fans a payload out to administrators. Deliver must not block on
// network sends; it schedules them.
type Deliverer interface {
	Deliver(ctx context.Context, p Payload) error
}

// Service runs the state machine against the registry and schedules fan-out.
type Service struct {
	registry  *Registry
	machine   *Machine
	deliverer Deliverer
}

// NewService wires the conversation core.
func NewService(registry *Registry, machine *Machine, deliverer Deliverer) (*Service, error) {
	if registry == nil || machine == nil || deliverer == nil {
		return nil, fmt.Errorf("review: registry, machine and deliverer are required")
	}
	return &Service{registry: registry, machine: machine, deliverer: deliverer}, nil
}

// Registry exposes the session registry.
func (s *Service) Registry() *Registry {
	return s.registry
}

// Catalog exposes the bonus catalog.
func (s *Service) Catalog() Catalog {
	return s.machine.Catalog()
}

// Handle applies ev for its user and returns the acknowledgments for that
// user. Events of the same user are serialized; fan-out payloads are handed
// to the deliverer while the user's lock is held so that their order matches
// the order of the transitions.
func (s *Service) Handle(ctx context.Context, ev Event) []Action {
	uid := ev.UserID()
	var out []Action

	s.registry.Update(uid, func(cur *Session) *Session {
		from := PhaseOf(cur)
		next, actions := s.machine.Step(cur, ev)

		for _, a := range actions {
			d, ok := a.(Dispatch)
			if !ok {
				out = append(out, a)
				continue
			}
			s.dispatch(ctx, d.Payload)
		}

		logger.Debug(ctx, component, "review.step",
			slog.Int64("user_id", uid),
			slog.String("op", fmt.Sprintf("%T", ev)),
			slog.String("phase_from", string(from)),
			slog.String("phase_to", string(PhaseOf(next))),
			slog.Int("messages", len(out)),
		)
		return next
	})
	return out
}

func (s *Service) dispatch(ctx context.Context, p Payload) {
	ctx = logger.WithReviewID(ctx, p.Reference())
	var attrs []slog.Attr
	event := "review.confirmed"
	switch v := p.(type) {
	case Batch:
		attrs = append(attrs, slog.Int("items", len(v.Items)))
		for kind, n := range KindCounts(v.Items) {
			attrs = append(attrs, slog.Int("items_"+string(kind), n))
		}
	case BonusNotice:
		event = "review.bonus"
		attrs = append(attrs, slog.String("bonus", v.Label))
	}

	if err := s.deliverer.Deliver(ctx, p); err != nil {
		logger.Error(ctx, component, event,
			append(attrs,
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)...,
		)
		return
	}
	logger.Info(ctx, component, event, append(attrs, slog.String("status", "ok"))...)
}
