package archive

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/reviewbot/core/logger"
	"github.com/m3rciful/reviewbot/review"
)

// ErrReviewNotFound is returned when a bonus refers to a review that was never archived.
var ErrReviewNotFound = errors.New("review not archived")

const writeTimeout = 5 * time.Second

// Saver is the persistence port of the recorder.
type Saver interface {
	SaveReview(ctx context.Context, b review.Batch) error
	SaveBonus(ctx context.Context, n review.BonusNotice) error
}

// Runner schedules background jobs. Jobs sharing a key run in enqueue order.
type Runner interface {
	EnqueueKeyed(ctx context.Context, key int64, action, endpoint string, run func() error) error
}

// Recorder decorates a review.Deliverer and archives every payload after
// handing it to the wrapped deliverer. Archive writes never affect delivery.
type Recorder struct {
	next   review.Deliverer
	saver  Saver
	runner Runner
}

// NewRecorder wraps next.
func NewRecorder(next review.Deliverer, saver Saver, runner Runner) *Recorder {
	return &Recorder{next: next, saver: saver, runner: runner}
}

// Deliver implements review.Deliverer.
func (r *Recorder) Deliver(ctx context.Context, p review.Payload) error {
	err := r.next.Deliver(ctx, p)

	write := func() error {
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		start := time.Now()
		werr := r.save(wctx, p)
		attrs := []slog.Attr{
			slog.String("status", logger.Status(werr)),
			slog.String("review_id", p.Reference()),
			slog.Duration("duration", logger.Took(start)),
		}
		if werr != nil {
			logger.Error(ctx, "archive", "archive.write", append(attrs, slog.String("err", werr.Error()))...)
			return werr
		}
		logger.Debug(ctx, "archive", "archive.write", attrs...)
		return nil
	}

	// a bonus update must not overtake the insert of its review
	if qerr := r.runner.EnqueueKeyed(ctx, ownerOf(p), "archive.write", "postgres", write); qerr != nil {
		logger.Warn(ctx, "archive", "archive.enqueue",
			slog.String("status", "skip"),
			slog.String("review_id", p.Reference()),
			slog.String("err", qerr.Error()),
		)
	}
	return err
}

func ownerOf(p review.Payload) int64 {
	switch v := p.(type) {
	case review.Batch:
		return v.User
	case review.BonusNotice:
		return v.User
	}
	return 0
}

func (r *Recorder) save(ctx context.Context, p review.Payload) error {
	switch v := p.(type) {
	case review.Batch:
		return r.saver.SaveReview(ctx, v)
	case review.BonusNotice:
		return r.saver.SaveBonus(ctx, v)
	}
	return nil
}
