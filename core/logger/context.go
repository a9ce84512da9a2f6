package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	keyRID ctxKey = iota
	keyUpdate
	keyLogger
	keyHandler
	keyReview
)

type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func withValue(ctx context.Context, key ctxKey, v any) context.Context {
	return context.WithValue(orBackground(ctx), key, v)
}

func valueOf[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, ok := ctx.Value(key).(T)
	if !ok {
		return zero
	}
	return v
}

// WithLogger stores l in ctx.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if l == nil {
		return orBackground(ctx)
	}
	return withValue(ctx, keyLogger, l)
}

// FromContext returns the logger stored in ctx or the root logger.
func FromContext(ctx context.Context) *slog.Logger {
	if l := valueOf[*slog.Logger](ctx, keyLogger); l != nil {
		return l
	}
	return L
}

// WithRID attaches the update correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withValue(ctx, keyRID, rid)
}

// RIDFrom returns the correlation id stored in ctx.
func RIDFrom(ctx context.Context) string {
	return valueOf[string](ctx, keyRID)
}

// WithUpdateMeta attaches the update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	return withValue(ctx, keyUpdate, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

// UpdateIDFrom returns the Telegram update id stored in ctx.
func UpdateIDFrom(ctx context.Context) int {
	return valueOf[updateMeta](ctx, keyUpdate).updateID
}

// UserIDFrom returns the Telegram user id stored in ctx.
func UserIDFrom(ctx context.Context) int64 {
	return valueOf[updateMeta](ctx, keyUpdate).userID
}

// ChatIDFrom returns the chat id stored in ctx.
func ChatIDFrom(ctx context.Context) int64 {
	return valueOf[updateMeta](ctx, keyUpdate).chatID
}

// WithHandler records which route handles the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return orBackground(ctx)
	}
	return withValue(ctx, keyHandler, handler)
}

// HandlerFrom returns the handler name stored in ctx.
func HandlerFrom(ctx context.Context) string {
	return valueOf[string](ctx, keyHandler)
}

// WithReviewID attaches the review identifier so fan-out and archive events
// can be matched with the confirming update.
func WithReviewID(ctx context.Context, reviewID string) context.Context {
	if reviewID == "" {
		return orBackground(ctx)
	}
	return withValue(ctx, keyReview, reviewID)
}

// ReviewIDFrom returns the review identifier stored in ctx.
func ReviewIDFrom(ctx context.Context) string {
	return valueOf[string](ctx, keyReview)
}
