package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/reviewbot/core/logger"
)

const (
	readyTimeout = 30 * time.Second
	pingTimeout  = 5 * time.Second
	pingInterval = 2 * time.Second
)

// Connect opens the pool and waits up to 30s for PostgreSQL to accept
// connections. Containers started together with the bot usually need a few
// pings.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	return ConnectContext(ctx, cfg)
}

// ConnectContext is Connect bounded by ctx instead of the default timeout.
func ConnectContext(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	start := time.Now()
	attempts, err := waitReady(ctx, db)
	attrs := []slog.Attr{
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Int("attempts", attempts),
		slog.Duration("duration", logger.Took(start)),
	}
	if err != nil {
		_ = db.Close()
		logger.Error(ctx, "db", "db.connect", append(attrs,
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)...)
		return nil, fmt.Errorf("db connect %s: %w", cfg.Host, err)
	}

	logger.Info(ctx, "db", "db.connect", append(attrs,
		slog.String("status", "ok"),
		slog.Int("pool_open", cfg.MaxConnections),
	)...)
	return db, nil
}

// waitReady pings db until it answers or ctx is done.
func waitReady(ctx context.Context, db *sqlx.DB) (int, error) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := db.PingContext(pctx)
		cancel()
		if err == nil {
			return attempt, nil
		}
		logger.Debug(ctx, "db", "db.ping",
			slog.String("status", "retry"),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)
		select {
		case <-ctx.Done():
			return attempt, fmt.Errorf("%w: %v", ctx.Err(), err)
		case <-ticker.C:
		}
	}
}
