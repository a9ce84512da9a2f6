// Package tgbot runs the review conversation on Telegram.
package tgbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/m3rciful/reviewbot/core/bootstrap"
	"github.com/m3rciful/reviewbot/core/logger"
	tg "github.com/m3rciful/reviewbot/core/telegram"
	"github.com/m3rciful/reviewbot/core/telegram/commands"
	"github.com/m3rciful/reviewbot/core/telegram/router"
	tgsender "github.com/m3rciful/reviewbot/core/telegram/sender"
	"github.com/m3rciful/reviewbot/review"
	"github.com/m3rciful/reviewbot/review/archive"
	"github.com/m3rciful/reviewbot/review/fanout"
)

// fanoutLaneDepth is the number of pending jobs each administrator lane holds.
const fanoutLaneDepth = 256

// App owns the wired review bot.
type App struct {
	cfg   *Config
	infra *bootstrap.Result

	service  *review.Service
	commands *tg.Registry
	handlers *handlers
	sender   *BotSender
	sweeper  *Sweeper

	replies *tgsender.Dispatcher
	lanes   *tgsender.Dispatcher
}

// Bootstrap initializes logging and the optional archive database, then
// wires the conversation core to the Telegram adapter.
func Bootstrap(cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("tgbot: nil config")
	}
	infra, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}
	app, err := build(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, err
	}
	return app, nil
}

func build(cfg *Config, infra *bootstrap.Result) (*App, error) {
	catalog, err := review.NewCatalog(cfg.Review.Bonuses...)
	if err != nil {
		return nil, fmt.Errorf("tgbot: %w", err)
	}
	roster := cfg.Telegram.AdminIDs

	replies := tgsender.NewDispatcher(tgsender.Options{
		Name:       "tg.sender",
		QueueSize:  cfg.Sender.QueueSize,
		Workers:    cfg.Sender.Workers,
		MaxRetries: cfg.Sender.MaxRetries,
	})
	// One lane per administrator, no retries: a failed notification is
	// logged and the next one is attempted.
	lanes := tgsender.NewDispatcher(tgsender.Options{
		Name:      "fanout",
		Workers:   len(roster),
		QueueSize: len(roster) * fanoutLaneDepth,
	})

	botSender := &BotSender{}
	notifier, err := fanout.New(roster, botSender, lanes)
	if err != nil {
		replies.Close()
		lanes.Close()
		return nil, fmt.Errorf("tgbot: %w", err)
	}

	var deliverer review.Deliverer = notifier
	if infra != nil && infra.DB != nil {
		deliverer = archive.NewRecorder(notifier, archive.NewStore(infra.DB), replies)
	}

	registry := review.NewRegistry()
	svc, err := review.NewService(registry, review.NewMachine(catalog, uuid.NewString), deliverer)
	if err != nil {
		replies.Close()
		lanes.Close()
		return nil, fmt.Errorf("tgbot: %w", err)
	}

	app := &App{
		cfg:      cfg,
		infra:    infra,
		service:  svc,
		commands: tg.NewRegistry(),
		handlers: &handlers{svc: svc, fanoutErrors: lanes.ErrorCount},
		sender:   botSender,
		sweeper:  NewSweeper(registry, cfg.Review.TTL(), cfg.Review.SweepInterval),
		replies:  replies,
		lanes:    lanes,
	}
	if err := app.register(); err != nil {
		replies.Close()
		lanes.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) register() error {
	cmds := map[string]commands.Command{
		"/start": {
			Handler:     a.handlers.start,
			Description: "Начать отзыв",
		},
		"/stats": {
			Handler:     a.handlers.stats,
			Description: "Статистика сессий",
			AdminOnly:   true,
		},
	}
	for name, cmd := range cmds {
		if err := a.commands.RegisterCommand(name, cmd); err != nil {
			return fmt.Errorf("tgbot: %w", err)
		}
	}
	if err := a.commands.RegisterCallback(BonusUnique, a.handlers.bonus); err != nil {
		return fmt.Errorf("tgbot: %w", err)
	}
	return nil
}

// TelegramRunOptions implements the core runner's app contract.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	routes := router.CommandRoutes(a.commands, router.CommandRouteOptions{
		IsAdmin: a.cfg.IsAdmin,
	})
	routes = append(routes, router.MessageRoutes(a.commands, router.MessageHandlers{
		Text:      a.handlers.text,
		Contact:   a.handlers.contact,
		Photo:     a.handlers.media,
		Video:     a.handlers.media,
		VideoNote: a.handlers.media,
	})...)
	routes = append(routes, router.CallbackRoute(a.commands, router.CallbackOptions{}))

	mws := tg.DefaultMiddlewares(a.cfg.Review.AllowGroups)
	logger.Info(context.Background(), "tg.wire", "routes.wired",
		slog.Int("routes", len(routes)),
		slog.Any("middlewares", tg.Names(mws)),
		slog.Int("admins", len(a.cfg.Telegram.AdminIDs)),
		slog.Int("bonuses", a.service.Catalog().Len()),
	)

	return tg.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    a.commands,
		Dispatcher:  a.replies,
		Middlewares: mws,
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	if rt.Bot == nil {
		return fmt.Errorf("tgbot: runtime without bot")
	}
	a.sender.Bind(rt.Bot)
	a.sweeper.Start(ctx)
	logger.Info(ctx, "review", "review.ready",
		slog.Int("admins", len(a.cfg.Telegram.AdminIDs)),
		slog.Duration("ttl", a.cfg.Review.TTL()),
		slog.Bool("archive", a.infra != nil && a.infra.DB != nil),
	)
	return nil
}

// onStop drains the administrator lanes so every confirmed review still
// reaches the whole roster.
func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	a.sweeper.Stop()
	a.lanes.Close()
	st := a.service.Registry().Stats()
	logger.Info(ctx, "review", "review.stop",
		slog.Int("sessions", st.Sessions),
		slog.Int("awaiting_bonus", st.AwaitingBonus),
		slog.Uint64("fanout_errors", a.lanes.ErrorCount()),
	)
	return nil
}

// Close releases the database handle. It is safe to call after the runtime
// has stopped.
func (a *App) Close() error {
	a.lanes.Close()
	a.replies.Close()
	return a.infra.Close()
}
