package cmd

import (
	"context"
	"errors"
	"testing"

	coreconfig "github.com/m3rciful/reviewbot/core/config"
	coretelegram "github.com/m3rciful/reviewbot/core/telegram"
)

type fakeConfig struct{ core *coreconfig.Config }

func (f fakeConfig) CoreConfig() *coreconfig.Config { return f.core }

type fakeApp struct {
	opts coretelegram.RunOptions
}

func (a fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) { return a.opts, nil }

func TestRunUsesConfigPathFromEnv(t *testing.T) {
	t.Setenv("REVIEWBOT_CONFIG", "/etc/reviewbot.yaml")

	var (
		loaded  string
		order   []string
		stopped bool
	)
	app := fakeApp{opts: coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error {
			order = append(order, "app.start")
			return nil
		},
		OnStop: func(context.Context, coretelegram.Runtime) error {
			stopped = true
			return nil
		},
	}}

	err := Run(Options{
		ConfigEnvVar:      "REVIEWBOT_CONFIG",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (ConfigCarrier, error) {
			loaded = path
			return fakeConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { order = append(order, "logger.shutdown"); return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			if err := opts.OnStart(ctx, coretelegram.Runtime{}); err != nil {
				return err
			}
			order = append(order, "running")
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if loaded != "/etc/reviewbot.yaml" {
		t.Fatalf("loaded %q", loaded)
	}
	if !stopped {
		t.Fatal("app OnStop not called")
	}
	want := []string{"app.start", "running", "logger.shutdown"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestRunStopsOnFailedStart(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	boom := errors.New("no bot")
	app := fakeApp{opts: coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { return boom },
	}}
	err := Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return fakeConfig{core: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			return opts.OnStart(ctx, coretelegram.Runtime{})
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	if err := Run(Options{}); err == nil {
		t.Fatal("expected error without LoadConfig and Bootstrap")
	}

	t.Setenv("CONFIG_PATH", "")
	err := Run(Options{
		LoadConfig: func(string) (ConfigCarrier, error) { return fakeConfig{}, nil },
		Bootstrap:  func(ConfigCarrier) (TelegramApp, error) { return fakeApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected error without any config path")
	}

	err = Run(Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        func(string) (ConfigCarrier, error) { return fakeConfig{}, nil },
		Bootstrap:         func(ConfigCarrier) (TelegramApp, error) { return fakeApp{}, nil },
	})
	if err == nil {
		t.Fatal("expected error for config without core section")
	}
}
