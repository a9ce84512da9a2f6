package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/reviewbot/core/logger"
)

const migrateComponent = "db.migrate"

// RunMigrations applies pending up migrations from cfg.MigrationsDir.
func RunMigrations(cfg Config) error {
	ctx := context.Background()

	dir, err := resolveMigrationsDir(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}
	files, err := upFiles(dir)
	if err != nil {
		return fmt.Errorf("migrations dir: %w", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(dir), cfg.URL())
	if err != nil {
		logger.Error(ctx, migrateComponent, "migrate.init",
			slog.String("status", "fail"),
			slog.String("path", dir),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrations init: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if cerr := errors.Join(srcErr, dbErr); cerr != nil {
			logger.Warn(ctx, migrateComponent, "migrate.close",
				slog.String("status", "fail"),
				slog.String("err", cerr.Error()),
			)
		}
	}()

	from := currentVersion(m)
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, migrateComponent, "migrate.up",
			slog.String("status", "fail"),
			slog.Uint64("from_ver", uint64(from)),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migrations up: %w", err)
	}
	to := currentVersion(m)

	applied := appliedBetween(files, from, to)
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("files", len(applied)),
		slog.Duration("duration", logger.Took(start)),
	}
	if preview, rest := logger.Preview(applied, 6); preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
		if rest > 0 {
			attrs = append(attrs, slog.Int("files_omitted", rest))
		}
	}
	logger.Info(ctx, migrateComponent, "migrate.summary", attrs...)
	return nil
}

func resolveMigrationsDir(dir string) (string, error) {
	if dir == "" {
		dir = "migrations"
	}
	return filepath.Abs(dir)
}

// upFiles lists *.up.sql names in version order.
func upFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		return int(versionOf(a)) - int(versionOf(b))
	})
	return names, nil
}

// currentVersion is 0 for a database that has never been migrated.
func currentVersion(m *migrate.Migrate) uint {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return v
}

func versionOf(name string) uint {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return uint(v)
}

func appliedBetween(files []string, from, to uint) []string {
	var out []string
	for _, f := range files {
		if v := versionOf(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
