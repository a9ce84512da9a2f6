package database

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestUpFilesOrderAndFilter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000010_add_index.up.sql",
		"000002_bonus.up.sql",
		"000002_bonus.down.sql",
		"000001_create_reviews.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000003_dir.up.sql"), 0o700); err != nil {
		t.Fatal(err)
	}

	got, err := upFiles(dir)
	if err != nil {
		t.Fatalf("upFiles: %v", err)
	}
	want := []string{"000001_create_reviews.up.sql", "000002_bonus.up.sql", "000010_add_index.up.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if applied := appliedBetween(got, 1, 10); !reflect.DeepEqual(applied, want[1:]) {
		t.Fatalf("applied = %v", applied)
	}
	if applied := appliedBetween(got, 10, 10); len(applied) != 0 {
		t.Fatalf("no change must apply nothing, got %v", applied)
	}
}

func TestUpFilesMissingDir(t *testing.T) {
	if _, err := upFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
