package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSeedFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "categories.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
	return path
}

func TestLoadCategorySeeds(t *testing.T) {
	t.Run("builtin_when_unset", func(t *testing.T) {
		seeds, err := LoadCategorySeeds("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seeds) != len(BuiltinCategories) {
			t.Errorf("expected %d builtin seeds, got %d", len(BuiltinCategories), len(seeds))
		}
	})

	t.Run("file_with_defaults", func(t *testing.T) {
		path := writeSeedFile(t, `
categories:
  - name: " Rent "
    color: "#000000"
    icon: home
  - name: Coffee
`)
		seeds, err := LoadCategorySeeds(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seeds) != 2 {
			t.Fatalf("expected 2 seeds, got %d", len(seeds))
		}
		if seeds[0].Name != "Rent" || seeds[0].Icon != "home" {
			t.Errorf("unexpected first seed %+v", seeds[0])
		}
		if seeds[1].Color != "#4CAF50" || seeds[1].Icon != "tag" {
			t.Errorf("expected fallback color and icon, got %+v", seeds[1])
		}
	})

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing_name", "categories:\n  - color: \"#fff\"\n", "name is required"},
		{"duplicate_name", "categories:\n  - name: A\n  - name: A\n", "duplicate"},
		{"malformed", "categories: [", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCategorySeeds(writeSeedFile(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}

	t.Run("missing_file", func(t *testing.T) {
		if _, err := LoadCategorySeeds(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
