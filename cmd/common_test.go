/*
Copyright © 2026 JACOB ARTHURS
*/
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/jacobarthurs/accelplan/internal/plan"
)

func TestOutputFormat(t *testing.T) {
	t.Cleanup(func() { viper.Set("format", "text") })

	viper.Set("format", "json")
	if got, err := outputFormat(); err != nil || got != "json" {
		t.Errorf("outputFormat() = %q, %v", got, err)
	}

	viper.Set("format", "yaml")
	if _, err := outputFormat(); err == nil {
		t.Error("expected error for yaml format")
	}
}

func TestResolveSource_QueryOnly(t *testing.T) {
	src, err := resolveSource(context.Background(), "", "SELECT 1", plan.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.SQL != "SELECT 1" || src.Plan != nil {
		t.Errorf("source = %+v, want query without plan", src)
	}
}

func TestResolveSource_PlanWithQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.txt")
	content := "Seq Scan on cur  (cost=0.00..10.00 rows=100 width=8)\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := resolveSource(context.Background(), path, "SELECT * FROM cur", plan.ResolveOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Plan == nil || src.Plan.Root == nil {
		t.Fatal("expected parsed plan")
	}
	if src.SQL != "SELECT * FROM cur" {
		t.Errorf("SQL = %q", src.SQL)
	}
}

func TestResolveSource_QueryGivenTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.sql")
	if err := os.WriteFile(path, []byte("SELECT 1"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := resolveSource(context.Background(), path, "SELECT 2", plan.ResolveOptions{}); err == nil {
		t.Fatal("expected error when the query comes from both a file and a flag")
	}
}

func TestLoadCostModel_Default(t *testing.T) {
	m, err := loadCostModel("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Ops) == 0 {
		t.Error("expected built-in operations")
	}
}

func TestLoadHardware_MissingFile(t *testing.T) {
	if _, err := loadHardware(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing hardware file")
	}
}

func TestSetupLogging_Levels(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"", zerolog.WarnLevel},
		{"loud", zerolog.WarnLevel},
	}
	for _, tt := range tests {
		if got := setupLogging(tt.in).GetLevel(); got != tt.want {
			t.Errorf("setupLogging(%q) level = %v, want %v", tt.in, got, tt.want)
		}
	}
}
