package internal

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/reconcile"
	"github.com/starford/docpress/internal/testutil"
)

func testConfig(t *testing.T) (*Config, string, string) {
	t.Helper()
	src, out := t.TempDir(), t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Source.Path = src
	cfg.Output.Path = out
	cfg.Journal.Path = filepath.Join(t.TempDir(), "journal.db")
	return cfg, src, out
}

func TestSync_OnePass(t *testing.T) {
	cfg, src, out := testConfig(t)
	testutil.WriteFile(t, src, "a.docx", testutil.Post(t, [][2]string{{"title", "A"}}))

	var seen int
	report, err := Sync(context.Background(),
		WithConfig(cfg),
		WithLogOutput(io.Discard),
		WithReportHandler(func(*reconcile.Report, error) { seen++ }),
	)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Count(reconcile.ActionConverted) != 1 || seen != 1 {
		t.Fatalf("converted = %d, handler calls = %d", report.Count(reconcile.ActionConverted), seen)
	}
	if names := testutil.Names(t, out); len(names) != 1 {
		t.Fatalf("outputs = %v", names)
	}

	items, err := ListPosts(context.Background(), WithConfig(cfg))
	if err != nil || len(items) != 1 || items[0].Title != "A" {
		t.Fatalf("ListPosts = %+v, %v", items, err)
	}

	runs, err := History(context.Background(), 10, WithConfig(cfg))
	if err != nil || len(runs) != 1 {
		t.Fatalf("History = %+v, %v", runs, err)
	}
}

func TestSync_DryRun(t *testing.T) {
	cfg, src, out := testConfig(t)
	testutil.WriteFile(t, src, "a.docx", testutil.Post(t, [][2]string{{"title", "A"}}))

	report, err := Sync(context.Background(), WithConfig(cfg), WithDryRun(true), WithLogOutput(io.Discard))
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !report.DryRun || report.Count(reconcile.ActionConverted) != 1 {
		t.Fatalf("report = %+v", report)
	}
	if names := testutil.Names(t, out); len(names) != 0 {
		t.Errorf("dry run wrote %v", names)
	}
}

func TestSync_MissingDirectory(t *testing.T) {
	cfg, _, _ := testConfig(t)
	cfg.Source.Path = filepath.Join(t.TempDir(), "absent")

	_, err := Sync(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard))
	if !errors.Is(err, apperr.ErrPath) {
		t.Fatalf("err = %v, want ErrPath", err)
	}
}

func TestSync_ConfigRequired(t *testing.T) {
	if _, err := Sync(context.Background()); !errors.Is(err, errConfigRequired) {
		t.Fatalf("err = %v", err)
	}
}

func TestHistory_JournalDisabled(t *testing.T) {
	cfg, _, _ := testConfig(t)
	cfg.Journal.Path = ""
	if _, err := History(context.Background(), 5, WithConfig(cfg)); err == nil {
		t.Fatal("expected error with journal disabled")
	}
}
