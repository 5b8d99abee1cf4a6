package watch

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestFilter_Match(t *testing.T) {
	f := Filter{Ext: ".docx", SkipPrefix: "~$"}
	cases := map[string]bool{
		"/src/post.docx":   true,
		"/src/POST.DOCX":   true,
		"/src/~$post.docx": false,
		"/src/post.txt":    false,
	}
	for path, want := range cases {
		if got := f.Match(path); got != want {
			t.Errorf("Match(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestWatch_DebouncedPass(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var passes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, Filter{Ext: ".docx", SkipPrefix: "~$"}, 100*time.Millisecond, logger, func(context.Context) {
			passes.Add(1)
		})
	}()

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)
	for i := 0; i < 3; i++ {
		_ = os.WriteFile(filepath.Join(dir, "post.docx"), []byte{byte(i)}, 0o644)
	}

	eventually(t, 5*time.Second, 20*time.Millisecond, func() bool {
		return passes.Load() >= 1
	}, "watcher never triggered a pass")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_MissingDir(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), Filter{Ext: ".docx"}, 0, logger, func(context.Context) {})
	if err == nil {
		t.Error("expected error for missing directory")
	}
}
