package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestWatchRendersOnPlanChange(t *testing.T) {
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.yaml")
	if err := os.WriteFile(planPath, []byte("epics: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var renders int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, "", func() { atomic.AddInt32(&renders, 1) })
	}()

	// Give the watcher a moment to attach before triggering a change.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(planPath, []byte("epics: []\n# touched\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if atomic.LoadInt32(&renders) < 2 {
		t.Fatalf("expected at least the initial render plus one change render, got %d", renders)
	}
}
