package filewatch_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/helixlab/helix/pkg/utils/filewatch"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("context is not canceled")
	}
}

func TestUntilModifyContext(t *testing.T) {
	t.Run("when a file is created in a watched directory, it cancels context", func(t *testing.T) {
		dir := t.TempDir()
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), dir)
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		if err := ctx.Err(); err != nil {
			t.Fatalf("canceled too early: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "extras.yaml"), []byte("endpoints: []"), 0644); err != nil {
			t.Fatal(err)
		}

		waitDone(t, ctx)
		if cause := context.Cause(ctx); cause == nil || !strings.Contains(cause.Error(), "extras.yaml") {
			t.Errorf("unexpected cause: %v", cause)
		}
	})

	t.Run("when a watched file is written, it cancels context", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "extras.yaml")
		if err := os.WriteFile(file, []byte("endpoints: []"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), file)
		if err != nil {
			t.Fatal(err)
		}
		defer cancel()

		if err := os.WriteFile(file, []byte("endpoints: [{path: /x/}]"), 0644); err != nil {
			t.Fatal(err)
		}
		waitDone(t, ctx)
	})

	t.Run("cancel func cancels the context without cause", func(t *testing.T) {
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		cancel()
		waitDone(t, ctx)
		if cause := context.Cause(ctx); cause != context.Canceled {
			t.Errorf("unexpected cause: %v", cause)
		}
	})

	t.Run("it fails when the target does not exist", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "no-such-file")
		ctx, cancel, err := filewatch.UntilModifyContext(context.Background(), missing)
		if err == nil {
			cancel()
			t.Fatal("expected error, but got nil")
		}
		if ctx != nil || cancel != nil {
			t.Error("context or cancel is returned with error")
		}
	})
}
