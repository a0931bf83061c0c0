package context

import (
	"context"
	"testing"
	"time"
)

// WithTest bounds ctx by the deadline of the test.
//
// The deadline is a second earlier than the test's one, so that cleanups can run.
func WithTest(ctx context.Context, t *testing.T) (context.Context, context.CancelFunc) {
	if deadline, ok := t.Deadline(); ok {
		return context.WithDeadline(ctx, deadline.Add(-time.Second))
	}
	return context.WithCancel(ctx)
}
