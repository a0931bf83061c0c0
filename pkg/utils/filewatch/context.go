package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// modifying operations. Chmod is not a modification of contents.
const modifying = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// UntilModifyContext returns a context that is canceled
// when one of target files is written, created, removed or renamed.
//
// The cause of the cancellation (context.Cause) tells which file is modified.
//
// If error is not nil, both of the context and the cancel function are nil.
func UntilModifyContext(ctx context.Context, targetFilePath ...string) (context.Context, context.CancelFunc, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	for _, f := range targetFilePath {
		if err := w.Add(f); err != nil {
			w.Close()
			return nil, nil, fmt.Errorf("cannot watch %s: %w", f, err)
		}
	}

	cctx, cancel := context.WithCancelCause(ctx)
	go func() {
		defer w.Close()
		for {
			select {
			case <-cctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				cancel(fmt.Errorf("file watching is broken: %w", err))
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&modifying == 0 {
					continue
				}
				cancel(fmt.Errorf("%s is updated (%s)", event.Name, event.Op.String()))
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
