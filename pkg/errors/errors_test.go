package errors_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	xe "github.com/helixlab/helix/pkg/errors"
)

var errRows = errors.New("no rows in result set")

func getModel() error {
	return xe.Wrap(errRows)
}

func TestWrap(t *testing.T) {
	t.Run("it knows the function and the file where it is wrapped", func(t *testing.T) {
		err := getModel()

		_, thisFile, _, _ := runtime.Caller(0)

		var traced *xe.Traced
		if !errors.As(err, &traced) {
			t.Fatalf("not traced: %v", err)
		}
		if !strings.HasSuffix(traced.Caller.Func, ".getModel") {
			t.Errorf("unexpected func: %s", traced.Caller.Func)
		}
		if traced.Caller.File != thisFile {
			t.Errorf("unexpected file: %s", traced.Caller.File)
		}
		if traced.Caller.Line <= 0 {
			t.Errorf("unexpected line: %d", traced.Caller.Line)
		}

		msg := err.Error()
		if !strings.HasPrefix(msg, "@ ") || !strings.Contains(msg, `"`+filepath.Base(thisFile)+`"`) {
			t.Errorf("unexpected message: %s", msg)
		}
		if !strings.HasSuffix(msg, "<- no rows in result set") {
			t.Errorf("cause is lost: %s", msg)
		}
	})

	t.Run("it supports errors.Is", func(t *testing.T) {
		err := xe.Wrap(fmt.Errorf("querying: %w", errRows))
		if !errors.Is(err, errRows) {
			t.Error("it does not support unwrapping.")
		}
	})

	t.Run("it keeps nil as nil", func(t *testing.T) {
		if err := xe.Wrap(nil); err != nil {
			t.Errorf("nil is wrapped: %v", err)
		}
		if err := xe.WrapWithNote("note", nil); err != nil {
			t.Errorf("nil is wrapped: %v", err)
		}
	})

	t.Run("it shows the note", func(t *testing.T) {
		err := xe.WrapWithNote("001_tables.sql", errRows)
		if !strings.Contains(err.Error(), "(001_tables.sql) <- no rows in result set") {
			t.Errorf("unexpected message: %s", err)
		}
	})
}
