// Package errors marks errors with the function which passed them up.
//
// The storage layer wraps every driver error, so that a 500 in the server log tells
// which query failed:
//
//	@ github.com/helixlab/helix/pkg/db/postgres/model.(*modelPG).Get "model.go" l122 <- no rows in result set
package errors

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Caller is where an error is wrapped.
type Caller struct {
	Func string
	File string
	Line int
}

func (c Caller) String() string {
	return fmt.Sprintf(`%s "%s" l%d`, c.Func, filepath.Base(c.File), c.Line)
}

// Traced is an error with the Caller which wrapped it.
type Traced struct {
	Caller Caller
	Note   string
	err    error
}

func (t *Traced) Error() string {
	if t.Note == "" {
		return fmt.Sprintf("@ %s <- %s", t.Caller, t.err)
	}
	return fmt.Sprintf("@ %s (%s) <- %s", t.Caller, t.Note, t.err)
}

func (t *Traced) Unwrap() error {
	return t.err
}

// Wrap marks err with the caller. nil stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	return &Traced{Caller: callerOf(2), err: err}
}

// WrapWithNote is Wrap with a note, like the file being processed.
func WrapWithNote(note string, err error) error {
	if err == nil {
		return nil
	}
	return &Traced{Caller: callerOf(2), Note: note, err: err}
}

func callerOf(skip int) Caller {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return Caller{Func: "?", File: "?", Line: -1}
	}
	c := Caller{Func: "?", File: file, Line: line}
	if fn := runtime.FuncForPC(pc); fn != nil {
		c.Func = fn.Name()
	}
	return c
}
