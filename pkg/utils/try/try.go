// Package try shortens "call, then fail on error" in tests and command entrypoints.
//
//	got := try.To(store.Put(ctx, "x.csv", body, "text/csv")).OrFatal(t)
package try

// Fataler stops the program or the test. *testing.T and *log.Logger are.
type Fataler interface {
	Fatal(...any)
}

// Result is a pair of a value and an error, as returned by a function call.
type Result[T any] struct {
	value T
	err   error
}

func To[T any](value T, err error) Result[T] {
	return Result[T]{value: value, err: err}
}

// OrFatal returns the value, or calls ftl.Fatal with the error.
//
// Helper of ftl is called first, if it has.
func (r Result[T]) OrFatal(ftl Fataler) T {
	if r.err == nil {
		return r.value
	}
	if h, ok := ftl.(interface{ Helper() }); ok {
		h.Helper()
	}
	ftl.Fatal(r.err)
	return *new(T)
}
