package io

import (
	"io"
	"sync"
)

// TriggerReader calls callbacks when its base reaches EOF.
type TriggerReader interface {
	io.Reader

	// OnEnd registers callback.
	//
	// If the stream has been exhausted already, callback is called immediately.
	OnEnd(callback func())
}

type triggerReader struct {
	base io.Reader

	mux       sync.Mutex
	onEnd     []func()
	exhausted bool
}

func NewTriggerReader(base io.Reader) TriggerReader {
	return &triggerReader{base: base}
}

func (t *triggerReader) Read(p []byte) (int, error) {
	n, err := t.base.Read(p)
	if err != io.EOF {
		return n, err
	}

	t.mux.Lock()
	callbacks := t.onEnd
	t.onEnd = nil
	t.exhausted = true
	t.mux.Unlock()

	for _, f := range callbacks {
		f()
	}
	return n, err
}

func (t *triggerReader) OnEnd(callback func()) {
	t.mux.Lock()
	if !t.exhausted {
		t.onEnd = append(t.onEnd, callback)
		t.mux.Unlock()
		return
	}
	t.mux.Unlock()
	callback()
}
