// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package opengl

import (
	"runtime"
	"sync"
)

// thread runs functions on a single OS-locked goroutine. OpenGL contexts are
// bound to the thread that made them current, so every GL call of a device
// goes through its thread.
type thread struct {
	calls chan func()
	done  chan struct{}
	once  sync.Once
}

func newThread() *thread {
	t := &thread{calls: make(chan func()), done: make(chan struct{})}
	go t.loop()
	return t
}

func (t *thread) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		select {
		case f := <-t.calls:
			f()
		case <-t.done:
			return
		}
	}
}

// do runs f on the thread and waits for it.
func (t *thread) do(f func()) {
	finished := make(chan struct{})
	t.calls <- func() {
		defer close(finished)
		f()
	}
	<-finished
}

// stop ends the thread after any call in progress.
func (t *thread) stop() {
	t.once.Do(func() { close(t.done) })
}
