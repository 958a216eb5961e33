package video

import (
	"sync"
	"sync/atomic"
)

// StatusBoard holds the latest human readable progress message. Writes are
// last-write-wins and reads never block writers.
type StatusBoard struct {
	current atomic.Pointer[string]

	mu        sync.Mutex
	nextID    int
	listeners map[int]func(string)
}

// DefaultStatus is the process-wide board used when none is injected.
var DefaultStatus = NewStatusBoard("Ready")

func NewStatusBoard(initial string) *StatusBoard {
	b := &StatusBoard{listeners: make(map[int]func(string))}
	b.current.Store(&initial)
	return b
}

// Get returns the most recent message.
func (b *StatusBoard) Get() string {
	if b == nil {
		return ""
	}
	if p := b.current.Load(); p != nil {
		return *p
	}
	return ""
}

// Set replaces the message and notifies listeners synchronously.
func (b *StatusBoard) Set(msg string) {
	if b == nil {
		return
	}
	b.current.Store(&msg)

	b.mu.Lock()
	fns := make([]func(string), 0, len(b.listeners))
	for _, fn := range b.listeners {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
}

// OnChange registers fn for every subsequent Set. The returned func removes it.
func (b *StatusBoard) OnChange(fn func(string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}
