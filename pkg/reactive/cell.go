// Package reactive provides an observable value cell: single writer,
// many readers, change notification to subscribers.
//
// A Cell replaces "mutate the object in place and let the view notice"
// with an explicit update method, so any binding layer can subscribe:
//
//	c := reactive.NewCell(0)
//	stop := c.Subscribe(func(v int) { fmt.Println("now", v) })
//	c.Set(1) // prints "now 1"
//	c.Set(1) // unchanged, no notification
//	stop()
package reactive

import (
	"reflect"
	"sync"
	"sync/atomic"
)

var lastSubID atomic.Uint64

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// Cell is a reactive value container.
type Cell[T any] struct {
	value   T
	version uint64
	mu      sync.RWMutex

	// equal decides whether a write changed the value.
	// If nil, uses default equality checking.
	equal func(T, T) bool

	subs  []subscriber[T]
	subMu sync.RWMutex
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version returns the number of changes applied so far.
func (c *Cell[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set replaces the value and notifies subscribers if it changed.
func (c *Cell[T]) Set(value T) {
	c.Update(func(T) T { return value })
}

// Update atomically reads and replaces the value.
// The function receives the current value and returns the new one.
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	old := c.value
	next := fn(old)
	changed := !c.equals(old, next)
	if changed {
		c.value = next
		c.version++
	}
	c.mu.Unlock()

	if changed {
		c.notify(next)
	}
}

// WithEquals configures the equality function used by Set and Update.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// Subscribe registers fn to run after every change with the new value.
// The returned function removes the subscription; calling it twice is safe.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	id := lastSubID.Add(1)

	c.subMu.Lock()
	c.subs = append(c.subs, subscriber[T]{id: id, fn: fn})
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(id) })
	}
}

func (c *Cell[T]) unsubscribe(id uint64) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	for i, s := range c.subs {
		if s.id == id {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// notify copies the subscriber list before calling out so subscribers may
// subscribe, unsubscribe or read the cell without deadlocking.
func (c *Cell[T]) notify(value T) {
	c.subMu.RLock()
	subs := make([]subscriber[T], len(c.subs))
	copy(subs, c.subs)
	c.subMu.RUnlock()

	for _, s := range subs {
		s.fn(value)
	}
}

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common scalar types and reflect.DeepEqual for
// everything else.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int64:
		return av == any(b).(int64)
	case uint64:
		return av == any(b).(uint64)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	default:
		return reflect.DeepEqual(a, b)
	}
}
