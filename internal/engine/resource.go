package engine

import (
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// structurallyEqual is the publish gate. Nil and empty collections compare
// equal so a server that flips between them does not churn versions.
func structurallyEqual[T any](a, b T) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}

// View is the read-only snapshot of one cached resource handed to
// consumers. Version increments on every published change, so a consumer
// that saw version N can skip re-deriving anything until the version moves.
type View[T any] struct {
	Value    T
	HasValue bool
	Err      string
	Loading  bool
	Version  uint64
}

// cell holds the live state of one remotely sourced resource. All access
// goes through its methods; the engine never touches fields directly from
// more than one goroutine.
type cell[T any] struct {
	mu      sync.RWMutex
	value   T
	has     bool
	err     string
	loading bool
	version uint64
}

func (c *cell[T]) view() View[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return View[T]{
		Value:    c.value,
		HasValue: c.has,
		Err:      c.err,
		Loading:  c.loading,
		Version:  c.version,
	}
}

// storeValue applies the change-detection gate: when the fetched payload is
// structurally equal to the cached one, the stored value and version stay
// untouched so downstream consumers keyed on the version do not re-run.
// A previously recorded error is cleared either way. Reports whether the
// value was replaced.
func (c *cell[T]) storeValue(v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.err != "" {
		c.err = ""
		c.version++
	}
	if c.has && structurallyEqual(c.value, v) {
		return false
	}
	c.value = v
	c.has = true
	c.version++
	return true
}

// storeError records a failed fetch. The value is reset to the resource's
// disconnected fallback regardless of suppression; the error message is
// only written when suppress is false and the message actually changed.
func (c *cell[T]) storeError(msg string, fallback T, suppress bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if !c.has || !structurallyEqual(c.value, fallback) {
		c.value = fallback
		c.has = true
		c.version++
	}
	if suppress {
		return
	}
	if c.err != msg {
		c.err = msg
		c.version++
	}
}

func (c *cell[T]) setLoading(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = v
}

// Mutation bookkeeping: loading covers the whole mutation envelope, from
// the remote call through the targeted refreshes that follow it.

func (c *cell[T]) beginMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	if c.err != "" {
		c.err = ""
		c.version++
	}
}

func (c *cell[T]) failMutation(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.err != msg {
		c.err = msg
		c.version++
	}
}

func (c *cell[T]) endMutation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
}
