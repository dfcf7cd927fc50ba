// Package hooks is the extension-point registry generated handlers
// consult around persistence operations. The generated code guarantees
// the invocation order (before-hooks, persistence operation,
// after-hooks) and nothing else; what a hook does is entirely up to
// the registrant.
package hooks

import (
	"context"
	"fmt"
	"sync"
)

// Event is the closed enum of extension points.
type Event uint8

// Extension points, in the order they surround a CRUD operation.
const (
	BeforeCreate Event = iota
	AfterCreate
	BeforeUpdate
	AfterUpdate
	BeforeDelete
	AfterDelete
	endEvents
)

var eventNames = [...]string{
	BeforeCreate: "before_create",
	AfterCreate:  "after_create",
	BeforeUpdate: "before_update",
	AfterUpdate:  "after_update",
	BeforeDelete: "before_delete",
	AfterDelete:  "after_delete",
}

// String returns the event name.
func (e Event) String() string {
	if e < endEvents {
		return eventNames[e]
	}
	return fmt.Sprintf("invalid(%d)", e)
}

// Valid reports if the event is a member of the enum.
func (e Event) Valid() bool {
	return e < endEvents
}

// Func is one hook callback. For before-events, returning an error vetoes
// the operation; for after-events an error aborts the remaining hooks and
// surfaces to the caller, the persistence operation having already
// happened. The data argument is the request payload for before-events
// and the persisted record for after-events.
type Func func(ctx context.Context, entity string, ev Event, data any) error

type hookKey struct {
	entity string
	ev     Event
}

// Registry maps (entity name, event) to an ordered list of hooks.
// Registration order is invocation order. Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	hooks map[hookKey][]Func
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{hooks: make(map[hookKey][]Func)}
}

// Register appends fn to the hook chain of (entity, ev). It returns an
// error for events outside the enum.
func (r *Registry) Register(entity string, ev Event, fn Func) error {
	if !ev.Valid() {
		return fmt.Errorf("hooks: invalid event %s", ev)
	}
	if fn == nil {
		return fmt.Errorf("hooks: nil hook for %s %s", entity, ev)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := hookKey{entity: entity, ev: ev}
	r.hooks[k] = append(r.hooks[k], fn)
	return nil
}

// Hooks returns the registered chain for (entity, ev) in registration
// order. The returned slice is a copy.
func (r *Registry) Hooks(entity string, ev Event) []Func {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chain := r.hooks[hookKey{entity: entity, ev: ev}]
	if len(chain) == 0 {
		return nil
	}
	out := make([]Func, len(chain))
	copy(out, chain)
	return out
}

// Run invokes the chain for (entity, ev) in registration order and stops
// at the first error. An empty chain is a no-op.
func (r *Registry) Run(ctx context.Context, entity string, ev Event, data any) error {
	for _, fn := range r.Hooks(entity, ev) {
		if err := fn(ctx, entity, ev, data); err != nil {
			return fmt.Errorf("hooks: %s hook for %s: %w", ev, entity, err)
		}
	}
	return nil
}
