// Package focus tracks which of several instances on one page receives
// keyboard input.
//
// At most one registered instance is focused at a time. A pointer-down
// inside an instance's container claims focus for it; a pointer-down
// outside every container leaves focus where it was. Key events are
// delivered only to the focused instance.
//
// [Default] is the process-wide registry instances join unless they are
// given their own. All methods are safe for concurrent use.
package focus

import (
	"sync"

	"github.com/matzehuels/gramframe/pkg/coords"
	"github.com/matzehuels/gramframe/pkg/mode"
	"github.com/matzehuels/gramframe/pkg/observability"
)

// Handle is the registry's view of an instance.
type Handle interface {
	// Bounds returns the container box in page coordinates.
	Bounds() coords.Box
	// HandleKey delivers a key event and reports whether it was consumed.
	HandleKey(ev mode.KeyEvent) bool
}

// Registry maps instance ids to handles and tracks the focused id.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]Handle
	order   []string
	focused string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]Handle)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// Register adds or replaces the handle for id.
func (r *Registry) Register(id string, h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[id]; !ok {
		r.order = append(r.order, id)
	}
	r.handles[id] = h
}

// Unregister removes id. If it was focused, no instance is focused
// afterwards.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	if _, ok := r.handles[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.handles, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	wasFocused := r.focused == id
	if wasFocused {
		r.focused = ""
	}
	r.mu.Unlock()

	if wasFocused {
		observability.Focus().OnFocusChange(id, "")
	}
}

// Claim focuses id, revoking focus from every other instance. It reports
// false when id is not registered.
func (r *Registry) Claim(id string) bool {
	r.mu.Lock()
	if _, ok := r.handles[id]; !ok {
		r.mu.Unlock()
		return false
	}
	prev := r.focused
	r.focused = id
	r.mu.Unlock()

	if prev != id {
		observability.Focus().OnFocusChange(prev, id)
	}
	return true
}

// Focused returns the focused instance id, or "" when none is.
func (r *Registry) Focused() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.focused
}

// Registered reports whether id has a handle.
func (r *Registry) Registered(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handles[id]
	return ok
}

// Len returns the number of registered instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handles)
}

// RoutePointerDown claims focus for the first registered instance whose
// container contains page point p. It returns the focused id afterwards and
// whether p hit any container.
func (r *Registry) RoutePointerDown(p coords.Point) (string, bool) {
	r.mu.RLock()
	hit := ""
	for _, id := range r.order {
		if r.handles[id].Bounds().Contains(p) {
			hit = id
			break
		}
	}
	r.mu.RUnlock()

	if hit == "" {
		return r.Focused(), false
	}
	r.Claim(hit)
	return hit, true
}

// DispatchKey delivers ev to the focused instance. It reports false when
// nothing is focused or the instance did not consume the key.
func (r *Registry) DispatchKey(ev mode.KeyEvent) bool {
	r.mu.RLock()
	h, ok := r.handles[r.focused]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	// Called without the lock so handlers may use the registry.
	return h.HandleKey(ev)
}

// Reset unregisters every instance and clears focus.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = make(map[string]Handle)
	r.order = nil
	r.focused = ""
}
