// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about state commits, mode switches and focus changes.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the engine free of observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain logs, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    observability.SetFocusHooks(&myFocusHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Store().OnCommit(instanceID, listeners, duration)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from state stores.
type StoreHooks interface {
	// OnCommit records a committed mutation and how long its broadcast took.
	OnCommit(instanceID string, listeners int, duration time.Duration)

	// OnListenerFailure records a listener that panicked during broadcast.
	OnListenerFailure(instanceID string, err error)
}

// =============================================================================
// Mode Hooks
// =============================================================================

// ModeHooks receives events from instance mode handling.
type ModeHooks interface {
	// OnModeSwitch records a change of active mode.
	OnModeSwitch(instanceID, from, to string)

	// OnFeatureAdded records a persistent feature (marker, harmonic set, fit)
	// created in the given mode.
	OnFeatureAdded(instanceID, mode, featureID string)
}

// =============================================================================
// Focus Hooks
// =============================================================================

// FocusHooks receives events from the focus registry.
type FocusHooks interface {
	// OnFocusChange records keyboard focus moving between instances.
	// from is empty when no instance held focus.
	OnFocusChange(from, to string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnCommit(string, int, time.Duration) {}
func (NoopStoreHooks) OnListenerFailure(string, error)     {}

// NoopModeHooks is a no-op implementation of ModeHooks.
type NoopModeHooks struct{}

func (NoopModeHooks) OnModeSwitch(string, string, string)   {}
func (NoopModeHooks) OnFeatureAdded(string, string, string) {}

// NoopFocusHooks is a no-op implementation of FocusHooks.
type NoopFocusHooks struct{}

func (NoopFocusHooks) OnFocusChange(string, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	storeHooks StoreHooks = NoopStoreHooks{}
	modeHooks  ModeHooks  = NoopModeHooks{}
	focusHooks FocusHooks = NoopFocusHooks{}
	hooksMu    sync.RWMutex
)

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any instance is created.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// SetModeHooks registers custom mode hooks.
// This should be called once at application startup before any instance is created.
func SetModeHooks(h ModeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		modeHooks = h
	}
}

// SetFocusHooks registers custom focus hooks.
// This should be called once at application startup before any instance is created.
func SetFocusHooks(h FocusHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		focusHooks = h
	}
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Mode returns the registered mode hooks.
func Mode() ModeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return modeHooks
}

// Focus returns the registered focus hooks.
func Focus() FocusHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return focusHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	storeHooks = NoopStoreHooks{}
	modeHooks = NoopModeHooks{}
	focusHooks = NoopFocusHooks{}
}
