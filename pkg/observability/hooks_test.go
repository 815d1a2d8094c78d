package observability

import (
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	// Store hooks
	s := NoopStoreHooks{}
	s.OnCommit("frame-1", 2, time.Millisecond)
	s.OnListenerFailure("frame-1", errors.New("boom"))

	// Mode hooks
	m := NoopModeHooks{}
	m.OnModeSwitch("frame-1", "analysis", "doppler")
	m.OnFeatureAdded("frame-1", "analysis", "marker-1")

	// Focus hooks
	f := NoopFocusHooks{}
	f.OnFocusChange("", "frame-1")
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}
	if _, ok := Mode().(NoopModeHooks); !ok {
		t.Error("Mode() should return NoopModeHooks by default")
	}
	if _, ok := Focus().(NoopFocusHooks); !ok {
		t.Error("Focus() should return NoopFocusHooks by default")
	}

	// Set custom hooks
	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	customMode := &testModeHooks{}
	SetModeHooks(customMode)
	if Mode() != customMode {
		t.Error("SetModeHooks should set custom hooks")
	}

	customFocus := &testFocusHooks{}
	SetFocusHooks(customFocus)
	if Focus() != customFocus {
		t.Error("SetFocusHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testStoreHooks{}
	SetStoreHooks(custom)

	// Setting nil should be ignored
	SetStoreHooks(nil)

	if Store() != custom {
		t.Error("SetStoreHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testStoreHooks struct{ NoopStoreHooks }
type testModeHooks struct{ NoopModeHooks }
type testFocusHooks struct{ NoopFocusHooks }
