// Package mode defines the contract every interaction mode implements and
// the event and context types handlers receive.
//
// # Dispatch
//
// An instance holds exactly one active [Mode]. Pointer events are delivered
// to it in the order down, move*, up; a pointer-down while a drag is still
// recorded (the up was lost outside the window) cancels the stale drag
// before it is handled. Key events reach the mode only when the focus
// registry routes them to the owning instance.
//
// Switching modes calls [Mode.Cleanup] on the outgoing mode, which clears
// transient interaction state only. Persistent features of every mode stay
// in the state tree and keep being rendered.
//
// # Mutation
//
// Handlers never mutate state directly. They read [Context.State] and apply
// changes through [Context.Commit], which broadcasts a snapshot to
// listeners afterwards.
package mode
