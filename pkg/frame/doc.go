// Package frame assembles one annotation instance over a spectrogram image.
//
// A [Frame] owns the canonical state tree, the three interaction modes and
// the last rendered overlay scene. Hosts feed it pointer and key events in
// container-local screen pixels and read state back through listeners,
// [Frame.Snapshot] and [Frame.Scene].
//
// # Lifecycle
//
//	f, err := frame.New(cfg, frame.Image{Width: 800, Height: 400})
//	id := f.AddListener(func(s state.State) { ... })
//	f.Resize(875, 465)
//	f.PointerDown(mode.PointerEvent{X: 460, Y: 215})
//	...
//	f.Close()
//
// An invalid domain does not fail [New]: the frame runs degraded with
// transforms disabled and the problem recorded in [state.State.ConfigError].
// A missing or absurd image size does fail, since nothing can be laid out.
//
// # Concurrency
//
// A Frame is driven by a single event loop and is not safe for concurrent
// use. The focus registry it joins is.
package frame
