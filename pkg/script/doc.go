// Package script replays recorded pointer and key events against frames.
//
// A scenario is a TOML file with one [[step]] table per event. Points are
// given either in data coordinates (time, freq), in container-local pixels
// (x, y) or, with page = true, in page pixels routed through the focus
// registry the way a browser delivers them:
//
//	name = "doppler fit"
//	instances = ["left", "right"]
//
//	[[step]]
//	action = "mode"
//	instance = "left"
//	mode = "doppler"
//
//	[[step]]
//	action = "down"
//	instance = "left"
//	time = 50
//	freq = 70
//
//	[[step]]
//	action = "up"
//	instance = "left"
//	time = 10
//	freq = 20
//
//	[[step]]
//	action = "expect"
//	instance = "left"
//	expect = { phase = "placed" }
//
// Every step may carry an expect table. It is checked after the step runs
// and a mismatch stops the replay with EXPECTATION_FAILED.
package script
