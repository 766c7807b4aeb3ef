// Package event provides the push-based stream primitives shared by BLE
// producers and consumers:
//   - Handle: a cancelable tap with idempotent release
//   - Stream: anything that can be tapped with a value and an error callback
//   - Feed: an in-process producer that fans values out to its taps inline
//   - Bundle: a growable set of handles released together
package event
