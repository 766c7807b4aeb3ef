// Package device declares the collaborator contracts the event aggregator
// consumes: an Adapter that publishes radio, scan and connection events, and
// the Device/Characteristic/Descriptor streams a connected peripheral exposes.
//
// Producers live elsewhere (see internal/goble for the go-ble backend and
// internal/testutils for in-memory fakes).
package device
