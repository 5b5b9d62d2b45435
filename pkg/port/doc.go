// Package port defines the Port contract shared by every device driver and
// a generic base implementation concrete ports build on.
//
// A port is the daemon's unit of I/O. Each port belongs to exactly one
// device and can be bound to at most one universe at a time:
//
//	Plugin
//	└── Device (plugin-assigned device ID)
//	    ├── Port 0 ──► Universe 1
//	    └── Port 1 ──► (unbound)
//
// # Identity
//
// Ports are identified across restarts by their unique ID, built from the
// owning plugin ID, the device ID and the port ID:
//
//	<pluginID>-<deviceID>-<portID>   e.g. "7-3-2"
//
// A port whose device or plugin is unknown has no unique ID; UniqueID
// reports this with ok == false and such ports cannot have their binding
// persisted.
//
// # Notification
//
// When a port's data changes it calls DMXChanged, which forwards to the
// bound universe's PortDataChanged and returns its result. An unbound port
// reports success without notifying anyone.
//
// # Concurrency
//
// Ports are not safe for concurrent use. All calls must be made from the
// daemon's control loop, which owns ports, devices and universes.
package port

//go:generate mockery
