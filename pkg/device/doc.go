// Package device implements the device side of the port model: a Device
// interface for drivers, a reusable Base, and the Manager tracking every
// registered device.
//
// Devices are identified by the pair (plugin ID, device ID). The device ID
// is assigned by the owning plugin and must be stable across restarts for
// port bindings to be restored.
package device
