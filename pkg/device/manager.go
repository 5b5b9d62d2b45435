package device

import (
	"cmp"
	"errors"
	"slices"

	"github.com/lla-project/llad/pkg/pluginid"
	"github.com/lla-project/llad/pkg/port"
)

// Manager errors.
var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDuplicateDevice = errors.New("device already registered")
	ErrNoOwner         = errors.New("device has no owning plugin")
)

type deviceKey struct {
	plugin pluginid.ID
	device uint
}

// Manager tracks registered devices.
// It is not safe for concurrent use; the daemon drives it from its control
// loop.
type Manager struct {
	devices map[deviceKey]Device

	onRegistered   func(Device)
	onUnregistered func(Device)
}

// NewManager creates an empty device manager.
func NewManager() *Manager {
	return &Manager{
		devices: make(map[deviceKey]Device),
	}
}

func keyOf(d Device) (deviceKey, error) {
	owner := d.Owner()
	if owner == nil {
		return deviceKey{}, ErrNoOwner
	}
	return deviceKey{plugin: owner.ID(), device: d.DeviceID()}, nil
}

// OnRegistered sets a callback invoked after a device is registered.
func (m *Manager) OnRegistered(fn func(Device)) {
	m.onRegistered = fn
}

// OnUnregistered sets a callback invoked after a device is unregistered.
func (m *Manager) OnUnregistered(fn func(Device)) {
	m.onUnregistered = fn
}

// Register adds a device.
// Returns ErrDuplicateDevice if the (plugin, device) pair is taken.
func (m *Manager) Register(d Device) error {
	key, err := keyOf(d)
	if err != nil {
		return err
	}
	if _, exists := m.devices[key]; exists {
		return ErrDuplicateDevice
	}

	m.devices[key] = d

	if m.onRegistered != nil {
		m.onRegistered(d)
	}
	return nil
}

// Unregister removes a device.
// Returns ErrDeviceNotFound if the device is not registered.
func (m *Manager) Unregister(d Device) error {
	key, err := keyOf(d)
	if err != nil {
		return err
	}
	if existing, exists := m.devices[key]; !exists || existing != d {
		return ErrDeviceNotFound
	}

	delete(m.devices, key)

	if m.onUnregistered != nil {
		m.onUnregistered(d)
	}
	return nil
}

// Device returns a registered device.
func (m *Manager) Device(pluginID pluginid.ID, deviceID uint) (Device, error) {
	d, exists := m.devices[deviceKey{plugin: pluginID, device: deviceID}]
	if !exists {
		return nil, ErrDeviceNotFound
	}
	return d, nil
}

// Devices returns all devices ordered by plugin ID, then device ID.
func (m *Manager) Devices() []Device {
	return m.DevicesOf(pluginid.All)
}

// DevicesOf returns the devices owned by a plugin, or all devices for
// pluginid.All.
func (m *Manager) DevicesOf(pluginID pluginid.ID) []Device {
	keys := make([]deviceKey, 0, len(m.devices))
	for k := range m.devices {
		if pluginID == pluginid.All || k.plugin == pluginID {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b deviceKey) int {
		if c := cmp.Compare(a.plugin, b.plugin); c != 0 {
			return c
		}
		return cmp.Compare(a.device, b.device)
	})

	result := make([]Device, 0, len(keys))
	for _, k := range keys {
		result = append(result, m.devices[k])
	}
	return result
}

// Count returns the number of registered devices.
func (m *Manager) Count() int {
	return len(m.devices)
}

// Ports returns the ports of all devices in device order.
func (m *Manager) Ports() []port.Port {
	var result []port.Port
	for _, d := range m.Devices() {
		result = append(result, d.Ports()...)
	}
	return result
}

// FindPort returns the port with the given unique ID.
func (m *Manager) FindPort(uniqueID string) (port.Port, bool) {
	for _, p := range m.Ports() {
		if id, ok := p.UniqueID(); ok && id == uniqueID {
			return p, true
		}
	}
	return nil, false
}
