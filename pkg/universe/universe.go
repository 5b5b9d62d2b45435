package universe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lla-project/llad/pkg/dmx"
	"github.com/lla-project/llad/pkg/log"
	"github.com/lla-project/llad/pkg/metrics"
	"github.com/lla-project/llad/pkg/port"
)

// Universe errors.
var (
	ErrPortAlreadyMember = errors.New("port already in universe")
	ErrPortNotMember     = errors.New("port not in universe")
)

// Universe distributes frames between the ports bound to it.
type Universe struct {
	id    uint
	name  string
	ports []port.Port
	data  dmx.Buffer

	events  log.Logger
	metrics *metrics.Metrics
}

// New creates an empty universe.
func New(id uint, name string, events log.Logger, m *metrics.Metrics) *Universe {
	if events == nil {
		events = log.NoopLogger{}
	}
	return &Universe{
		id:      id,
		name:    name,
		events:  events,
		metrics: m,
	}
}

// ID returns the universe ID.
func (u *Universe) ID() uint {
	return u.id
}

// Name returns the universe name.
func (u *Universe) Name() string {
	return u.name
}

// SetName sets the universe name.
func (u *Universe) SetName(name string) {
	u.name = name
}

// AddPort adds p to the member list. It does not bind p; callers also call
// p.SetUniverse.
func (u *Universe) AddPort(p port.Port) error {
	if u.indexOf(p) >= 0 {
		return ErrPortAlreadyMember
	}
	u.ports = append(u.ports, p)
	return nil
}

// RemovePort removes p from the member list.
func (u *Universe) RemovePort(p port.Port) error {
	i := u.indexOf(p)
	if i < 0 {
		return ErrPortNotMember
	}
	u.ports = slices.Delete(u.ports, i, i+1)
	return nil
}

// HasPort reports whether p is a member.
func (u *Universe) HasPort(p port.Port) bool {
	return u.indexOf(p) >= 0
}

func (u *Universe) indexOf(p port.Port) int {
	return slices.IndexFunc(u.ports, func(member port.Port) bool {
		return member == p
	})
}

// Ports returns the member ports in the order they were added.
func (u *Universe) Ports() []port.Port {
	return slices.Clone(u.ports)
}

// PortCount returns the number of member ports.
func (u *Universe) PortCount() int {
	return len(u.ports)
}

// IsActive reports whether any port is bound to the universe.
func (u *Universe) IsActive() bool {
	return len(u.ports) > 0
}

// Data returns the current frame.
func (u *Universe) Data() dmx.Buffer {
	return u.data
}

// SetData replaces the frame with one supplied by a client and writes it
// to every writable port. It returns false if any port refused the frame.
func (u *Universe) SetData(buf *dmx.Buffer) bool {
	u.data.SetFrom(buf)
	ok := u.distribute(nil)

	u.events.Log(log.Event{
		Category:   log.CategoryDMX,
		UniverseID: u.id,
		DMX:        &log.DMXEvent{Direction: log.DirectionClient, Frame: u.data, OK: ok},
	})
	return ok
}

// PortDataChanged adopts the frame of a readable member port and writes it
// to all other writable members. A frame equal to the current one is not
// redistributed.
func (u *Universe) PortDataChanged(p port.Port) bool {
	portID, _ := p.UniqueID()

	if !u.HasPort(p) {
		u.metrics.ObserveNotification(u.id, false)
		u.events.Log(log.Event{
			Category:   log.CategoryError,
			PortID:     portID,
			UniverseID: u.id,
			Error: &log.ErrorEventData{
				Message: ErrPortNotMember.Error(),
				Context: "port data changed",
			},
		})
		return false
	}

	if !p.CanRead() {
		u.metrics.ObserveNotification(u.id, true)
		return true
	}

	frame := p.ReadDMX()
	if frame.Equal(&u.data) {
		u.metrics.ObserveNotification(u.id, true)
		return true
	}

	u.data = frame
	ok := u.distribute(p)
	u.metrics.ObserveNotification(u.id, ok)

	u.events.Log(log.Event{
		Category:   log.CategoryDMX,
		PortID:     portID,
		UniverseID: u.id,
		DMX:        &log.DMXEvent{Direction: log.DirectionIn, Frame: u.data, OK: ok},
	})
	return ok
}

// distribute writes the current frame to every writable member except
// source.
func (u *Universe) distribute(source port.Port) bool {
	ok := true
	for _, p := range u.ports {
		if p == source || !p.CanWrite() {
			continue
		}

		written := p.WriteDMX(&u.data)
		if !written {
			ok = false
			u.metrics.ObserveWriteFailure(u.id)
		}

		portID, _ := p.UniqueID()
		u.events.Log(log.Event{
			Category:   log.CategoryDMX,
			PortID:     portID,
			UniverseID: u.id,
			DMX:        &log.DMXEvent{Direction: log.DirectionOut, Frame: u.data, OK: written},
		})
	}
	return ok
}

// String returns a short description of the universe.
func (u *Universe) String() string {
	return fmt.Sprintf("universe %d (%s)", u.id, u.name)
}

var _ port.Universe = (*Universe)(nil)
