package port

// PortInfo is a snapshot of a port for status reporting.
type PortInfo struct {
	PortID      uint   `json:"port_id" cbor:"1,keyasint"`
	UniqueID    string `json:"unique_id,omitempty" cbor:"2,keyasint,omitempty"`
	Description string `json:"description,omitempty" cbor:"3,keyasint,omitempty"`
	CanRead     bool   `json:"can_read" cbor:"4,keyasint"`
	CanWrite    bool   `json:"can_write" cbor:"5,keyasint"`
	Bound       bool   `json:"bound" cbor:"6,keyasint"`
	UniverseID  uint   `json:"universe_id,omitempty" cbor:"7,keyasint,omitempty"`
}

// identified is implemented by universes that expose a numeric ID.
type identified interface {
	ID() uint
}

// Info returns a snapshot of p.
func Info(p Port) PortInfo {
	info := PortInfo{
		PortID:      p.PortID(),
		Description: p.Description(),
		CanRead:     p.CanRead(),
		CanWrite:    p.CanWrite(),
	}
	if id, ok := p.UniqueID(); ok {
		info.UniqueID = id
	}
	if u := p.Universe(); u != nil {
		info.Bound = true
		if withID, ok := u.(identified); ok {
			info.UniverseID = withID.ID()
		}
	}
	return info
}
