package dmx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// UniverseSize is the number of channels in a full frame.
const UniverseSize = 512

// Buffer errors.
var (
	ErrChannelOutOfRange = errors.New("channel out of range")
	ErrFrameTooLarge     = errors.New("frame exceeds universe size")
)

// Buffer is a fixed-capacity frame of channel values.
// The zero value is an empty frame ready to use.
type Buffer struct {
	data [UniverseSize]byte
	size int
}

// NewBuffer creates a buffer holding a copy of data, truncated to
// UniverseSize channels.
func NewBuffer(data []byte) *Buffer {
	b := &Buffer{}
	b.Set(data)
	return b
}

// Set replaces the frame with a copy of data.
// Data beyond UniverseSize is dropped.
func (b *Buffer) Set(data []byte) {
	n := copy(b.data[:], data)
	clear(b.data[n:])
	b.size = n
}

// SetFrom replaces the frame with the contents of another buffer.
func (b *Buffer) SetFrom(other *Buffer) {
	if other == nil {
		b.Reset()
		return
	}
	b.data = other.data
	b.size = other.size
}

// SetChannel sets a single channel, growing the frame if needed.
// Channels between the old size and ch are zero.
func (b *Buffer) SetChannel(ch uint16, value byte) error {
	if int(ch) >= UniverseSize {
		return ErrChannelOutOfRange
	}
	b.data[ch] = value
	if int(ch) >= b.size {
		b.size = int(ch) + 1
	}
	return nil
}

// Channel returns the value of a channel, or 0 beyond the frame size.
func (b *Buffer) Channel(ch uint16) byte {
	if int(ch) >= b.size {
		return 0
	}
	return b.data[ch]
}

// Data returns a copy of the frame.
func (b *Buffer) Data() []byte {
	out := make([]byte, b.size)
	copy(out, b.data[:b.size])
	return out
}

// Size returns the number of channels in the frame.
func (b *Buffer) Size() int {
	return b.size
}

// Reset empties the frame.
func (b *Buffer) Reset() {
	b.data = [UniverseSize]byte{}
	b.size = 0
}

// Equal reports whether two buffers hold the same frame.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil {
		return b.size == 0
	}
	return b.size == other.size && b.data == other.data
}

// String returns the frame as comma separated channel values.
func (b *Buffer) String() string {
	var sb strings.Builder
	for i := 0; i < b.size; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(b.data[i])))
	}
	return sb.String()
}

// MarshalCBOR encodes the frame as a CBOR byte string.
func (b Buffer) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(b.data[:b.size])
}

// UnmarshalCBOR decodes a frame encoded by MarshalCBOR.
func (b *Buffer) UnmarshalCBOR(data []byte) error {
	var raw []byte
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) > UniverseSize {
		return ErrFrameTooLarge
	}
	b.Set(raw)
	return nil
}
