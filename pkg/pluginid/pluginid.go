// Package pluginid defines the stable plugin identifiers used by llad.
//
// Plugin identifiers appear verbatim in port unique IDs, which are persisted
// to restore port to universe bindings across restarts. Existing values must
// therefore never be renumbered.
package pluginid

import (
	"fmt"
	"strings"
)

// ID identifies a plugin family.
type ID uint8

// Plugin identifiers.
const (
	// All matches every plugin in filters. It is never a plugin's own ID.
	All        ID = 0
	Dummy      ID = 1
	ArtNet     ID = 2
	ShowNet    ID = 3
	EspNet     ID = 4
	UsbPro     ID = 5
	OpenDMX    ID = 6
	SandNet    ID = 7
	StageProfi ID = 8
	Pathport   ID = 9
	Loopback   ID = 10
)

// Last is the highest assigned identifier.
const Last = Loopback

var names = map[ID]string{
	All:        "all",
	Dummy:      "dummy",
	ArtNet:     "artnet",
	ShowNet:    "shownet",
	EspNet:     "espnet",
	UsbPro:     "usbpro",
	OpenDMX:    "opendmx",
	SandNet:    "sandnet",
	StageProfi: "stageprofi",
	Pathport:   "pathport",
	Loopback:   "loopback",
}

// String returns the short plugin name.
func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("plugin(%d)", uint8(id))
}

// Parse returns the ID for a short plugin name (case-insensitive).
func Parse(name string) (ID, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for id, n := range names {
		if n == name {
			return id, true
		}
	}
	return All, false
}
