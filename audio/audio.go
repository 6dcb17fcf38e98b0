// Package audio enumerates capture devices so a device index can be
// picked and handed to the transcription backend. Capture itself is
// owned by the backend process.
package audio

import "strings"

var btKeywords = []string{
	"airpods", "beats", "bose", "wh-1000", "wf-1000",
	"sony wh-", "sony wf-",
	"jabra", "galaxy buds", "pixel buds", "powerbeats",
	"jbl ", "sennheiser momentum", "plantronics",
	"tozo", "anker soundcore", "skullcandy",
	"bluetooth", " bt ", " bt)", " bt]",
}

func IsBluetooth(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range btKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DeviceInfo describes one capture device. Index is the enumeration
// position, which is what the backend expects as its device argument.
type DeviceInfo struct {
	Index   int
	Name    string
	Default bool
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	Close()
}
