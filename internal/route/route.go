// Package route derives page parameters from a console navigation path such as
// "/space/7/hardware/abc%20123".
package route

import (
	"net/url"
	"strconv"
	"strings"
)

// Literal path markers. The identifier is the segment that follows the marker.
const (
	SpaceSegment    = "space"
	HardwareSegment = "hardware"
	TTSSegment      = "tts"
)

// Params holds identifiers read from a navigation path. Zero values mean the
// identifier was absent or malformed.
type Params struct {
	SpaceID  uint64
	DeviceID string
}

// HasSpace reports whether a usable space id was present.
func (p Params) HasSpace() bool { return p.SpaceID != 0 }

// Provider supplies the current route parameters to a page.
type Provider interface {
	Params() Params
}

// Static is a Provider with fixed parameters.
type Static Params

// Params implements Provider.
func (s Static) Params() Params { return Params(s) }

// Path is a Provider that parses a navigation path on every call.
type Path string

// Params implements Provider.
func (p Path) Params() Params { return Parse(string(p)) }

// Parse extracts the space id and the percent-decoded device id from path.
func Parse(path string) Params {
	segs := strings.Split(path, "/")

	var p Params
	if raw, ok := after(segs, SpaceSegment); ok {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			p.SpaceID = id
		}
	}
	if raw, ok := after(segs, HardwareSegment); ok {
		if dev, err := url.PathUnescape(raw); err == nil {
			p.DeviceID = dev
		}
	}
	return p
}

// Page identifies which console page a path addresses.
type Page int

const (
	PageUnknown Page = iota
	PageDevices
	PageDeviceDetail
	PageAppTTS
)

func (p Page) String() string {
	switch p {
	case PageDevices:
		return "devices"
	case PageDeviceDetail:
		return "device-detail"
	case PageAppTTS:
		return "app-tts"
	default:
		return "unknown"
	}
}

// PageFor picks the page for a navigation path.
func PageFor(path string) Page {
	segs := strings.Split(strings.TrimRight(path, "/"), "/")
	if dev, ok := after(segs, HardwareSegment); ok && dev != "" {
		return PageDeviceDetail
	}
	for _, s := range segs {
		switch s {
		case HardwareSegment:
			return PageDevices
		case TTSSegment:
			return PageAppTTS
		}
	}
	return PageUnknown
}

// after returns the segment following the first occurrence of marker.
func after(segs []string, marker string) (string, bool) {
	for i, s := range segs {
		if s == marker {
			if i+1 < len(segs) {
				return segs[i+1], true
			}
			return "", true
		}
	}
	return "", false
}
