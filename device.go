package paramtable

import (
	"fmt"
	"strings"

	"github.com/q939055502/jy-syzn/internal/layout"
)

// Device selects one of the fixed rendering profiles.
type Device int

// Supported devices.
const (
	Desktop Device = iota
	Tablet
	Phone
)

// Devices lists every device in rendering order.
var Devices = []Device{Desktop, Tablet, Phone}

// String returns the canonical device name.
func (d Device) String() string {
	switch d {
	case Desktop:
		return "desktop"
	case Tablet:
		return "tablet"
	case Phone:
		return "phone"
	default:
		return fmt.Sprintf("Device(%d)", int(d))
	}
}

// CanvasWidth returns the output width in pixels, or 0 for an unknown device.
func (d Device) CanvasWidth() int {
	p, err := d.profile()
	if err != nil {
		return 0
	}
	return p.CanvasWidth
}

// ParseDevice maps a device name to a Device. It accepts "desktop" (alias
// "pc"), "tablet" and "phone", ignoring case and surrounding space.
func ParseDevice(s string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desktop", "pc":
		return Desktop, nil
	case "tablet":
		return Tablet, nil
	case "phone":
		return Phone, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDevice, s)
	}
}

// DeviceNames returns the canonical names of all devices.
func DeviceNames() []string {
	names := make([]string, len(Devices))
	for i, d := range Devices {
		names[i] = d.String()
	}
	return names
}

func (d Device) profile() (layout.Profile, error) {
	switch d {
	case Desktop:
		return layout.Desktop, nil
	case Tablet:
		return layout.Tablet, nil
	case Phone:
		return layout.Phone, nil
	default:
		return layout.Profile{}, fmt.Errorf("%w: %s", ErrUnknownDevice, d)
	}
}
