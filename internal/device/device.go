// Package device defines audio endpoint values and the collaborator
// surfaces used to enumerate, watch, and control them.
package device

import "context"

// Transport classifies how an audio endpoint is attached to the machine.
type Transport string

const (
	TransportBuiltIn   Transport = "builtin"
	TransportUSB       Transport = "usb"
	TransportBluetooth Transport = "bluetooth"
	TransportOther     Transport = "other"
)

// Kind selects which default endpoint a control operation targets.
type Kind string

const (
	KindInput  Kind = "input"
	KindOutput Kind = "output"
)

// AudioDevice is one audio endpoint. Identity is the hardware-persistent
// ID (the Pulse sink/source name), never a transient server index.
type AudioDevice struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Transport Transport `json:"transport"`
	IsInput   bool      `json:"is_input"`
	IsOutput  bool      `json:"is_output"`
}

// Enumerator lists the devices currently present on the audio server.
type Enumerator interface {
	ListCurrentDevices(ctx context.Context) ([]AudioDevice, error)
}

// Monitor emits a full current-device snapshot whenever the audio server
// reports a hardware change. Watch blocks until ctx is cancelled.
type Monitor interface {
	Watch(ctx context.Context, emit func([]AudioDevice)) error
}

// Controller applies one device as the server default for its kind.
type Controller interface {
	SetDefault(ctx context.Context, kind Kind, dev AudioDevice) error
}

// IDs projects a device list onto its identity set.
func IDs(devices []AudioDevice) map[string]struct{} {
	out := make(map[string]struct{}, len(devices))
	for _, d := range devices {
		out[d.ID] = struct{}{}
	}
	return out
}
