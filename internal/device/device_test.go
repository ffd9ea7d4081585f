package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransportFromID(t *testing.T) {
	cases := []struct {
		id   string
		want Transport
	}{
		{"alsa_output.usb-SteelSeries_Arctis_7-00.analog-stereo", TransportUSB},
		{"bluez_output.F8_4D_89_70_2A_11.1", TransportBluetooth},
		{"alsa_output.pci-0000_00_1f.3.analog-stereo", TransportBuiltIn},
		{"alsa_input.platform-sound.stereo-fallback", TransportBuiltIn},
		{"tunnel.remote.example", TransportOther},
	}

	for _, tc := range cases {
		require.Equal(t, tc.want, transportFromID(tc.id), "id %q", tc.id)
	}
}

func TestIsMonitorSource(t *testing.T) {
	require.True(t, isMonitorSource("alsa_output.pci-0000_00_1f.3.analog-stereo.monitor"))
	require.False(t, isMonitorSource("alsa_input.pci-0000_00_1f.3.analog-stereo"))
}

func TestDeviceDisplayName(t *testing.T) {
	require.Equal(t, "Arctis 7", deviceDisplayName(" Arctis 7 ", "alsa_output.usb-x"))
	require.Equal(t, "alsa_output.usb-x", deviceDisplayName("", "alsa_output.usb-x"))
}

func TestRelevantEvent(t *testing.T) {
	require.True(t, relevantEvent("Event 'new' on sink #55"))
	require.True(t, relevantEvent("Event 'remove' on source #3"))
	require.True(t, relevantEvent("Event 'change' on server #0"))
	require.False(t, relevantEvent("Event 'new' on sink-input #12"))
	require.False(t, relevantEvent("Event 'change' on source-output #4"))
	require.False(t, relevantEvent("Event 'change' on client #9"))
}

func TestIDs(t *testing.T) {
	ids := IDs([]AudioDevice{{ID: "a"}, {ID: "b"}})
	require.Len(t, ids, 2)
	_, ok := ids["a"]
	require.True(t, ok)
}
