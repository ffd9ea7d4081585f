package device

import (
	"context"
	"fmt"
	"strings"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// PulseEnumerator lists sinks and sources through the native Pulse protocol.
// A fresh client is opened per call so a restarted server never strands us
// on a dead connection.
type PulseEnumerator struct {
	AppName string
}

// ListCurrentDevices returns all present sinks and sources, excluding
// monitor-of-sink sources.
func (e PulseEnumerator) ListCurrentDevices(_ context.Context) ([]AudioDevice, error) {
	appName := e.AppName
	if appName == "" {
		appName = "audioprofiles"
	}

	client, err := pulse.NewClient(
		pulse.ClientApplicationName(appName),
		pulse.ClientApplicationIconName("audio-card"),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	defer client.Close()

	var sinkInfos pulseproto.GetSinkInfoListReply
	if err := client.RawRequest(&pulseproto.GetSinkInfoList{}, &sinkInfos); err != nil {
		return nil, fmt.Errorf("list sinks: %w", err)
	}

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	devices := make([]AudioDevice, 0, len(sinkInfos)+len(sourceInfos))
	for _, sink := range sinkInfos {
		if sink == nil {
			continue
		}
		devices = append(devices, AudioDevice{
			ID:        sink.SinkName,
			Name:      deviceDisplayName(sink.Device, sink.SinkName),
			Transport: transportFromID(sink.SinkName),
			IsOutput:  true,
		})
	}
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		if isMonitorSource(source.SourceName) {
			continue
		}
		devices = append(devices, AudioDevice{
			ID:        source.SourceName,
			Name:      deviceDisplayName(source.Device, source.SourceName),
			Transport: transportFromID(source.SourceName),
			IsInput:   true,
		})
	}
	return devices, nil
}

// deviceDisplayName prefers the human description, falling back to the ID.
func deviceDisplayName(description, id string) string {
	description = strings.TrimSpace(description)
	if description != "" {
		return description
	}
	return id
}

// isMonitorSource filters loopback sources that mirror a sink.
func isMonitorSource(name string) bool {
	return strings.HasSuffix(name, ".monitor")
}

// transportFromID classifies an endpoint from its Pulse name, which embeds
// the bus the card was discovered on (e.g. alsa_output.usb-..., bluez_output...).
func transportFromID(id string) Transport {
	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "bluez"), strings.Contains(lower, "bluetooth"):
		return TransportBluetooth
	case strings.Contains(lower, "usb"):
		return TransportUSB
	case strings.Contains(lower, "pci"), strings.Contains(lower, "platform"):
		return TransportBuiltIn
	default:
		return TransportOther
	}
}
