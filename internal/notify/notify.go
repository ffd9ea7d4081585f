// Package notify delivers profile-switch toasts to the desktop.
package notify

import (
	"context"
	"fmt"
	"log/slog"
)

// Kind classifies why a switch notification fires.
type Kind string

const (
	KindTriggeredSwitch Kind = "triggered_switch"
	KindFallbackSwitch  Kind = "fallback_switch"
	KindManualSwitch    Kind = "manual_switch"
	KindInfo            Kind = "info"
)

// Event is one user-facing switch announcement.
type Event struct {
	Kind        Kind
	ProfileName string
	// Detail names the trigger device for triggered switches, or the
	// lost device for fallbacks, when resolvable.
	Detail string
}

// Summary renders the one-line toast text for an event.
func (e Event) Summary() string {
	switch e.Kind {
	case KindTriggeredSwitch:
		if e.Detail != "" {
			return fmt.Sprintf("Switched to %s (%s connected)", e.ProfileName, e.Detail)
		}
		return fmt.Sprintf("Switched to %s", e.ProfileName)
	case KindFallbackSwitch:
		if e.Detail != "" {
			return fmt.Sprintf("Switched to %s (%s disconnected)", e.ProfileName, e.Detail)
		}
		return fmt.Sprintf("Switched to %s", e.ProfileName)
	case KindManualSwitch:
		return fmt.Sprintf("Activated %s", e.ProfileName)
	case KindInfo:
		return e.Detail
	default:
		return fmt.Sprintf("Audio profile: %s", e.ProfileName)
	}
}

// Notifier delivers switch events. Delivery failures are never fatal.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Notify(context.Context, Event) {}

// Desktop sends freedesktop notifications over DBus via busctl.
type Desktop struct {
	AppName   string
	TimeoutMS int
	Logger    *slog.Logger

	lastID uint32
}

// Notify replaces the previous toast so bursts never stack.
func (d *Desktop) Notify(ctx context.Context, event Event) {
	appName := d.AppName
	if appName == "" {
		appName = "audioprofiles"
	}
	timeout := d.TimeoutMS
	if timeout <= 0 {
		timeout = 2500
	}

	id, err := desktopNotify(ctx, appName, d.lastID, event.Summary(), timeout)
	if err != nil {
		if d.Logger != nil {
			d.Logger.Warn("notification delivery failed", "kind", string(event.Kind), "error", err.Error())
		}
		return
	}
	d.lastID = id
}
