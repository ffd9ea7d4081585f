package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Zakay/AudioProfiles/internal/device"
	"github.com/Zakay/AudioProfiles/internal/engine"
	"github.com/Zakay/AudioProfiles/internal/history"
	"github.com/Zakay/AudioProfiles/internal/ipc"
	"github.com/Zakay/AudioProfiles/internal/profile"
	"github.com/Zakay/AudioProfiles/internal/store"
	"github.com/Zakay/AudioProfiles/internal/suspend"
)

// handler maps IPC commands onto the engine. It never panics a request;
// every failure comes back as Response.Error.
type handler struct {
	engine     *engine.Engine
	profiles   *profile.Store
	history    *history.Store
	enumerator device.Enumerator
	store      store.Store
	logger     *slog.Logger
}

func (h handler) Handle(ctx context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case "status":
		return h.status()
	case "activate":
		return h.activate(ctx, req.Arg)
	case "mode":
		return h.mode(ctx)
	case "list":
		return h.list()
	case "devices":
		return h.devices(ctx)
	case "history":
		return h.previouslySeen(ctx)
	case "create":
		return h.create(ctx, req.Arg)
	case "remove":
		return h.remove(ctx, req.Arg)
	case "disable":
		return h.disable(req.Arg)
	case "enable":
		h.engine.EnableAutoSwitching()
		return ipc.Response{OK: true, Message: "auto-switching enabled"}
	case "trigger":
		h.engine.TriggerAutoDetection(ctx)
		snap := h.engine.Snapshot()
		return ipc.Response{OK: true, Message: fmt.Sprintf("re-evaluated; active profile: %s", orNone(snap.ActiveProfileName))}
	case "forget":
		return h.forget(req.Arg)
	case "reload":
		return h.reload(ctx)
	default:
		return ipc.Response{OK: false, Error: fmt.Sprintf("unknown command %q", req.Command)}
	}
}

func (h handler) status() ipc.Response {
	snap := h.engine.Snapshot()

	status := ipc.Status{
		ActiveProfileID:   snap.ActiveProfileID,
		ActiveProfileName: snap.ActiveProfileName,
		Mode:              string(snap.Mode),
		SuspendRemaining:  snap.SuspendRemaining,
	}
	switch snap.SuspendState {
	case suspend.StateDisabledUntil:
		status.AutoSwitching = "disabled until " + snap.SuspendedUntil.Format("15:04")
		status.SuspendedUntil = snap.SuspendedUntil.Format(time.RFC3339)
	case suspend.StateDisabledForever:
		status.AutoSwitching = "disabled until re-enabled"
	default:
		status.AutoSwitching = "enabled"
	}

	return ipc.Response{OK: true, Status: &status}
}

func (h handler) activate(ctx context.Context, arg string) ipc.Response {
	p, err := h.resolveProfile(arg)
	if err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	if err := h.engine.ActivateProfile(ctx, p.ID, true); err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	return ipc.Response{OK: true, Message: "activated " + p.Name}
}

func (h handler) mode(ctx context.Context) ipc.Response {
	h.engine.ToggleMode(ctx)
	snap := h.engine.Snapshot()
	return ipc.Response{OK: true, Message: "mode: " + string(snap.Mode)}
}

func (h handler) list() ipc.Response {
	snap := h.engine.Snapshot()

	profiles := h.engine.Profiles()
	rows := make([]ipc.ProfileInfo, 0, len(profiles))
	for _, p := range profiles {
		rows = append(rows, ipc.ProfileInfo{
			ID:       p.ID.String(),
			Name:     p.Name,
			Active:   p.ID.String() == snap.ActiveProfileID,
			Triggers: len(p.TriggerDeviceIDs),
		})
	}
	return ipc.Response{OK: true, Profiles: rows}
}

func (h handler) devices(ctx context.Context) ipc.Response {
	devices, err := h.enumerator.ListCurrentDevices(ctx)
	if err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	return ipc.Response{OK: true, Devices: deviceRows(devices, nil)}
}

func (h handler) previouslySeen(ctx context.Context) ipc.Response {
	devices := h.engine.PreviouslySeen(ctx)
	return ipc.Response{OK: true, Devices: deviceRows(devices, h.history.Snapshot())}
}

func (h handler) create(ctx context.Context, name string) ipc.Response {
	p := profile.New(strings.TrimSpace(name))
	if err := h.engine.Upsert(ctx, p); err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	return ipc.Response{OK: true, Message: fmt.Sprintf("created %s (id=%s)", p.Name, p.ID)}
}

func (h handler) remove(ctx context.Context, arg string) ipc.Response {
	p, err := h.resolveProfile(arg)
	if err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	if err := h.engine.Remove(ctx, p.ID); err != nil {
		return ipc.Response{OK: false, Error: err.Error()}
	}
	return ipc.Response{OK: true, Message: "removed " + p.Name}
}

func (h handler) disable(arg string) ipc.Response {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "eod":
		h.engine.DisableUntilEndOfDay()
	case "forever":
		h.engine.DisableForever()
	default:
		d, err := time.ParseDuration(arg)
		if err != nil || d <= 0 {
			return ipc.Response{OK: false, Error: fmt.Sprintf("invalid disable duration %q (expected e.g. 1h, 2h30m, eod, forever)", arg)}
		}
		h.engine.DisableFor(d)
	}

	resp := h.status()
	resp.Message = "auto-switching " + resp.Status.AutoSwitching
	return resp
}

func (h handler) forget(id string) ipc.Response {
	if !h.engine.RemoveHistoryDevice(id) {
		return ipc.Response{OK: false, Error: fmt.Sprintf("unknown device %q", id)}
	}
	return ipc.Response{OK: true, Message: "forgot device " + id}
}

func (h handler) reload(ctx context.Context) ipc.Response {
	persisted, err := h.store.LoadProfiles()
	if err != nil {
		return ipc.Response{OK: false, Error: fmt.Sprintf("reload profiles: %v", err)}
	}
	h.engine.ReplaceProfiles(ctx, persisted)
	return ipc.Response{OK: true, Message: fmt.Sprintf("reloaded %d profiles", h.profiles.Len())}
}

func orNone(name string) string {
	if name == "" {
		return "(none)"
	}
	return name
}

// resolveProfile accepts a profile ID or an exact name.
func (h handler) resolveProfile(arg string) (profile.Profile, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return profile.Profile{}, fmt.Errorf("profile name or ID required")
	}

	if id, err := uuid.Parse(arg); err == nil {
		if p, ok := h.profiles.Get(id); ok {
			return p, nil
		}
	}
	if p, ok := h.profiles.GetByName(arg); ok {
		return p, nil
	}
	return profile.Profile{}, fmt.Errorf("no profile named %q", arg)
}

func deviceRows(devices []device.AudioDevice, entries map[string]history.Entry) []ipc.DeviceInfo {
	rows := make([]ipc.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		row := ipc.DeviceInfo{
			ID:        d.ID,
			Name:      d.Name,
			Transport: string(d.Transport),
			Input:     d.IsInput,
			Output:    d.IsOutput,
		}
		if entry, ok := entries[d.ID]; ok {
			row.LastSeen = entry.LastSeen.Format("2006-01-02 15:04")
		}
		rows = append(rows, row)
	}
	return rows
}
