package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Zakay/AudioProfiles/internal/config"
	"github.com/Zakay/AudioProfiles/internal/device"
	"github.com/Zakay/AudioProfiles/internal/engine"
	"github.com/Zakay/AudioProfiles/internal/history"
	"github.com/Zakay/AudioProfiles/internal/hotkey"
	"github.com/Zakay/AudioProfiles/internal/ipc"
	"github.com/Zakay/AudioProfiles/internal/notify"
	"github.com/Zakay/AudioProfiles/internal/profile"
	"github.com/Zakay/AudioProfiles/internal/store"
)

// runDaemon owns the unix socket for the process lifetime: device
// monitor, hotkey binds, IPC server, and the engine's timers all run
// here until SIGINT/SIGTERM.
func (r Runner) runDaemon(ctx context.Context, cfg config.Loaded, logger *slog.Logger) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8, nil)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: another audioprofiles daemon owns the socket")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	stateDir, err := store.ResolveDir()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	st := store.Store{Dir: stateDir}

	profiles := profile.NewStore()
	persisted, err := st.LoadProfiles()
	if err != nil {
		logger.Warn("load profiles failed; starting with System Default only", "error", err.Error())
	}
	if profiles.Load(persisted) {
		if saveErr := st.SaveProfiles(profiles.List()); saveErr != nil {
			logger.Warn("re-persist normalized profiles failed", "error", saveErr.Error())
		}
	}

	hist := history.NewStore()
	entries, err := st.LoadHistory()
	if err != nil {
		logger.Warn("load device history failed; starting empty", "error", err.Error())
	}
	hist.Load(entries)

	notifier := buildNotifier(cfg.Config, logger)
	registrar := buildRegistrar(cfg.Config, logger)
	enumerator := device.PulseEnumerator{AppName: binaryName}

	eng := engine.New(engine.Options{
		Logger:     logger,
		Profiles:   profiles,
		History:    hist,
		Enumerator: enumerator,
		Controller: device.PactlController{},
		Notifier:   notifier,
		Registrar:  registrar,
		Persist:    st,
		Debounce:   time.Duration(cfg.Config.Engine.DebounceMS) * time.Millisecond,
	})

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.Start(sigCtx)
	r.showOnboarding(sigCtx, st, notifier, logger)

	monitor := device.PactlMonitor{Enumerator: enumerator, Logger: logger}
	go func() {
		if watchErr := monitor.Watch(sigCtx, eng.OnDeviceChange); watchErr != nil && sigCtx.Err() == nil {
			logger.Error("device monitor stopped", "error", watchErr.Error())
		}
	}()

	h := handler{
		engine:     eng,
		profiles:   profiles,
		history:    hist,
		enumerator: enumerator,
		store:      st,
		logger:     logger,
	}

	logger.Info("daemon ready", "socket", socketPath, "state_dir", stateDir)
	if err := ipc.Serve(sigCtx, listener, h); err != nil {
		fmt.Fprintf(r.Stderr, "error: ipc server failed: %v\n", err)
		return 1
	}

	logger.Info("daemon stopped")
	return 0
}

func buildNotifier(cfg config.Config, logger *slog.Logger) notify.Notifier {
	if !cfg.Notifications.Enable {
		return notify.Noop{}
	}
	if len(cfg.Notifications.Command.Argv) > 0 {
		return notify.Command{Argv: cfg.Notifications.Command.Argv, Logger: logger}
	}
	return &notify.Desktop{
		AppName:   cfg.Notifications.AppName,
		TimeoutMS: cfg.Notifications.TimeoutMS,
		Logger:    logger,
	}
}

func buildRegistrar(cfg config.Config, logger *slog.Logger) hotkey.Registrar {
	if !cfg.Hotkeys.Enable {
		return hotkey.Noop{}
	}
	return &hotkey.HyprctlRegistrar{Binary: cfg.Hotkeys.Binary, Logger: logger}
}

// showOnboarding sends the one-time first-run hint.
func (r Runner) showOnboarding(ctx context.Context, st store.Store, notifier notify.Notifier, logger *slog.Logger) {
	state, err := st.LoadState()
	if err != nil || state.OnboardingShown {
		return
	}

	notifier.Notify(ctx, notify.Event{
		Kind:   notify.KindInfo,
		Detail: "Audio Profiles is watching your devices. Create your first profile with `audioprofiles create <name>`.",
	})

	state.OnboardingShown = true
	if err := st.SaveState(state); err != nil {
		logger.Warn("persist onboarding flag failed", "error", err.Error())
	}
}
