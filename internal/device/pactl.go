package device

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// PactlController sets server defaults through the pactl CLI.
type PactlController struct{}

// SetDefault makes dev the default endpoint for its kind.
func (PactlController) SetDefault(ctx context.Context, kind Kind, dev AudioDevice) error {
	var verb string
	switch kind {
	case KindOutput:
		verb = "set-default-sink"
	case KindInput:
		verb = "set-default-source"
	default:
		return fmt.Errorf("unknown device kind %q", kind)
	}
	return runPactl(ctx, verb, dev.ID)
}

// runPactl executes one pactl invocation, folding stderr into the error.
func runPactl(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "pactl", args...).CombinedOutput()
	if err != nil {
		trimmed := strings.TrimSpace(string(out))
		if trimmed == "" {
			return fmt.Errorf("pactl %v failed: %w", args, err)
		}
		return fmt.Errorf("pactl %v failed: %w (%s)", args, err, trimmed)
	}
	return nil
}

// PactlMonitor follows `pactl subscribe` and re-enumerates on every
// sink/source/server event. Bursts are expected; the consumer debounces.
type PactlMonitor struct {
	Enumerator Enumerator
	Logger     *slog.Logger
}

// Watch streams device snapshots to emit until ctx is cancelled.
func (m PactlMonitor) Watch(ctx context.Context, emit func([]AudioDevice)) error {
	if m.Enumerator == nil {
		return errors.New("pactl monitor requires an enumerator")
	}

	cmd := exec.CommandContext(ctx, "pactl", "subscribe")
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("open pactl subscribe pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start pactl subscribe: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if !relevantEvent(scanner.Text()) {
			continue
		}
		devices, listErr := m.Enumerator.ListCurrentDevices(ctx)
		if listErr != nil {
			if m.Logger != nil {
				m.Logger.Warn("enumerate after change event failed", "error", listErr.Error())
			}
			continue
		}
		emit(devices)
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read pactl subscribe: %w", err)
	}
	if waitErr != nil {
		return fmt.Errorf("pactl subscribe exited: %w", waitErr)
	}
	return nil
}

// relevantEvent keeps sink/source/server lines and drops client/stream noise.
func relevantEvent(line string) bool {
	lower := strings.ToLower(line)
	if !strings.Contains(lower, "event '") {
		return false
	}
	if strings.Contains(lower, "sink-input") || strings.Contains(lower, "source-output") {
		return false
	}
	return strings.Contains(lower, "on sink") ||
		strings.Contains(lower, "on source") ||
		strings.Contains(lower, "on server")
}
