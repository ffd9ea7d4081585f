package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/Zakay/AudioProfiles/internal/cli"
	"github.com/Zakay/AudioProfiles/internal/config"
	"github.com/Zakay/AudioProfiles/internal/doctor"
	"github.com/Zakay/AudioProfiles/internal/ipc"
	"github.com/Zakay/AudioProfiles/internal/logging"
	"github.com/Zakay/AudioProfiles/internal/version"
)

const binaryName = "audioprofiles"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDaemon:
		return r.runDaemon(ctx, cfgLoaded, logger)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandList:
		return r.commandList(ctx)
	case cli.CommandDevices:
		return r.commandDeviceTable(ctx, "devices", "no audio devices found")
	case cli.CommandHistory:
		return r.commandDeviceTable(ctx, "history", "no remembered devices")
	case cli.CommandActivate, cli.CommandMode, cli.CommandCreate, cli.CommandRemove,
		cli.CommandDisable, cli.CommandEnable, cli.CommandTrigger, cli.CommandForget,
		cli.CommandReload:
		return r.forwardOrFail(ctx, string(parsed.Command), parsed.Arg)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandStatus(ctx context.Context) int {
	resp, exit := r.forward(ctx, "status", "")
	if exit != 0 {
		return exit
	}
	if resp.Status == nil {
		fmt.Fprintln(r.Stderr, "error: daemon returned no status")
		return 1
	}

	name := resp.Status.ActiveProfileName
	if name == "" {
		name = "(none)"
	}
	fmt.Fprintf(r.Stdout, "profile: %s\n", name)
	fmt.Fprintf(r.Stdout, "mode: %s\n", resp.Status.Mode)
	fmt.Fprintf(r.Stdout, "auto-switching: %s\n", resp.Status.AutoSwitching)
	if resp.Status.SuspendRemaining != "" {
		fmt.Fprintf(r.Stdout, "resumes in: %s\n", resp.Status.SuspendRemaining)
	}
	return 0
}

func (r Runner) commandList(ctx context.Context) int {
	resp, exit := r.forward(ctx, "list", "")
	if exit != 0 {
		return exit
	}

	for _, p := range resp.Profiles {
		activeMark := " "
		if p.Active {
			activeMark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %s | id=%s | triggers=%d\n", activeMark, p.Name, p.ID, p.Triggers)
	}
	return 0
}

func (r Runner) commandDeviceTable(ctx context.Context, command, emptyMessage string) int {
	resp, exit := r.forward(ctx, command, "")
	if exit != 0 {
		return exit
	}
	if len(resp.Devices) == 0 {
		fmt.Fprintln(r.Stdout, emptyMessage)
		return 0
	}

	for _, d := range resp.Devices {
		kinds := make([]string, 0, 2)
		if d.Output {
			kinds = append(kinds, "output")
		}
		if d.Input {
			kinds = append(kinds, "input")
		}
		row := fmt.Sprintf("%s | %s | %s | id=%s", d.Name, d.Transport, strings.Join(kinds, "+"), d.ID)
		if d.LastSeen != "" {
			row += " | last seen " + d.LastSeen
		}
		fmt.Fprintln(r.Stdout, row)
	}
	return 0
}

// forwardOrFail forwards one command to the daemon and prints its message.
func (r Runner) forwardOrFail(ctx context.Context, command, arg string) int {
	resp, exit := r.forward(ctx, command, arg)
	if exit != 0 {
		return exit
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) forward(ctx context.Context, command, arg string) (ipc.Response, int) {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return ipc.Response{}, 1
	}

	resp, handled, err := tryForward(ctx, socketPath, command, arg)
	if !handled {
		fmt.Fprintf(r.Stderr, "error: no running %s daemon (start one with `%s daemon`)\n", binaryName, binaryName)
		return ipc.Response{}, 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return ipc.Response{}, 1
	}
	return resp, 0
}

func tryForward(ctx context.Context, socketPath, command, arg string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command, Arg: arg}, 500*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
