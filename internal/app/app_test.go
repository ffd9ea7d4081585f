package app

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zakay/AudioProfiles/internal/ipc"
)

func TestExecuteHelp(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"--help"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Usage:")
	require.Empty(t, stderr.String())
}

func TestExecuteVersion(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"version"}, &stdout, &stderr)
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "audioprofiles")
	require.Empty(t, stderr.String())
}

func TestExecuteUnknownCommand(t *testing.T) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	exitCode := Execute(context.Background(), []string{"definitely-not-a-command"}, &stdout, &stderr)
	require.Equal(t, 2, exitCode)
	require.Contains(t, stderr.String(), "unknown command")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestRunnerForwardedCommandFailsWithoutDaemon(t *testing.T) {
	paths := setupRunnerEnv(t)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "trigger"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stderr.String(), "no running audioprofiles daemon")
}

func TestRunnerForwardsCommandsToDaemon(t *testing.T) {
	paths := setupRunnerEnv(t)
	commands := make(chan string, 8)

	shutdown := startIPCServerForRunnerTest(t, filepath.Join(paths.runtimeDir, "audioprofiles.sock"), func(_ context.Context, req ipc.Request) ipc.Response {
		commands <- req.Command
		switch req.Command {
		case "status":
			return ipc.Response{OK: true, Status: &ipc.Status{ActiveProfileName: "Work", Mode: "public", AutoSwitching: "enabled"}}
		case "activate":
			return ipc.Response{OK: true, Message: "activated " + req.Arg}
		case "list":
			return ipc.Response{OK: true, Profiles: []ipc.ProfileInfo{
				{ID: "id-1", Name: "System Default", Active: false},
				{ID: "id-2", Name: "Work", Active: true, Triggers: 1},
			}}
		default:
			return ipc.Response{OK: false, Error: "unsupported"}
		}
	})
	defer shutdown()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	runner := Runner{Stdout: stdout, Stderr: stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "status"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "profile: Work")
	require.Contains(t, stdout.String(), "auto-switching: enabled")

	stdout.Reset()
	exitCode = runner.Execute(context.Background(), []string{"--config", paths.configPath, "activate", "Work"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "activated Work")

	stdout.Reset()
	exitCode = runner.Execute(context.Background(), []string{"--config", paths.configPath, "list"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "* Work")
	require.Contains(t, stdout.String(), "  System Default")

	got := []string{<-commands, <-commands, <-commands}
	require.ElementsMatch(t, []string{"status", "activate", "list"}, got)
}

func TestRunnerDevicesRendersRows(t *testing.T) {
	paths := setupRunnerEnv(t)

	shutdown := startIPCServerForRunnerTest(t, filepath.Join(paths.runtimeDir, "audioprofiles.sock"), func(_ context.Context, req ipc.Request) ipc.Response {
		require.Equal(t, "devices", req.Command)
		return ipc.Response{OK: true, Devices: []ipc.DeviceInfo{
			{ID: "dock", Name: "Thunderbolt Dock", Transport: "usb", Output: true},
			{ID: "mic", Name: "Desk Mic", Transport: "usb", Input: true},
		}}
	})
	defer shutdown()

	var stdout bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "devices"})
	require.Equal(t, 0, exitCode)
	require.Contains(t, stdout.String(), "Thunderbolt Dock | usb | output | id=dock")
	require.Contains(t, stdout.String(), "Desk Mic | usb | input | id=mic")
}

func TestTryForwardSuccessAndFailureResponses(t *testing.T) {
	runtimeDir := t.TempDir()
	socketPath := filepath.Join(runtimeDir, "audioprofiles.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	serverCtx, cancelServer := context.WithCancel(context.Background())
	serverDone := make(chan error, 1)
	go func() {
		serverDone <- ipc.Serve(serverCtx, listener, ipc.HandlerFunc(func(_ context.Context, req ipc.Request) ipc.Response {
			switch req.Command {
			case "status":
				return ipc.Response{OK: true, Status: &ipc.Status{Mode: "public", AutoSwitching: "enabled"}}
			default:
				return ipc.Response{OK: false, Error: "unsupported"}
			}
		}))
	}()

	resp, handled, err := tryForward(context.Background(), socketPath, "status", "")
	require.True(t, handled)
	require.NoError(t, err)
	require.NotNil(t, resp.Status)
	require.Equal(t, "enabled", resp.Status.AutoSwitching)

	_, handled, err = tryForward(context.Background(), socketPath, "mode", "")
	require.True(t, handled)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported")

	cancelServer()
	require.NoError(t, <-serverDone)
}

func TestTryForwardDoesNotRemoveSocketPathOnForwardFailure(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "audioprofiles.sock")
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	_, handled, err := tryForward(context.Background(), socketPath, "status", "")
	require.False(t, handled)
	require.NoError(t, err)

	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
}

func TestTryForwardTreatsReadFailuresAsHandledErrors(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "audioprofiles.sock")

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn, acceptErr := listener.Accept()
		if acceptErr == nil {
			_ = conn.Close()
		}
	}()

	_, handled, err := tryForward(context.Background(), socketPath, "status", "")
	require.True(t, handled)
	require.Error(t, err)
	require.Contains(t, err.Error(), "forward command \"status\":")

	<-done
	_, statErr := os.Stat(socketPath)
	require.NoError(t, statErr)
	require.NoError(t, listener.Close())
}

func TestRunnerDoctorCommandDispatchesAndPrintsReport(t *testing.T) {
	paths := setupRunnerEnv(t)
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	runner := Runner{Stdout: &stdout, Stderr: &stderr}

	exitCode := runner.Execute(context.Background(), []string{"--config", paths.configPath, "doctor"})
	require.Equal(t, 1, exitCode)
	require.Contains(t, stdout.String(), "config: loaded")
	require.Contains(t, stdout.String(), "pulse")
}

func TestSocketErrorHelpers(t *testing.T) {
	require.False(t, isSocketMissing(nil))
	require.False(t, isConnectionRefused(nil))

	require.True(t, isSocketMissing(os.ErrNotExist))
	require.True(t, isSocketMissing(errors.New("dial unix /tmp/audioprofiles.sock: no such file or directory")))
	require.False(t, isSocketMissing(errors.New("other error")))

	require.True(t, isConnectionRefused(syscall.ECONNREFUSED))
	require.False(t, isConnectionRefused(errors.New("other error")))
}

type runnerPaths struct {
	configPath string
	runtimeDir string
}

func setupRunnerEnv(t *testing.T) runnerPaths {
	t.Helper()

	xdgStateHome := t.TempDir()
	runtimeDir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", xdgStateHome)
	t.Setenv("XDG_RUNTIME_DIR", runtimeDir)

	configPath := filepath.Join(t.TempDir(), "config.jsonc")
	require.NoError(t, os.WriteFile(configPath, []byte("\n"), 0o600))

	return runnerPaths{configPath: configPath, runtimeDir: runtimeDir}
}

func startIPCServerForRunnerTest(t *testing.T, socketPath string, handler func(context.Context, ipc.Request) ipc.Response) func() {
	t.Helper()

	listener, err := net.Listen("unix", socketPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ipc.Serve(ctx, listener, ipc.HandlerFunc(handler))
	}()

	return func() {
		cancel()
		require.NoError(t, <-done)
	}
}
