package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zakay/AudioProfiles/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "notifications.command")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-notify")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-notify", "--arg"}, "notifications.command")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "notifications.command command is available")
}

func TestCheckPulseFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkPulse()
	require.False(t, check.Pass)
	require.Equal(t, "pulse", check.Name)
}

func TestCheckStateDirWritable(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	check := checkStateDir()
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "writable at")
}

func TestRunUsesCustomNotifierCommandCheck(t *testing.T) {
	binDir := t.TempDir()
	fakeNotify := filepath.Join(binDir, "fake-notify")
	require.NoError(t, os.WriteFile(fakeNotify, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.Notifications.Command = config.CommandConfig{Raw: "fake-notify", Argv: []string{"fake-notify"}}
	cfg.Hotkeys.Enable = false

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: cfg})
	require.NotEmpty(t, report.Checks)

	var sawNotify, sawBusctl, sawHypr bool
	for _, check := range report.Checks {
		switch check.Name {
		case "fake-notify":
			sawNotify = true
		case "busctl":
			sawBusctl = true
		case "hyprctl":
			sawHypr = true
		}
	}
	require.True(t, sawNotify)
	require.False(t, sawBusctl, "custom command replaces the DBus notifier check")
	require.False(t, sawHypr, "hotkeys disabled skips the hyprctl check")
}

func TestRunChecksBusctlAndHyprctlByDefault(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	report := Run(config.Loaded{Path: "/tmp/config.jsonc", Config: config.Default()})
	require.NotEmpty(t, report.Checks)

	var sawBusctl, sawHypr bool
	for _, check := range report.Checks {
		switch check.Name {
		case "busctl":
			sawBusctl = true
		case "hyprctl":
			sawHypr = true
		}
	}
	require.True(t, sawBusctl)
	require.True(t, sawHypr)
}
