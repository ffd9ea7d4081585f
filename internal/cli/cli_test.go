package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToHelp(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.True(t, parsed.ShowHelp)
	require.Equal(t, CommandHelp, parsed.Command)
}

func TestParseCommandWithConfig(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/audioprofiles.jsonc", "doctor"})
	require.NoError(t, err)
	require.Equal(t, CommandDoctor, parsed.Command)
	require.Equal(t, "/tmp/audioprofiles.jsonc", parsed.ConfigPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantArg  string
		wantHelp bool
		wantPath string
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help long flag",
			args:     []string{"--help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "version flag",
			args:     []string{"--version"},
			wantCmd:  CommandVersion,
			wantHelp: false,
		},
		{
			name:    "config after command",
			args:    []string{"status", "--config", "/tmp/cfg"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "extra args after command",
			args:    []string{"doctor", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:    "activate requires an operand",
			args:    []string{"activate"},
			wantErr: "requires an argument",
		},
		{
			name:    "activate with trailing junk",
			args:    []string{"activate", "Work", "extra"},
			wantErr: "unexpected arguments",
		},
		{
			name:     "activate with profile name",
			args:     []string{"activate", "Work"},
			wantCmd:  CommandActivate,
			wantArg:  "Work",
			wantHelp: false,
		},
		{
			name:     "disable with duration",
			args:     []string{"disable", "2h30m"},
			wantCmd:  CommandDisable,
			wantArg:  "2h30m",
			wantHelp: false,
		},
		{
			name:     "valid trigger command",
			args:     []string{"trigger"},
			wantCmd:  CommandTrigger,
			wantHelp: false,
		},
		{
			name:     "valid daemon with config",
			args:     []string{"--config", "/tmp/cfg", "daemon"},
			wantCmd:  CommandDaemon,
			wantHelp: false,
			wantPath: "/tmp/cfg",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantArg, parsed.Arg)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
			require.Equal(t, tc.wantPath, parsed.ConfigPath)
		})
	}
}

func TestHelpTextIncludesCoreCommands(t *testing.T) {
	text := HelpText("audioprofiles")
	require.Contains(t, text, "daemon")
	require.Contains(t, text, "activate <profile>")
	require.Contains(t, text, "disable <duration>")
	require.Contains(t, text, "forget <device-id>")
	require.Contains(t, text, "--config PATH")
}
