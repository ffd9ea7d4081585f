package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandDaemon   Command = "daemon"
	CommandActivate Command = "activate"
	CommandMode     Command = "mode"
	CommandList     Command = "list"
	CommandDevices  Command = "devices"
	CommandHistory  Command = "history"
	CommandCreate   Command = "create"
	CommandRemove   Command = "remove"
	CommandDisable  Command = "disable"
	CommandEnable   Command = "enable"
	CommandTrigger  Command = "trigger"
	CommandForget   Command = "forget"
	CommandStatus   Command = "status"
	CommandReload   Command = "reload"
	CommandDoctor   Command = "doctor"
	CommandVersion  Command = "version"
	CommandHelp     Command = "help"
)

// commandArity records whether a command takes its one operand.
var commandArity = map[Command]bool{
	CommandDaemon:   false,
	CommandActivate: true,
	CommandMode:     false,
	CommandList:     false,
	CommandDevices:  false,
	CommandHistory:  false,
	CommandCreate:   true,
	CommandRemove:   true,
	CommandDisable:  true,
	CommandEnable:   false,
	CommandTrigger:  false,
	CommandForget:   true,
	CommandStatus:   false,
	CommandReload:   false,
	CommandDoctor:   false,
	CommandVersion:  false,
	CommandHelp:     false,
}

type Parsed struct {
	Command    Command
	Arg        string
	ConfigPath string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			takesArg, ok := commandArity[cmd]
			if !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp

			rest := args[i+1:]
			if takesArg {
				if len(rest) == 0 {
					return Parsed{}, fmt.Errorf("command %q requires an argument", arg)
				}
				parsed.Arg = rest[0]
				rest = rest[1:]
			}
			if len(rest) != 0 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [arg]

Commands:
  daemon              Run the profile-switching daemon
  activate <profile>  Activate a profile by name or ID
  mode                Toggle Public/Private device mode
  list                List profiles, marking the active one
  devices             List currently connected audio devices
  history             List previously seen (disconnected) devices
  create <name>       Create a profile with factory defaults
  remove <profile>    Delete a profile by name or ID
  disable <duration>  Suspend auto-switching (e.g. 1h, 30m, eod, forever)
  enable              Resume auto-switching
  trigger             Force a re-evaluation of connected devices
  forget <device-id>  Remove a device from history and all profiles
  status              Print daemon state
  reload              Re-read profiles from disk
  doctor              Run configuration and environment checks
  version             Print version information
  help                Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/audioprofiles/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
