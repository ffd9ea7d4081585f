package notify

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// Command runs a user-configured notifier command for each event, with
// the rendered toast text appended as the final argument.
type Command struct {
	Argv   []string
	Logger *slog.Logger
}

func (c Command) Notify(ctx context.Context, event Event) {
	if len(c.Argv) == 0 {
		return
	}

	args := append(append([]string(nil), c.Argv[1:]...), event.Summary())
	out, err := exec.CommandContext(ctx, c.Argv[0], args...).CombinedOutput()
	if err != nil && c.Logger != nil {
		c.Logger.Warn("notifier command failed",
			"command", c.Argv[0],
			"error", err.Error(),
			"output", strings.TrimSpace(string(out)),
		)
	}
}
