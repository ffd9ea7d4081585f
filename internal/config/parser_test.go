package config

import (
	"strings"
	"testing"
)

func TestParseEmptyContentKeepsDefaults(t *testing.T) {
	cfg, warnings, err := Parse("", Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Engine.DebounceMS != 500 {
		t.Fatalf("unexpected debounce: %d", cfg.Engine.DebounceMS)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
}

func TestParseRejectsNonObjectContent(t *testing.T) {
	_, _, err := Parse("debounce_ms = 500", Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "JSONC object") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseCommandArgvQuoted(t *testing.T) {
	cfg, _, err := Parse(`{"notifications": {"command": "notify-send --app-name 'Audio Profiles'"}}`, Default())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	got := strings.Join(cfg.Notifications.Command.Argv, "|")
	want := "notify-send|--app-name|Audio Profiles"
	if got != want {
		t.Fatalf("unexpected argv parse: got %q want %q", got, want)
	}
}

func TestParseRejectsUnterminatedCommandQuote(t *testing.T) {
	_, _, err := Parse(`{"notifications": {"command": "notify-send \"oops"}}`, Default())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "unterminated quote") {
		t.Fatalf("unexpected error: %v", err)
	}
}
