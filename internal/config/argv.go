package config

import (
	"fmt"
	"strings"
	"unicode"
)

// parseArgv splits the notification command string into exec-ready argv
// tokens. Double and single quotes group words, backslash escapes the
// next rune, and a leading '#' comments the whole line out.
func parseArgv(input string) ([]string, error) {
	line := strings.TrimSpace(input)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	var (
		tokens  []string
		token   []rune
		quote   rune
		escaped bool
	)
	emit := func() {
		if len(token) > 0 {
			tokens = append(tokens, string(token))
			token = token[:0]
		}
	}

	for _, r := range line {
		switch {
		case escaped:
			token = append(token, r)
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				token = append(token, r)
			}
		case r == '"' || r == '\'':
			quote = r
		case unicode.IsSpace(r):
			emit()
		default:
			token = append(token, r)
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape at end of command: %q", line)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command: %q", line)
	}

	emit()
	return tokens, nil
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
