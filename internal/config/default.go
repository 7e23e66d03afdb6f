package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultRuleKey is the reserved class key that matches any window.
const DefaultRuleKey = "DEFAULT"

// DefaultDocument is written verbatim when no configuration file exists yet.
const DefaultDocument = `# hyprglyph configuration
#
# Rule sections are ordered: the first matching pattern wins. Patterns are
# Go regular expressions matched case-sensitively; prefix with (?i) for
# case-insensitive matching. Take class names from 'hyprctl clients'.

class:
  "DEFAULT": "{class}"
  "(?i)kitty": "term"
  "[Ff]irefox": "browser"

# Title rules take precedence over class rules. The nested keys match the
# window title within the given class.
title_in_class:
  "(?i)kitty":
    "(?i)neomutt": "mail"

# Windows matching a class/title pair are hidden from their workspace label.
# An empty title pattern matches only windows with an empty title.
exclude:
  "(?i)fcitx": ".*"
  "[Ss]team": "^$"

format:
  dedup: false
  delim: " "
  workspace: "{id}:{delim}{clients}"
  workspace_empty: "{id}"
  client: "{icon}"
  client_active: "*{icon}*"
  client_fullscreen: "[{icon}]"
  client_dup: "{client}{counter_sup}"
  client_dup_fullscreen: "[{icon}]{counter_sup}"
`

// EnsureDefault writes the default document to path when the file does not
// exist yet. It reports whether a file was created.
func EnsureDefault(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultDocument), 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}
