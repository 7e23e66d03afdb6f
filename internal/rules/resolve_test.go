package rules

import (
	"testing"

	"github.com/hyprglyph/hyprglyph/internal/config"
)

func setFixture(t *testing.T, doc string) *Set {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return Build(cfg, nil)
}

func TestResolveFlatClassFirstMatchWins(t *testing.T) {
	set := setFixture(t, `
class:
  "fire.*": "first"
  "firefox": "second"
  "DEFAULT": "{class}"
`)
	tok := set.Resolve(Window{Class: "firefox"})
	if tok.Text != "first" {
		t.Fatalf("expected first-declared pattern to win, got %q", tok.Text)
	}
	if tok.Source != SourceClass {
		t.Fatalf("expected class source, got %v", tok.Source)
	}
}

func TestResolveTitleRulePrecedesClassRule(t *testing.T) {
	set := setFixture(t, `
class:
  "kitty": "term"
title_in_class:
  "kitty":
    "neomutt": "mail"
`)
	tok := set.Resolve(Window{Class: "kitty", Title: "neomutt inbox"})
	if tok.Text != "mail" {
		t.Fatalf("expected title rule to take precedence, got %q", tok.Text)
	}
	if tok.Source != SourceTitle {
		t.Fatalf("expected title source, got %v", tok.Source)
	}

	tok = set.Resolve(Window{Class: "kitty", Title: "zsh"})
	if tok.Text != "term" {
		t.Fatalf("expected class fallback when no title matches, got %q", tok.Text)
	}
}

func TestResolveInitialScopesPrecedeCurrent(t *testing.T) {
	set := setFixture(t, `
title_in_class:
  "kitty":
    "zsh": "shell-now"
initial_title_in_initial_class:
  "kitty":
    "zsh": "shell-origin"
`)
	tok := set.Resolve(Window{
		Class:        "kitty",
		InitialClass: "kitty",
		Title:        "zsh",
		InitialTitle: "zsh",
	})
	if tok.Text != "shell-origin" {
		t.Fatalf("expected initial-scoped rule to win, got %q", tok.Text)
	}
}

func TestResolveActiveVariantOnlyForFocusedWindow(t *testing.T) {
	set := setFixture(t, `
class:
  "kitty": "term"
class_active:
  "kitty": "TERM"
`)
	tok := set.Resolve(Window{Class: "kitty", Active: true})
	if tok.Text != "TERM" || !tok.ActiveVariant {
		t.Fatalf("expected active variant for focused window, got %+v", tok)
	}
	tok = set.Resolve(Window{Class: "kitty"})
	if tok.Text != "term" || tok.ActiveVariant {
		t.Fatalf("expected plain variant for unfocused window, got %+v", tok)
	}
}

func TestResolveActiveFallsBackToPlainRules(t *testing.T) {
	set := setFixture(t, `
class:
  "kitty": "term"
class_active:
  "firefox": "WEB"
`)
	tok := set.Resolve(Window{Class: "kitty", Active: true})
	if tok.Text != "term" {
		t.Fatalf("expected fallback to plain rule, got %q", tok.Text)
	}
	if tok.ActiveVariant {
		t.Fatalf("plain-rule fallback must not be marked as active variant")
	}
}

func TestResolveDefaultEntry(t *testing.T) {
	set := setFixture(t, `
class:
  "kitty": "term"
  "DEFAULT": "other"
`)
	tok := set.Resolve(Window{Class: "somethingelse"})
	if tok.Text != "other" || tok.Source != SourceDefault {
		t.Fatalf("expected DEFAULT fallback, got %+v", tok)
	}
}

func TestResolveLiteralClassWhenNothingMatches(t *testing.T) {
	set := setFixture(t, `
class:
  "kitty": "term"
`)
	tok := set.Resolve(Window{Class: "mystery-app"})
	if tok.Text != "mystery-app" || tok.Source != SourceLiteral {
		t.Fatalf("expected literal class fallback, got %+v", tok)
	}
	if len(tok.Captures) != 0 {
		t.Fatalf("literal fallback carries no captures")
	}
}

func TestResolveClassCaptures(t *testing.T) {
	set := setFixture(t, `
class:
  "firefox-(.*)": "FF {match1}"
`)
	tok := set.Resolve(Window{Class: "firefox-nightly"})
	if tok.Captures["match1"] != "nightly" {
		t.Fatalf("expected capture group from class pattern, got %v", tok.Captures)
	}
}

func TestResolveTitleCaptures(t *testing.T) {
	set := setFixture(t, `
title_in_class:
  "firefox":
    "- ([a-z]+) -": "page {match1}"
`)
	tok := set.Resolve(Window{Class: "firefox", Title: "docs - golang - mozilla"})
	if tok.Text != "page {match1}" {
		t.Fatalf("unexpected template %q", tok.Text)
	}
	if tok.Captures["match1"] != "golang" {
		t.Fatalf("expected title capture, got %v", tok.Captures)
	}
}

func TestResolveFirstMatchingTitleGroupIsDecisive(t *testing.T) {
	set := setFixture(t, `
title_in_class:
  "kit.*":
    "nomatch": "never"
  "kitty":
    ".*": "always"
class:
  "kitty": "term"
`)
	// "kit.*" matches the class first; its titles fail, and the scope does
	// not fall through to the "kitty" group.
	tok := set.Resolve(Window{Class: "kitty", Title: "zsh"})
	if tok.Text != "term" {
		t.Fatalf("expected class fallback after decisive group miss, got %q", tok.Text)
	}
}

func TestExcludes(t *testing.T) {
	set := setFixture(t, `
exclude:
  "(?i)fcitx": ".*"
  "steam": "^$"
  "testapp": ""
`)
	tests := []struct {
		name   string
		window Window
		want   bool
	}{
		{"class and any title", Window{Class: "Fcitx5", Title: "panel"}, true},
		{"any title includes empty", Window{Class: "fcitx", Title: ""}, true},
		{"empty pattern matches empty title", Window{Class: "steam", Title: ""}, true},
		{"empty pattern rejects non-empty title", Window{Class: "steam", Title: "Friends List"}, false},
		{"omitted pattern matches only empty title", Window{Class: "testapp", Title: ""}, true},
		{"omitted pattern rejects non-empty title", Window{Class: "testapp", Title: "settings"}, false},
		{"class mismatch", Window{Class: "kitty", Title: ""}, false},
	}
	for _, tc := range tests {
		if got := set.Excludes(tc.window); got != tc.want {
			t.Fatalf("%s: Excludes = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestBuildDegradesInvalidPatternToNeverMatch(t *testing.T) {
	set := setFixture(t, `
class:
  "(broken": "bad"
  "kitty": "term"
`)
	tok := set.Resolve(Window{Class: "kitty"})
	if tok.Text != "term" {
		t.Fatalf("valid rules must survive an invalid sibling, got %q", tok.Text)
	}
	tok = set.Resolve(Window{Class: "(broken"})
	if tok.Text != "(broken" || tok.Source != SourceLiteral {
		t.Fatalf("invalid rule must never match, got %+v", tok)
	}
}

func TestWorkspaceName(t *testing.T) {
	set := setFixture(t, `
workspaces_name:
  "1": "web"
  "2": "mail"
`)
	if got := set.WorkspaceName(1); got != "web" {
		t.Fatalf("WorkspaceName(1) = %q", got)
	}
	if got := set.WorkspaceName(9); got != "9" {
		t.Fatalf("WorkspaceName(9) = %q, want id fallback", got)
	}
}
