package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyprglyph/hyprglyph/internal/config"
	"github.com/hyprglyph/hyprglyph/internal/metrics"
	"github.com/hyprglyph/hyprglyph/internal/renamer"
	"github.com/hyprglyph/hyprglyph/internal/rules"
	"github.com/hyprglyph/hyprglyph/internal/state"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

type fakeHyprctl struct {
	clients    []state.Client
	workspaces []state.Workspace
	dispatched [][]string
}

func (f *fakeHyprctl) ListClients(context.Context) ([]state.Client, error) {
	return append([]state.Client(nil), f.clients...), nil
}

func (f *fakeHyprctl) ListWorkspaces(context.Context) ([]state.Workspace, error) {
	return append([]state.Workspace(nil), f.workspaces...), nil
}

func (f *fakeHyprctl) ActiveWorkspaceID(context.Context) (int, error) {
	return 1, nil
}

func (f *fakeHyprctl) ActiveClientAddress(context.Context) (string, error) {
	return "", nil
}

func (f *fakeHyprctl) Dispatch(args ...string) error {
	f.dispatched = append(f.dispatched, append([]string(nil), args...))
	return nil
}

const initialConfig = `
class:
  firefox: FF
format:
  workspace: "{id}: {clients}"
`

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func setupReloader(t *testing.T, hypr *fakeHyprctl) (*reloader, string) {
	t.Helper()
	path := writeConfig(t, t.TempDir(), initialConfig)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	logger := util.NewLoggerWithWriter(util.LevelError, io.Discard)
	collector := metrics.NewCollector(true)
	ren := renamer.New(hypr, logger, rules.Build(cfg, logger), false, collector)
	if err := ren.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return newReloader(logger, path, ren, collector, []byte(initialConfig)), path
}

func TestReloadSwapsRules(t *testing.T) {
	hypr := &fakeHyprctl{
		clients: []state.Client{
			{Address: "0x1", Class: "firefox", InitialClass: "firefox", WorkspaceID: 1},
		},
		workspaces: []state.Workspace{{ID: 1, Name: "1", Windows: 1}},
	}
	rel, path := setupReloader(t, hypr)

	updated := `
class:
  firefox: WEB
format:
  workspace: "{id}: {clients}"
`
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := rel.reload(context.Background(), "test"); err != nil {
		t.Fatalf("reload: %v", err)
	}
	last := hypr.dispatched[len(hypr.dispatched)-1]
	if len(last) != 3 || last[2] != "1: WEB" {
		t.Fatalf("expected relabel with new rules, got %v", last)
	}
}

func TestReloadRejectsBrokenConfigAndKeepsRules(t *testing.T) {
	hypr := &fakeHyprctl{
		clients: []state.Client{
			{Address: "0x1", Class: "firefox", InitialClass: "firefox", WorkspaceID: 1},
		},
		workspaces: []state.Workspace{{ID: 1, Name: "1", Windows: 1}},
	}
	rel, path := setupReloader(t, hypr)
	before := len(hypr.dispatched)

	broken := "class: [not, a, mapping]\n"
	if err := os.WriteFile(path, []byte(broken), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := rel.reload(context.Background(), "test"); err == nil {
		t.Fatalf("expected reload error for broken config")
	}
	if len(hypr.dispatched) != before {
		t.Fatalf("broken reload must not relabel, got %v", hypr.dispatched[before:])
	}

	// The old rules stay in effect for later passes.
	if err := rel.ren.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	labels := rel.ren.LastLabels()
	if labels[1] != "1: FF" {
		t.Fatalf("expected previous rules to survive, labels %v", labels)
	}
}
