package control

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/hyprglyph/hyprglyph/internal/metrics"
)

const (
	// SocketFileName is the filename of the control socket within the runtime dir.
	SocketFileName = "control.sock"

	// Action names supported by the control protocol.
	ActionStatus  = "status"
	ActionPreview = "preview"
	ActionReload  = "reload"
	ActionMetrics = "metrics"
	ActionRefresh = "refresh"

	// Response statuses.
	StatusOK    = "ok"
	StatusError = "error"
)

// Request represents a control API request.
type Request struct {
	Action string         `json:"action"`
	Params map[string]any `json:"params,omitempty"`
}

// Response represents a control API response.
type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	Data   any    `json:"data,omitempty"`
}

// RuleCounts summarizes the compiled rule set generation in use.
type RuleCounts struct {
	Class              int `json:"class"`
	ClassActive        int `json:"classActive"`
	InitialClass       int `json:"initialClass"`
	InitialClassActive int `json:"initialClassActive"`
	TitleGroups        int `json:"titleGroups"`
	TitleGroupsActive  int `json:"titleGroupsActive"`
	Exclude            int `json:"exclude"`
	WorkspaceNames     int `json:"workspaceNames"`
}

// StatusInfo describes the daemon's current labeling state.
type StatusInfo struct {
	ConfigPath      string         `json:"configPath"`
	DryRun          bool           `json:"dryRun"`
	KnownWorkspaces []int          `json:"knownWorkspaces"`
	Labels          map[int]string `json:"labels,omitempty"`
	Rules           RuleCounts     `json:"rules"`
}

// WorkspaceLabel is one previewed workspace rename.
type WorkspaceLabel struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Clients int    `json:"clients"`
}

// PreviewResult captures the labels the daemon would dispatch right now.
type PreviewResult struct {
	Workspaces []WorkspaceLabel `json:"workspaces"`
}

// MetricsSnapshot mirrors the collector payload returned by the daemon.
type MetricsSnapshot = metrics.Snapshot

// DefaultSocketPath returns the expected location of the hyprglyph control socket.
func DefaultSocketPath() (string, error) {
	if env := os.Getenv("HYPRGLYPH_CONTROL_SOCKET"); env != "" {
		return env, nil
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	base := runtimeDir
	if base == "" {
		base = os.TempDir()
		if base == "" {
			return "", errors.New("no runtime directory available")
		}
	}
	return filepath.Join(base, "hyprglyph", SocketFileName), nil
}
