package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hyprglyph/hyprglyph/internal/state"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

// Dispatcher issues hyprctl dispatch commands.
type Dispatcher interface {
	Dispatch(args ...string) error
}

// Client wraps hyprctl shell-outs.
type Client struct {
	Binary string
}

// NewClient returns a hyprctl client using the binary on PATH.
func NewClient() *Client {
	return &Client{Binary: "hyprctl"}
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("hyprctl %s: %v: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

func (c *Client) queryJSON(ctx context.Context, topic string) ([]byte, error) {
	return c.run(ctx, "-j", topic)
}

// ListClients returns all clients. Windows without a PID are transient
// surfaces Hyprland reports before mapping finishes; they are skipped.
func (c *Client) ListClients(ctx context.Context) ([]state.Client, error) {
	data, err := c.queryJSON(ctx, "clients")
	if err != nil {
		return nil, err
	}
	var raw []struct {
		Address      string `json:"address"`
		Class        string `json:"class"`
		InitialClass string `json:"initialClass"`
		Title        string `json:"title"`
		InitialTitle string `json:"initialTitle"`
		Workspace    struct {
			ID int `json:"id"`
		} `json:"workspace"`
		PID        int `json:"pid"`
		Fullscreen int `json:"fullscreen"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode clients: %w", err)
	}
	clients := make([]state.Client, 0, len(raw))
	for _, cl := range raw {
		if cl.PID <= 0 {
			continue
		}
		clients = append(clients, state.Client{
			Address:      cl.Address,
			Class:        cl.Class,
			InitialClass: cl.InitialClass,
			Title:        cl.Title,
			InitialTitle: cl.InitialTitle,
			WorkspaceID:  cl.Workspace.ID,
			Fullscreen:   cl.Fullscreen != 0,
		})
	}
	return clients, nil
}

// ListWorkspaces returns workspaces.
func (c *Client) ListWorkspaces(ctx context.Context) ([]state.Workspace, error) {
	data, err := c.queryJSON(ctx, "workspaces")
	if err != nil {
		return nil, err
	}
	var raw []struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Windows int    `json:"windows"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode workspaces: %w", err)
	}
	workspaces := make([]state.Workspace, 0, len(raw))
	for _, ws := range raw {
		workspaces = append(workspaces, state.Workspace{
			ID:      ws.ID,
			Name:    ws.Name,
			Windows: ws.Windows,
		})
	}
	return workspaces, nil
}

// ActiveWorkspaceID returns currently focused workspace id.
func (c *Client) ActiveWorkspaceID(ctx context.Context) (int, error) {
	data, err := c.queryJSON(ctx, "activeworkspace")
	if err != nil {
		return 0, err
	}
	var payload struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("decode activeworkspace: %w", err)
	}
	return payload.ID, nil
}

// ActiveClientAddress returns active client address.
func (c *Client) ActiveClientAddress(ctx context.Context) (string, error) {
	data, err := c.queryJSON(ctx, "activewindow")
	if err != nil {
		return "", err
	}
	var payload struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("decode activewindow: %w", err)
	}
	return payload.Address, nil
}

// Dispatch invokes `hyprctl dispatch`.
func (c *Client) Dispatch(args ...string) error {
	ctx := context.Background()
	dispatchArgs := append([]string{"dispatch"}, args...)
	_, err := c.run(ctx, dispatchArgs...)
	return err
}

var _ state.DataSource = (*Client)(nil)
var _ Dispatcher = (*Client)(nil)

// DispatchStrategy describes how dispatch commands are issued to Hyprland.
type DispatchStrategy string

const (
	// DispatchStrategySocket uses the Hyprland command socket directly.
	DispatchStrategySocket DispatchStrategy = "socket"
	// DispatchStrategyHyprctl shells out to the hyprctl binary.
	DispatchStrategyHyprctl DispatchStrategy = "hyprctl"
)

// EngineClient pairs the hyprctl data source with a dispatcher strategy.
type EngineClient struct {
	*Client
	dispatcher Dispatcher
}

// Dispatch forwards dispatch requests to the active dispatcher.
func (c *EngineClient) Dispatch(args ...string) error {
	if c.dispatcher != nil {
		return c.dispatcher.Dispatch(args...)
	}
	return c.Client.Dispatch(args...)
}

// NewEngineClient returns a client suitable for the renamer using the requested strategy when possible.
func NewEngineClient(logger *util.Logger, requested DispatchStrategy) (*EngineClient, DispatchStrategy, error) {
	base := NewClient()
	switch requested {
	case DispatchStrategySocket:
		disp, err := newSocketDispatcher()
		if err != nil {
			if logger != nil {
				logger.Warnf("falling back to hyprctl dispatch: %v", err)
			}
			return &EngineClient{Client: base}, DispatchStrategyHyprctl, nil
		}
		if logger != nil {
			logger.Debugf("using socket dispatch at %s", disp.DispatchSocketPath())
		}
		return &EngineClient{Client: base, dispatcher: disp}, DispatchStrategySocket, nil
	case DispatchStrategyHyprctl:
		return &EngineClient{Client: base}, DispatchStrategyHyprctl, nil
	default:
		return nil, "", fmt.Errorf("unknown dispatch strategy %q", requested)
	}
}

var _ Dispatcher = (*EngineClient)(nil)
