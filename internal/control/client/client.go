package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/hyprglyph/hyprglyph/internal/control"
)

const (
	// defaultTimeout is used when the caller does not provide a context deadline.
	defaultTimeout = 3 * time.Second
)

// Client talks to the running hyprglyph daemon over its control socket.
type Client struct {
	socketPath string
}

type (
	// StatusInfo describes the daemon's current labeling state.
	StatusInfo = control.StatusInfo
	// WorkspaceLabel is one previewed workspace rename.
	WorkspaceLabel = control.WorkspaceLabel
	// PreviewResult captures the labels the daemon would dispatch right now.
	PreviewResult = control.PreviewResult
	// MetricsSnapshot mirrors the collector payload returned by the daemon.
	MetricsSnapshot = control.MetricsSnapshot
)

// New creates a client that connects to the provided socket path. When path is
// empty, the default runtime path is used.
func New(path string) (*Client, error) {
	if path == "" {
		var err error
		path, err = control.DefaultSocketPath()
		if err != nil {
			return nil, err
		}
	}
	return &Client{socketPath: path}, nil
}

// Status retrieves the daemon's labeling state.
func (c *Client) Status(ctx context.Context) (StatusInfo, error) {
	var status StatusInfo
	if err := c.do(ctx, control.Request{Action: control.ActionStatus}, &status); err != nil {
		return StatusInfo{}, err
	}
	return status, nil
}

// Preview asks the daemon to compute the labels it would dispatch right now.
func (c *Client) Preview(ctx context.Context) (PreviewResult, error) {
	var result PreviewResult
	if err := c.do(ctx, control.Request{Action: control.ActionPreview}, &result); err != nil {
		return PreviewResult{}, err
	}
	return result, nil
}

// Reload asks the daemon to reload its configuration.
func (c *Client) Reload(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionReload}, nil)
}

// Metrics retrieves the daemon's counter snapshot.
func (c *Client) Metrics(ctx context.Context) (MetricsSnapshot, error) {
	var snapshot MetricsSnapshot
	if err := c.do(ctx, control.Request{Action: control.ActionMetrics}, &snapshot); err != nil {
		return MetricsSnapshot{}, err
	}
	return snapshot, nil
}

// Refresh asks the daemon to rebuild its world snapshot and relabel.
func (c *Client) Refresh(ctx context.Context) error {
	return c.do(ctx, control.Request{Action: control.ActionRefresh}, nil)
}

func (c *Client) do(ctx context.Context, req control.Request, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("dial control socket: %w", err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	var resp control.Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.Status != control.StatusOK {
		if resp.Error == "" {
			resp.Error = "unknown control error"
		}
		return errors.New(resp.Error)
	}
	if out == nil || resp.Data == nil {
		return nil
	}
	data, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
