package ipc

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyprglyph/hyprglyph/internal/util"
)

// Event is one line from Hyprland's event stream, split at the ">>"
// separator.
type Event struct {
	Kind    string
	Payload string
}

// Window titles flow through windowtitlev2 payloads unescaped, so event
// lines can grow well past bufio's default token size.
const maxEventLine = 1 << 20

// Subscribe connects to the Hyprland event socket (.socket2) and streams
// decoded events until the context is cancelled or the socket closes. The
// returned channel is closed in either case.
func Subscribe(ctx context.Context, logger *util.Logger) (<-chan Event, error) {
	path, err := instanceSocketPath(".socket2.sock")
	if err != nil {
		return nil, err
	}
	conn, err := net.Dial("unix", path)
	if err != nil {
		return nil, fmt.Errorf("connect event socket: %w", err)
	}
	events := make(chan Event)
	go func() {
		defer close(events)
		defer conn.Close()
		scanner := bufio.NewScanner(conn)
		scanner.Buffer(make([]byte, 4096), maxEventLine)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			select {
			case events <- parseEventLine(line):
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Warnf("event stream error: %v", err)
		}
	}()
	return events, nil
}

// parseEventLine splits "kind>>payload". A line without the separator
// becomes an event with an empty payload; payloads keep their whitespace
// since titles may start or end with it.
func parseEventLine(line string) Event {
	kind, payload, _ := strings.Cut(line, ">>")
	return Event{Kind: kind, Payload: payload}
}

// instanceSocketPath resolves a socket file inside the running Hyprland
// instance's runtime directory.
func instanceSocketPath(name string) (string, error) {
	sig := os.Getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", fmt.Errorf("HYPRLAND_INSTANCE_SIGNATURE not set")
	}
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir == "" {
		return "", fmt.Errorf("XDG_RUNTIME_DIR not set")
	}
	return filepath.Join(runtimeDir, "hypr", sig, name), nil
}
