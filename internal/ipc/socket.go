package ipc

import (
	"fmt"
	"net"
	"strings"
)

type socketDispatcher struct {
	path string
}

func newSocketDispatcher() (*socketDispatcher, error) {
	path, err := dispatchSocketPath()
	if err != nil {
		return nil, err
	}
	return &socketDispatcher{path: path}, nil
}

func (d *socketDispatcher) Dispatch(args ...string) error {
	if len(args) == 0 {
		return nil
	}
	conn, err := net.Dial("unix", d.path)
	if err != nil {
		return fmt.Errorf("connect dispatch socket: %w", err)
	}
	defer conn.Close()

	parts := append([]string{"dispatch"}, args...)
	payload := strings.Join(parts, " ") + "\n"
	if _, err := conn.Write([]byte(payload)); err != nil {
		return fmt.Errorf("write dispatch payload: %w", err)
	}
	return nil
}

func (d *socketDispatcher) DispatchSocketPath() string {
	return d.path
}

func dispatchSocketPath() (string, error) {
	return instanceSocketPath(".socket.sock")
}

var _ Dispatcher = (*socketDispatcher)(nil)
