package state

import (
	"context"
	"fmt"
)

// Client describes a Hyprland client window. Initial class and title are
// the values reported when the window was first mapped; Hyprland keeps them
// stable while the current class and title may change at runtime.
type Client struct {
	Address      string
	Class        string
	InitialClass string
	Title        string
	InitialTitle string
	WorkspaceID  int
	Fullscreen   bool
}

// Workspace describes a Hyprland workspace.
type Workspace struct {
	ID      int
	Name    string
	Windows int
}

// World represents the current snapshot of Hyprland. Client order within
// the slice is open order; it is observable in the rendered labels.
type World struct {
	Clients             []Client
	Workspaces          []Workspace
	ActiveWorkspaceID   int
	ActiveClientAddress string
}

// DataSource abstracts queries required to build the world snapshot.
type DataSource interface {
	ListClients(ctx context.Context) ([]Client, error)
	ListWorkspaces(ctx context.Context) ([]Workspace, error)
	ActiveWorkspaceID(ctx context.Context) (int, error)
	ActiveClientAddress(ctx context.Context) (string, error)
}

// NewWorld creates a world snapshot using the provided data source.
func NewWorld(ctx context.Context, src DataSource) (*World, error) {
	clients, err := src.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := src.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	activeWS, err := src.ActiveWorkspaceID(ctx)
	if err != nil {
		return nil, err
	}
	activeClient, err := src.ActiveClientAddress(ctx)
	if err != nil {
		return nil, err
	}
	return &World{
		Clients:             clients,
		Workspaces:          workspaces,
		ActiveWorkspaceID:   activeWS,
		ActiveClientAddress: activeClient,
	}, nil
}

// FindClient returns the client with address, or nil.
func (w *World) FindClient(address string) *Client {
	for i := range w.Clients {
		if w.Clients[i].Address == address {
			return &w.Clients[i]
		}
	}
	return nil
}

// ActiveClient returns the active client if present.
func (w *World) ActiveClient() *Client {
	if w.ActiveClientAddress == "" {
		return nil
	}
	return w.FindClient(w.ActiveClientAddress)
}

// WorkspaceByID finds workspace by ID.
func (w *World) WorkspaceByID(id int) *Workspace {
	for i := range w.Workspaces {
		if w.Workspaces[i].ID == id {
			return &w.Workspaces[i]
		}
	}
	return nil
}

// UpsertClient inserts the client or updates the stored copy in place.
// It reports whether the world changed.
func (w *World) UpsertClient(client Client) (bool, error) {
	if client.Address == "" {
		return false, fmt.Errorf("client missing address")
	}
	if existing := w.FindClient(client.Address); existing != nil {
		if *existing == client {
			return false, nil
		}
		*existing = client
		return true, nil
	}
	w.Clients = append(w.Clients, client)
	return true, nil
}

// RemoveClient deletes the client with address, preserving the order of the
// remaining clients.
func (w *World) RemoveClient(address string) (bool, error) {
	for i := range w.Clients {
		if w.Clients[i].Address == address {
			w.Clients = append(w.Clients[:i], w.Clients[i+1:]...)
			if w.ActiveClientAddress == address {
				w.ActiveClientAddress = ""
			}
			return true, nil
		}
	}
	return false, fmt.Errorf("client %s not found", address)
}

// MoveClient reassigns a client to another workspace. The move is a remove
// plus append so consumers never observe a half-moved client mid-scan.
func (w *World) MoveClient(address string, workspaceID int) (bool, error) {
	client := w.FindClient(address)
	if client == nil {
		return false, fmt.Errorf("client %s not found", address)
	}
	if client.WorkspaceID == workspaceID {
		return false, nil
	}
	moved := *client
	moved.WorkspaceID = workspaceID
	if _, err := w.RemoveClient(address); err != nil {
		return false, err
	}
	w.Clients = append(w.Clients, moved)
	return true, nil
}

// SetClientTitle updates the current title of a client.
func (w *World) SetClientTitle(address, title string) (bool, error) {
	client := w.FindClient(address)
	if client == nil {
		return false, fmt.Errorf("client %s not found", address)
	}
	if client.Title == title {
		return false, nil
	}
	client.Title = title
	return true, nil
}

// SetClientFullscreen updates the fullscreen flag of a client.
func (w *World) SetClientFullscreen(address string, fullscreen bool) (bool, error) {
	client := w.FindClient(address)
	if client == nil {
		return false, fmt.Errorf("client %s not found", address)
	}
	if client.Fullscreen == fullscreen {
		return false, nil
	}
	client.Fullscreen = fullscreen
	return true, nil
}

// SetActiveClient records the focused client address ("" when none).
func (w *World) SetActiveClient(address string) bool {
	if w.ActiveClientAddress == address {
		return false
	}
	w.ActiveClientAddress = address
	return true
}

// SetActiveWorkspace records the focused workspace id.
func (w *World) SetActiveWorkspace(id int) bool {
	if w.ActiveWorkspaceID == id {
		return false
	}
	w.ActiveWorkspaceID = id
	return true
}

// UpsertWorkspace inserts or updates a workspace entry.
func (w *World) UpsertWorkspace(ws Workspace) bool {
	if existing := w.WorkspaceByID(ws.ID); existing != nil {
		if *existing == ws {
			return false
		}
		*existing = ws
		return true
	}
	w.Workspaces = append(w.Workspaces, ws)
	return true
}

// RemoveWorkspace deletes the workspace with id, if present.
func (w *World) RemoveWorkspace(id int) bool {
	for i := range w.Workspaces {
		if w.Workspaces[i].ID == id {
			w.Workspaces = append(w.Workspaces[:i], w.Workspaces[i+1:]...)
			return true
		}
	}
	return false
}

// ClientsOnWorkspace returns the clients of one workspace in open order.
func (w *World) ClientsOnWorkspace(id int) []Client {
	var out []Client
	for _, c := range w.Clients {
		if c.WorkspaceID == id {
			out = append(out, c)
		}
	}
	return out
}

// CloneWorld returns a deep copy of the provided world snapshot.
func CloneWorld(src *World) *World {
	if src == nil {
		return nil
	}
	copyWorld := *src
	if len(src.Clients) > 0 {
		copyWorld.Clients = append([]Client(nil), src.Clients...)
	}
	if len(src.Workspaces) > 0 {
		copyWorld.Workspaces = append([]Workspace(nil), src.Workspaces...)
	}
	return &copyWorld
}
