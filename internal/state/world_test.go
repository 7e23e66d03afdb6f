package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func worldFixture() *World {
	return &World{
		Clients: []Client{
			{Address: "0x1", Class: "kitty", WorkspaceID: 1},
			{Address: "0x2", Class: "firefox", WorkspaceID: 1},
			{Address: "0x3", Class: "slack", WorkspaceID: 2},
		},
		Workspaces: []Workspace{
			{ID: 1, Name: "1", Windows: 2},
			{ID: 2, Name: "2", Windows: 1},
		},
		ActiveWorkspaceID:   1,
		ActiveClientAddress: "0x1",
	}
}

func TestUpsertClient(t *testing.T) {
	w := worldFixture()
	changed, err := w.UpsertClient(Client{Address: "0x4", Class: "mpv", WorkspaceID: 2})
	if err != nil || !changed {
		t.Fatalf("expected insert to change world, changed=%v err=%v", changed, err)
	}
	if len(w.Clients) != 4 {
		t.Fatalf("expected 4 clients, got %d", len(w.Clients))
	}

	changed, err = w.UpsertClient(Client{Address: "0x4", Class: "mpv", WorkspaceID: 2})
	if err != nil || changed {
		t.Fatalf("identical upsert must be a no-op, changed=%v err=%v", changed, err)
	}

	changed, err = w.UpsertClient(Client{Address: "0x4", Class: "mpv", WorkspaceID: 2, Fullscreen: true})
	if err != nil || !changed {
		t.Fatalf("expected update to change world, changed=%v err=%v", changed, err)
	}
	if _, err := w.UpsertClient(Client{}); err == nil {
		t.Fatalf("expected error for client without address")
	}
}

func TestRemoveClientPreservesOrder(t *testing.T) {
	w := worldFixture()
	changed, err := w.RemoveClient("0x1")
	if err != nil || !changed {
		t.Fatalf("remove failed: changed=%v err=%v", changed, err)
	}
	want := []string{"0x2", "0x3"}
	var got []string
	for _, c := range w.Clients {
		got = append(got, c.Address)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("client order mismatch (-want +got):\n%s", diff)
	}
	if w.ActiveClientAddress != "" {
		t.Fatalf("removing the active client must clear focus")
	}
	if _, err := w.RemoveClient("0x99"); err == nil {
		t.Fatalf("expected error for unknown client")
	}
}

func TestMoveClientIsRemovePlusAppend(t *testing.T) {
	w := worldFixture()
	changed, err := w.MoveClient("0x1", 2)
	if err != nil || !changed {
		t.Fatalf("move failed: changed=%v err=%v", changed, err)
	}
	moved := w.FindClient("0x1")
	if moved == nil || moved.WorkspaceID != 2 {
		t.Fatalf("expected client on workspace 2, got %+v", moved)
	}
	// The moved client reenters at the end of the open order.
	if w.Clients[len(w.Clients)-1].Address != "0x1" {
		t.Fatalf("expected moved client last, got %+v", w.Clients)
	}
	changed, err = w.MoveClient("0x1", 2)
	if err != nil || changed {
		t.Fatalf("same-workspace move must be a no-op, changed=%v err=%v", changed, err)
	}
}

func TestSetClientTitleAndFullscreen(t *testing.T) {
	w := worldFixture()
	if changed, err := w.SetClientTitle("0x2", "github"); err != nil || !changed {
		t.Fatalf("title update failed: %v", err)
	}
	if changed, _ := w.SetClientTitle("0x2", "github"); changed {
		t.Fatalf("identical title must be a no-op")
	}
	if changed, err := w.SetClientFullscreen("0x2", true); err != nil || !changed {
		t.Fatalf("fullscreen update failed: %v", err)
	}
	if _, err := w.SetClientTitle("0x99", "x"); err == nil {
		t.Fatalf("expected error for unknown client")
	}
}

func TestWorkspaceMutators(t *testing.T) {
	w := worldFixture()
	if !w.UpsertWorkspace(Workspace{ID: 3, Name: "3"}) {
		t.Fatalf("expected workspace insert")
	}
	if !w.RemoveWorkspace(3) {
		t.Fatalf("expected workspace removal")
	}
	if w.RemoveWorkspace(3) {
		t.Fatalf("removing a missing workspace must report false")
	}
}

func TestClientsOnWorkspace(t *testing.T) {
	w := worldFixture()
	got := w.ClientsOnWorkspace(1)
	if len(got) != 2 || got[0].Address != "0x1" || got[1].Address != "0x2" {
		t.Fatalf("unexpected workspace clients %+v", got)
	}
}

func TestCloneWorldIsDeep(t *testing.T) {
	w := worldFixture()
	clone := CloneWorld(w)
	clone.Clients[0].Title = "mutated"
	if w.Clients[0].Title == "mutated" {
		t.Fatalf("clone must not share client backing array")
	}
	if CloneWorld(nil) != nil {
		t.Fatalf("cloning nil returns nil")
	}
}
