package renamer

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hyprglyph/hyprglyph/internal/ipc"
	"github.com/hyprglyph/hyprglyph/internal/metrics"
	"github.com/hyprglyph/hyprglyph/internal/rules"
	"github.com/hyprglyph/hyprglyph/internal/state"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

type hyprClient interface {
	state.DataSource
	ipc.Dispatcher
}

type ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct {
	*time.Ticker
}

func (t realTicker) C() <-chan time.Time {
	return t.Ticker.C
}

type subscribeFunc func(ctx context.Context, logger *util.Logger) (<-chan ipc.Event, error)

const defaultPeriodicRefreshInterval = 60 * time.Second

// Renamer ties together the world model, the rule set, and IPC. It keeps
// every workspace it has ever labeled in its known set so that a workspace
// going empty is relabeled with the empty template instead of keeping a
// stale name; the id leaves the set only when Hyprland destroys it.
type Renamer struct {
	hypr    hyprClient
	logger  *util.Logger
	metrics *metrics.Collector
	dryRun  bool

	mu         sync.Mutex
	set        *rules.Set
	lastWorld  *state.World
	known      map[int]struct{}
	lastLabels map[int]string

	tickerFactory func() ticker
	subscribe     subscribeFunc
}

// New creates a renamer instance.
func New(hypr hyprClient, logger *util.Logger, set *rules.Set, dryRun bool, collector *metrics.Collector) *Renamer {
	return &Renamer{
		hypr:       hypr,
		logger:     logger,
		metrics:    collector,
		dryRun:     dryRun,
		set:        set,
		known:      make(map[int]struct{}),
		lastLabels: make(map[int]string),
		tickerFactory: func() ticker {
			return realTicker{time.NewTicker(defaultPeriodicRefreshInterval)}
		},
		subscribe: ipc.Subscribe,
	}
}

// RuleSet returns the rule set generation currently in use.
func (r *Renamer) RuleSet() *rules.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.set
}

// ReloadRules swaps in a freshly compiled rule set and forces every known
// workspace to be relabeled on the next pass.
func (r *Renamer) ReloadRules(set *rules.Set) {
	r.mu.Lock()
	r.set = set
	r.lastLabels = make(map[int]string)
	r.mu.Unlock()
	r.logger.Infof("rules reloaded")
}

// Run starts the rename loop until context cancellation.
func (r *Renamer) Run(ctx context.Context) error {
	if err := r.refreshAndApply(ctx); err != nil {
		return err
	}
	tick := r.newTicker()
	defer tick.Stop()

	events, err := r.subscribeEvents(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C():
			r.logger.Debugf("periodic refresh tick")
			if err := r.refreshAndApply(ctx); err != nil {
				if ctx.Err() != nil {
					r.logger.Debugf("periodic refresh aborted: %v", err)
				} else {
					r.logger.Errorf("periodic refresh failed: %v", err)
				}
			}
		case ev, ok := <-events:
			if !ok {
				return fmt.Errorf("event stream closed")
			}
			r.logger.Tracef("event %s >> %s", ev.Kind, ev.Payload)
			if !r.isInteresting(ev.Kind) {
				continue
			}
			r.metrics.RecordEvent(ev.Kind)
			if err := r.applyEvent(ctx, ev); err != nil {
				r.logger.Errorf("incremental apply failed: %v", err)
			}
		}
	}
}

func (r *Renamer) newTicker() ticker {
	if r.tickerFactory != nil {
		return r.tickerFactory()
	}
	return realTicker{time.NewTicker(defaultPeriodicRefreshInterval)}
}

func (r *Renamer) subscribeEvents(ctx context.Context) (<-chan ipc.Event, error) {
	if r.subscribe != nil {
		return r.subscribe(ctx, r.logger)
	}
	return ipc.Subscribe(ctx, r.logger)
}

// Refresh triggers a manual world rebuild and relabel pass.
func (r *Renamer) Refresh(ctx context.Context) error {
	return r.refreshAndApply(ctx)
}

// refreshAndApply rebuilds the world snapshot from the data source and
// relabels every known workspace.
func (r *Renamer) refreshAndApply(ctx context.Context) error {
	world, err := state.NewWorld(ctx, r.hypr)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.lastWorld = world
	for _, ws := range world.Workspaces {
		r.known[ws.ID] = struct{}{}
	}
	for _, client := range world.Clients {
		r.known[client.WorkspaceID] = struct{}{}
	}
	r.mu.Unlock()
	return r.applyLabels()
}

// applyLabels recomputes every known workspace label against the current
// rule set generation and dispatches renames for the ones that changed.
func (r *Renamer) applyLabels() error {
	r.mu.Lock()
	set := r.set
	world := state.CloneWorld(r.lastWorld)
	for _, client := range world.Clients {
		r.known[client.WorkspaceID] = struct{}{}
	}
	ids := make([]int, 0, len(r.known))
	for id := range r.known {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Ints(ids)

	r.metrics.RecordRecompute()

	var firstErr error
	for _, id := range ids {
		snapshot := ComposeWorkspace(id, world.ClientsOnWorkspace(id), world.ActiveClientAddress, set)
		label := strings.TrimSpace(snapshot.Label)
		if err := r.renameWorkspace(id, label); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// renameWorkspace dispatches a rename when the label differs from the last
// one dispatched for the workspace.
func (r *Renamer) renameWorkspace(id int, label string) error {
	r.mu.Lock()
	last, seen := r.lastLabels[id]
	r.mu.Unlock()
	if seen && last == label {
		return nil
	}
	if r.dryRun {
		r.logger.Infof("dry-run: renameworkspace %d -> %q", id, label)
	} else {
		if err := r.hypr.Dispatch("renameworkspace", strconv.Itoa(id), label); err != nil {
			r.metrics.RecordRenameError()
			return fmt.Errorf("rename workspace %d: %w", id, err)
		}
		r.logger.Debugf("renamed workspace %d -> %q", id, label)
	}
	r.metrics.RecordRename()
	r.mu.Lock()
	r.lastLabels[id] = label
	r.mu.Unlock()
	return nil
}

func (r *Renamer) applyEvent(ctx context.Context, ev ipc.Event) error {
	r.mu.Lock()
	if r.lastWorld == nil {
		r.mu.Unlock()
		return r.refreshAndApply(ctx)
	}
	mutated, err := r.mutateWorldLocked(r.lastWorld, ev)
	r.mu.Unlock()
	if err != nil {
		r.logger.Warnf("incremental update fallback for %s: %v", ev.Kind, err)
		return r.refreshAndApply(ctx)
	}
	if !mutated {
		return nil
	}
	return r.applyLabels()
}

func (r *Renamer) mutateWorldLocked(world *state.World, ev ipc.Event) (bool, error) {
	switch ev.Kind {
	case "openwindow":
		client, err := parseOpenWindowPayload(ev.Payload)
		if err != nil {
			return false, err
		}
		r.known[client.WorkspaceID] = struct{}{}
		return world.UpsertClient(client)
	case "closewindow":
		address := normalizeAddress(strings.TrimSpace(ev.Payload))
		if address == "" {
			return false, fmt.Errorf("closewindow missing address")
		}
		return world.RemoveClient(address)
	case "movewindow", "movewindowv2":
		address, workspaceID, err := parseMoveWindowPayload(ev.Payload)
		if err != nil {
			return false, err
		}
		r.known[workspaceID] = struct{}{}
		return world.MoveClient(address, workspaceID)
	case "activewindowv2":
		address := strings.TrimSpace(ev.Payload)
		if address == "" || strings.EqualFold(address, "0x0") {
			return world.SetActiveClient(""), nil
		}
		return world.SetActiveClient(normalizeAddress(address)), nil
	case "windowtitlev2":
		address, title, err := parseWindowTitlePayload(ev.Payload)
		if err != nil {
			return false, err
		}
		return world.SetClientTitle(address, title)
	case "fullscreen":
		enabled := strings.TrimSpace(ev.Payload) == "1"
		if world.ActiveClientAddress == "" {
			return false, fmt.Errorf("fullscreen event without focused client")
		}
		return world.SetClientFullscreen(world.ActiveClientAddress, enabled)
	case "workspace", "workspacev2":
		id, err := parseWorkspaceIDPayload(ev.Payload)
		if err != nil {
			return false, err
		}
		return world.SetActiveWorkspace(id), nil
	case "createworkspace", "createworkspacev2":
		id, err := parseWorkspaceIDPayload(ev.Payload)
		if err != nil {
			return false, err
		}
		r.known[id] = struct{}{}
		if world.WorkspaceByID(id) == nil {
			world.UpsertWorkspace(state.Workspace{ID: id})
		}
		return true, nil
	case "destroyworkspace", "destroyworkspacev2":
		id, err := parseWorkspaceIDPayload(ev.Payload)
		if err != nil {
			return false, err
		}
		delete(r.known, id)
		delete(r.lastLabels, id)
		world.RemoveWorkspace(id)
		return false, nil
	default:
		return false, nil
	}
}

// normalizeAddress gives event-stream addresses the 0x prefix hyprctl uses.
func normalizeAddress(address string) string {
	if address == "" || strings.HasPrefix(address, "0x") {
		return address
	}
	return "0x" + address
}

func parseOpenWindowPayload(payload string) (state.Client, error) {
	parts := splitPayload(payload, 4)
	if len(parts) < 3 {
		return state.Client{}, fmt.Errorf("invalid openwindow payload %q", payload)
	}
	address := normalizeAddress(parts[0])
	if address == "" {
		return state.Client{}, fmt.Errorf("openwindow missing address")
	}
	workspaceID, err := strconv.Atoi(parts[1])
	if err != nil {
		return state.Client{}, fmt.Errorf("invalid workspace id %q: %w", parts[1], err)
	}
	client := state.Client{
		Address:      address,
		WorkspaceID:  workspaceID,
		Class:        parts[2],
		InitialClass: parts[2],
	}
	if len(parts) == 4 {
		client.Title = parts[3]
		client.InitialTitle = parts[3]
	}
	return client, nil
}

func parseMoveWindowPayload(payload string) (string, int, error) {
	parts := splitPayload(payload, 3)
	if len(parts) < 2 {
		return "", 0, fmt.Errorf("invalid movewindow payload %q", payload)
	}
	workspaceID, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", 0, fmt.Errorf("invalid workspace id %q: %w", parts[1], err)
	}
	return normalizeAddress(parts[0]), workspaceID, nil
}

func parseWindowTitlePayload(payload string) (string, string, error) {
	parts := strings.SplitN(payload, ",", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid windowtitle payload %q", payload)
	}
	address := normalizeAddress(strings.TrimSpace(parts[0]))
	if address == "" {
		return "", "", fmt.Errorf("windowtitle missing address")
	}
	return address, parts[1], nil
}

// parseWorkspaceIDPayload reads the id from both payload generations: the
// v2 events lead with the numeric id, the v1 events carry only the name,
// which is the id for ordinary numbered workspaces.
func parseWorkspaceIDPayload(payload string) (int, error) {
	parts := splitPayload(payload, 2)
	if len(parts) == 0 {
		return 0, fmt.Errorf("invalid workspace payload %q", payload)
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid workspace id %q: %w", parts[0], err)
	}
	return id, nil
}

func splitPayload(payload string, maxParts int) []string {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil
	}
	parts := strings.SplitN(trimmed, ",", maxParts)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// PreviewLabels rebuilds the world and returns the labels that would be
// dispatched, without renaming anything.
func (r *Renamer) PreviewLabels(ctx context.Context) ([]Snapshot, error) {
	world, err := state.NewWorld(ctx, r.hypr)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	set := r.set
	r.lastWorld = world
	for _, ws := range world.Workspaces {
		r.known[ws.ID] = struct{}{}
	}
	for _, client := range world.Clients {
		r.known[client.WorkspaceID] = struct{}{}
	}
	ids := make([]int, 0, len(r.known))
	for id := range r.known {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	sort.Ints(ids)

	snapshots := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		snapshots = append(snapshots, ComposeWorkspace(id, world.ClientsOnWorkspace(id), world.ActiveClientAddress, set))
	}
	return snapshots, nil
}

// ResetLabels renames every known workspace back to its empty template.
// Used on shutdown so workspaces do not keep labels nobody maintains.
func (r *Renamer) ResetLabels() error {
	r.mu.Lock()
	set := r.set
	ids := make([]int, 0, len(r.known))
	for id := range r.known {
		ids = append(ids, id)
	}
	r.lastLabels = make(map[int]string)
	r.mu.Unlock()
	sort.Ints(ids)

	var firstErr error
	for _, id := range ids {
		label := strings.TrimSpace(renderWorkspace(id, "", set))
		if r.dryRun {
			r.logger.Infof("dry-run: renameworkspace %d -> %q", id, label)
			continue
		}
		if err := r.hypr.Dispatch("renameworkspace", strconv.Itoa(id), label); err != nil {
			r.metrics.RecordRenameError()
			if firstErr == nil {
				firstErr = fmt.Errorf("reset workspace %d: %w", id, err)
			}
		}
	}
	return firstErr
}

// KnownWorkspaces returns the sorted ids the renamer currently maintains.
func (r *Renamer) KnownWorkspaces() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int, 0, len(r.known))
	for id := range r.known {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// LastLabels returns a copy of the labels last dispatched per workspace.
func (r *Renamer) LastLabels() map[int]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make(map[int]string, len(r.lastLabels))
	for id, label := range r.lastLabels {
		labels[id] = label
	}
	return labels
}

// isInteresting filters the event stream down to the kinds that can change
// a label. The v1 windowtitle event is deliberately absent: it carries only
// an address, Hyprland emits windowtitlev2 alongside it, and reacting to
// both would force a full rebuild for every title change the v2 event
// already applies in place.
func (r *Renamer) isInteresting(kind string) bool {
	switch kind {
	case "openwindow", "closewindow", "movewindow", "movewindowv2",
		"activewindowv2", "windowtitlev2", "fullscreen",
		"workspace", "workspacev2",
		"createworkspace", "createworkspacev2",
		"destroyworkspace", "destroyworkspacev2":
		return true
	default:
		return false
	}
}
