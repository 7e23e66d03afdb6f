package renamer

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hyprglyph/hyprglyph/internal/config"
	"github.com/hyprglyph/hyprglyph/internal/format"
	"github.com/hyprglyph/hyprglyph/internal/rules"
	"github.com/hyprglyph/hyprglyph/internal/state"
)

// AppClient is one non-excluded window with its resolved token, as consumed
// by the label formatter.
type AppClient struct {
	Class      string
	Title      string
	Active     bool
	Fullscreen bool
	Token      rules.Token
}

// CountedClient is a dedup group: a representative client plus the number
// of windows collapsed into it.
type CountedClient struct {
	Client AppClient
	Count  int
}

// Snapshot is the fully recomputed label state of one workspace. Label is
// the rendered template output verbatim; the trailing-whitespace trim
// happens once, at dispatch time.
type Snapshot struct {
	ID      int
	Clients []CountedClient
	Label   string
}

// ComposeWorkspace recomputes the label of one workspace from its clients,
// in open order, against a single rule set generation.
func ComposeWorkspace(id int, clients []state.Client, activeAddress string, set *rules.Set) Snapshot {
	resolved := make([]AppClient, 0, len(clients))
	for _, client := range clients {
		window := rules.Window{
			Class:        client.Class,
			InitialClass: client.InitialClass,
			Title:        client.Title,
			InitialTitle: client.InitialTitle,
			Active:       activeAddress != "" && client.Address == activeAddress,
			Fullscreen:   client.Fullscreen,
		}
		if set.Excludes(window) {
			continue
		}
		resolved = append(resolved, AppClient{
			Class:      client.Class,
			Title:      client.Title,
			Active:     window.Active,
			Fullscreen: client.Fullscreen,
			Token:      set.Resolve(window),
		})
	}

	counted := countClients(resolved, set.Format)

	delim := format.Render("{delim}", map[string]string{"delim": set.Format.Delim})
	parts := make([]string, 0, len(counted))
	for _, group := range counted {
		parts = append(parts, renderClient(group, set.Format))
	}
	clientsText := strings.Join(parts, delim)

	return Snapshot{
		ID:      id,
		Clients: counted,
		Label:   renderWorkspace(id, clientsText, set),
	}
}

// sameGroup reports whether two resolved clients collapse into one counted
// entry. Identity is the matched rule, its text, and its captures (two
// windows matching the same {match1}-bearing rule with different subjects
// render different icons and must stay separate), plus the focus flag; the
// fullscreen flag participates unless dedup_inactive_fullscreen lets
// fullscreen-but-unfocused windows fold into their plain siblings.
func sameGroup(a, b AppClient, dedupInactiveFullscreen bool) bool {
	if a.Token.Text != b.Token.Text || a.Token.Rule != b.Token.Rule {
		return false
	}
	if !sameCaptures(a.Token.Captures, b.Token.Captures) {
		return false
	}
	if a.Active != b.Active {
		return false
	}
	if dedupInactiveFullscreen {
		return true
	}
	return a.Fullscreen == b.Fullscreen
}

func sameCaptures(a, b rules.Captures) bool {
	if len(a) != len(b) {
		return false
	}
	for name, value := range a {
		if other, ok := b[name]; !ok || other != value {
			return false
		}
	}
	return true
}

func countClients(clients []AppClient, f config.Format) []CountedClient {
	if !f.Dedup {
		counted := make([]CountedClient, 0, len(clients))
		for _, client := range clients {
			counted = append(counted, CountedClient{Client: client, Count: 1})
		}
		return counted
	}

	sorted := append([]AppClient(nil), clients...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Active != sorted[j].Active {
			return sorted[i].Active
		}
		return sorted[i].Fullscreen && !sorted[j].Fullscreen
	})

	var counted []CountedClient
	for _, client := range sorted {
		merged := false
		for i := range counted {
			if sameGroup(counted[i].Client, client, f.DedupInactiveFullscreen) {
				counted[i].Count++
				merged = true
				break
			}
		}
		if !merged {
			counted = append(counted, CountedClient{Client: client, Count: 1})
		}
	}
	return counted
}

func renderClient(group CountedClient, f config.Format) string {
	client := group.Client
	isDedup := f.Dedup && group.Count > 1

	vars := map[string]string{
		"title":                 client.Title,
		"class":                 client.Class,
		"counter":               strconv.Itoa(group.Count),
		"counter_sup":           format.Superscript(group.Count),
		"counter_unfocused":     strconv.Itoa(group.Count - 1),
		"counter_unfocused_sup": format.Superscript(group.Count - 1),
		"delim":                 f.Delim,
	}
	for name, value := range client.Token.Captures {
		vars[name] = value
	}

	icon := client.Token.Text
	if client.Active && !client.Token.ActiveVariant {
		// The focused window's icon comes from a plain rule list, so the
		// client_active template supplies the focus styling around it.
		vars["default_icon"] = icon
		icon = format.Render(strings.ReplaceAll(f.ClientActive, "{icon}", "{default_icon}"), vars)
	}
	vars["icon"] = icon
	vars["client"] = f.Client
	vars["client_dup"] = f.ClientDup
	vars["client_fullscreen"] = f.ClientFullscreen

	switch {
	case client.Fullscreen && isDedup:
		return format.Render(f.ClientDupFullscreen, vars)
	case isDedup:
		return format.Render(f.ClientDup, vars)
	case client.Fullscreen:
		return format.Render(f.ClientFullscreen, vars)
	default:
		return format.Render(f.Client, vars)
	}
}

func renderWorkspace(id int, clients string, set *rules.Set) string {
	vars := map[string]string{
		"id":      strconv.Itoa(id),
		"id_long": fmt.Sprintf("%02d", id),
		"name":    set.WorkspaceName(id),
		"delim":   set.Format.Delim,
		"clients": clients,
	}
	if clients != "" {
		return format.Render(set.Format.Workspace, vars)
	}
	return format.Render(set.Format.WorkspaceEmpty, vars)
}
