package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/hyprglyph/hyprglyph/internal/metrics"
	"github.com/hyprglyph/hyprglyph/internal/renamer"
	"github.com/hyprglyph/hyprglyph/internal/rules"
	"github.com/hyprglyph/hyprglyph/internal/util"
)

// Server hosts the hyprglyph control socket and serves requests.
type Server struct {
	renamer    *renamer.Renamer
	logger     *util.Logger
	collector  *metrics.Collector
	reload     func(reason string) error
	configPath string
	dryRun     bool
	socketPath string

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new control server.
func NewServer(r *renamer.Renamer, logger *util.Logger, collector *metrics.Collector, configPath string, dryRun bool, reload func(reason string) error) (*Server, error) {
	path, err := DefaultSocketPath()
	if err != nil {
		return nil, err
	}
	return &Server{
		renamer:    r,
		logger:     logger,
		collector:  collector,
		reload:     reload,
		configPath: configPath,
		dryRun:     dryRun,
		socketPath: path,
	}, nil
}

// Serve listens on the control socket until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.prepareSocket(); err != nil {
		return err
	}
	s.logger.Infof("control server listening on %s", s.socketPath)
	defer s.cleanup()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := s.accept(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			s.logger.Errorf("control accept error: %v", err)
			continue
		}
		go s.handle(ctx, conn)
	}
}

func (s *Server) accept(ctx context.Context) (net.Conn, error) {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil, context.Canceled
	}
	conn, err := listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Server) prepareSocket() error {
	dir := filepath.Dir(s.socketPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create control dir: %w", err)
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on control socket: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		listener.Close()
		return fmt.Errorf("chmod control socket: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	return nil
}

func (s *Server) cleanup() {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	s.mu.Unlock()
	if listener != nil {
		listener.Close()
	}
	if err := os.Remove(s.socketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warnf("remove control socket: %v", err)
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	dec := json.NewDecoder(conn)
	var req Request
	if err := dec.Decode(&req); err != nil {
		s.writeError(conn, fmt.Errorf("decode request: %w", err))
		return
	}
	switch req.Action {
	case ActionStatus:
		s.handleStatus(conn)
	case ActionPreview:
		s.handlePreview(ctx, conn)
	case ActionReload:
		s.handleReload(conn)
	case ActionMetrics:
		s.handleMetrics(conn)
	case ActionRefresh:
		s.handleRefresh(ctx, conn)
	default:
		s.writeError(conn, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (s *Server) handleStatus(conn net.Conn) {
	set := s.renamer.RuleSet()
	status := StatusInfo{
		ConfigPath:      s.configPath,
		DryRun:          s.dryRun,
		KnownWorkspaces: s.renamer.KnownWorkspaces(),
		Labels:          s.renamer.LastLabels(),
		Rules:           countRules(set),
	}
	s.writeOK(conn, status)
}

func countRules(set *rules.Set) RuleCounts {
	counts := RuleCounts{
		Class:              len(set.Class),
		ClassActive:        len(set.ClassActive),
		InitialClass:       len(set.InitialClass),
		InitialClassActive: len(set.InitialClassActive),
		Exclude:            len(set.Exclude),
		WorkspaceNames:     len(set.WorkspaceNames),
	}
	for _, groups := range set.Titles {
		counts.TitleGroups += len(groups)
	}
	for _, groups := range set.TitlesActive {
		counts.TitleGroupsActive += len(groups)
	}
	return counts
}

func (s *Server) handlePreview(ctx context.Context, conn net.Conn) {
	snapshots, err := s.renamer.PreviewLabels(ctx)
	if err != nil {
		s.writeError(conn, err)
		return
	}
	result := PreviewResult{Workspaces: make([]WorkspaceLabel, 0, len(snapshots))}
	for _, snapshot := range snapshots {
		clients := 0
		for _, group := range snapshot.Clients {
			clients += group.Count
		}
		result.Workspaces = append(result.Workspaces, WorkspaceLabel{
			ID:      snapshot.ID,
			Label:   snapshot.Label,
			Clients: clients,
		})
	}
	s.writeOK(conn, result)
}

func (s *Server) handleReload(conn net.Conn) {
	if s.reload == nil {
		s.writeError(conn, errors.New("reload not supported"))
		return
	}
	if err := s.reload("control request"); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) handleMetrics(conn net.Conn) {
	s.writeOK(conn, s.collector.Snapshot())
}

func (s *Server) handleRefresh(ctx context.Context, conn net.Conn) {
	if err := s.renamer.Refresh(ctx); err != nil {
		s.writeError(conn, err)
		return
	}
	s.writeOK(conn, nil)
}

func (s *Server) writeOK(conn net.Conn, data any) {
	resp := Response{Status: StatusOK}
	if data != nil {
		resp.Data = data
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

func (s *Server) writeError(conn net.Conn, err error) {
	resp := Response{Status: StatusError}
	if err != nil {
		resp.Error = err.Error()
	}
	_ = json.NewEncoder(conn).Encode(resp)
}
