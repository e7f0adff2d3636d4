package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/catalog"
	"mailcanvas/internal/models"
)

// SnapshotStore is a sink that can also hand back the last snapshot it
// received, which lets a session outlive a server restart.
type SnapshotStore interface {
	SnapshotSink
	LoadSnapshot(ctx context.Context, sessionID string) (*models.CanvasSnapshot, error)
	DeleteSnapshot(ctx context.Context, sessionID string) error
}

// Manager holds the editing sessions of this process.
type Manager struct {
	catalog     *catalog.Catalog
	opts        Options
	store       SnapshotStore
	idleTimeout time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a Manager. store may be nil, in which case sessions
// cannot be resumed after they leave memory. An idleTimeout of zero
// disables sweeping.
func NewManager(cat *catalog.Catalog, opts Options, store SnapshotStore, idleTimeout time.Duration) *Manager {
	if store != nil {
		opts.Sinks = append(append([]SnapshotSink{}, opts.Sinks...), store)
	}
	return &Manager{
		catalog:     cat,
		opts:        opts,
		store:       store,
		idleTimeout: idleTimeout,
		sessions:    make(map[string]*Session),
	}
}

// Catalog returns the starter templates sessions are created from.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Create starts a session seeded from a catalog entry. An empty catalogID
// starts from a blank canvas.
func (m *Manager) Create(ctx context.Context, catalogID string) (*Session, error) {
	return m.start(ctx, uuid.NewString(), catalogID, nil)
}

func (m *Manager) start(ctx context.Context, id, catalogID string, elements []models.Element) (*Session, error) {
	draft := models.Draft{TemplateType: "email"}
	if catalogID != "" {
		entry, ok := m.catalog.Get(catalogID)
		if !ok {
			return nil, fmt.Errorf("catalog entry %q: %w", catalogID, canvas.ErrNotFound)
		}
		draft = entry.Draft()
	}
	if elements != nil {
		draft.Elements = elements
	}

	s, err := NewSession(id, draft, m.opts)
	if err != nil {
		return nil, err
	}
	s.CatalogID = catalogID
	s.LoadLayout(ctx)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		s.Close()
		return existing, nil
	}
	m.sessions[id] = s
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	slog.Info("editor session started", "session", id, "catalog", catalogID, "elements", len(draft.Elements))
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Resume returns the live session with the given id, or rebuilds it from
// the last mirrored snapshot. The catalog entry supplies the style set,
// which snapshots do not carry.
func (m *Manager) Resume(ctx context.Context, id, catalogID string) (*Session, error) {
	if s, ok := m.Get(id); ok {
		return s, nil
	}
	if m.store == nil {
		return nil, fmt.Errorf("session %q: %w", id, canvas.ErrNotFound)
	}
	snap, err := m.store.LoadSnapshot(ctx, id)
	if err != nil {
		return nil, &canvas.IOError{Op: "load snapshot", Err: err}
	}
	if snap == nil {
		return nil, fmt.Errorf("session %q: %w", id, canvas.ErrNotFound)
	}
	elements := snap.Elements
	if elements == nil {
		elements = []models.Element{}
	}
	return m.start(ctx, id, catalogID, elements)
}

// Discard drops a session without touching any saved template. Its
// mirrored snapshot is removed too.
func (m *Manager) Discard(ctx context.Context, id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	if m.store != nil {
		if err := m.store.DeleteSnapshot(ctx, id); err != nil {
			slog.Warn("deleting session snapshot", "session", id, "error", err)
		}
	}
	if ok {
		slog.Info("editor session discarded", "session", id)
	}
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle since before now minus the idle timeout. The
// mirrored snapshot is kept so the session can be resumed.
func (m *Manager) Sweep(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idleTimeout)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	activeSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
		slog.Info("editor session evicted", "session", s.ID)
	}
	return len(idle)
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context, every time.Duration) {
	if m.idleTimeout <= 0 || every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Close stops every live session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	activeSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
