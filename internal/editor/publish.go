package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"mailcanvas/internal/models"
)

// SnapshotSink receives every canvas snapshot of a session. Sinks are a
// convenience mirror: a failing sink is logged and otherwise ignored.
type SnapshotSink interface {
	PublishSnapshot(ctx context.Context, sessionID string, snap models.CanvasSnapshot) error
}

const sinkTimeout = 2 * time.Second

// publisher delivers snapshots to sinks off the session lock. When sinks
// fall behind, intermediate snapshots are skipped and only the latest one
// is delivered.
type publisher struct {
	sessionID string
	sinks     []SnapshotSink

	mu     sync.Mutex
	latest *models.CanvasSnapshot
	wake   chan struct{}
	stop   chan struct{}
	idle   chan struct{}
	once   sync.Once
}

func newPublisher(sessionID string, sinks []SnapshotSink) *publisher {
	p := &publisher{
		sessionID: sessionID,
		sinks:     sinks,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		idle:      make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *publisher) offer(snap models.CanvasSnapshot) {
	if len(p.sinks) == 0 {
		return
	}
	p.mu.Lock()
	p.latest = &snap
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *publisher) run() {
	defer close(p.idle)
	for {
		select {
		case <-p.stop:
			p.deliver()
			return
		case <-p.wake:
			p.deliver()
		}
	}
}

func (p *publisher) deliver() {
	p.mu.Lock()
	snap := p.latest
	p.latest = nil
	p.mu.Unlock()
	if snap == nil {
		return
	}

	for _, sink := range p.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := sink.PublishSnapshot(ctx, p.sessionID, *snap)
		cancel()
		if err != nil {
			snapshotSinkFailures.Inc()
			slog.Warn("snapshot sink failed", "session", p.sessionID, "error", err)
			continue
		}
	}
	snapshotsPublished.Inc()
}

// close delivers any queued snapshot and stops the goroutine.
func (p *publisher) close() {
	p.once.Do(func() { close(p.stop) })
	<-p.idle
}
