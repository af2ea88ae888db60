package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/presenter"
	"github.com/mabteam/poimap/internal/pkg/metrics"
)

// Session serializes recluster cycles for a single map view. A new request
// cancels the one in flight, and the last frame only changes when a cycle
// completes.
type Session struct {
	svc *MapService

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	last   *Frame
	used   time.Time
}

// NewSession creates a Session with no previous frame.
func (s *MapService) NewSession() *Session {
	return &Session{svc: s, used: time.Now()}
}

// Recluster runs a cycle against the last completed frame. It returns
// ErrSuperseded if another call started before this one finished.
func (ss *Session) Recluster(ctx context.Context, viewport domain.Region, zoom float64) (*Frame, error) {
	if err := viewport.Validate(); err != nil {
		return nil, err
	}

	ss.mu.Lock()
	if ss.cancel != nil {
		ss.cancel()
	}
	ss.seq++
	seq := ss.seq
	cctx, cancel := context.WithCancel(ctx)
	ss.cancel = cancel
	ss.used = time.Now()
	var prev presenter.ViewModel
	if ss.last != nil {
		prev = ss.last.ViewModel
	}
	ss.mu.Unlock()
	defer cancel()

	frame, err := ss.svc.Recluster(cctx, prev, viewport, zoom)

	ss.mu.Lock()
	defer ss.mu.Unlock()
	if seq != ss.seq {
		metrics.ReclustersSuperseded.Inc()
		return nil, ErrSuperseded
	}
	ss.cancel = nil
	if err != nil {
		return nil, err
	}
	ss.last = frame
	return frame, nil
}

// Last returns the most recent completed frame, or nil.
func (ss *Session) Last() *Frame {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.last
}

// Close cancels any cycle in flight.
func (ss *Session) Close() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.cancel != nil {
		ss.cancel()
		ss.cancel = nil
	}
}

func (ss *Session) idleSince() time.Time {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.used
}

// Sessions keeps one Session per client-chosen key and evicts idle ones.
type Sessions struct {
	svc     *MapService
	maxIdle time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessions creates a registry evicting sessions unused for maxIdle.
func NewSessions(svc *MapService, maxIdle time.Duration) *Sessions {
	return &Sessions{svc: svc, maxIdle: maxIdle, sessions: make(map[string]*Session)}
}

// Get returns the session for key, creating it if needed.
func (r *Sessions) Get(key string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ss, ok := r.sessions[key]; ok {
		return ss
	}
	ss := r.svc.NewSession()
	r.sessions[key] = ss
	return ss
}

// Len reports the number of live sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Evict closes and drops sessions idle for longer than maxIdle.
func (r *Sessions) Evict(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for key, ss := range r.sessions {
		if now.Sub(ss.idleSince()) > r.maxIdle {
			ss.Close()
			delete(r.sessions, key)
			n++
		}
	}
	return n
}

// Run evicts idle sessions every interval until ctx is done.
func (r *Sessions) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			r.Evict(now)
		}
	}
}
