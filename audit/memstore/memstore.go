// Package memstore is the in-process implementation of audit.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/yawlrun/yawlrun/audit"
	"github.com/yawlrun/yawlrun/net"
)

// Store is an in-process, mutex-protected audit.Store.
type Store struct {
	mu     sync.RWMutex
	traces map[net.ID]*audit.Trace
	spans  map[net.ID][]*audit.Span
	events map[net.ID][]*audit.KeyEvent
}

// NewStore returns an empty in-process audit store.
func NewStore() *Store {
	return &Store{
		traces: make(map[net.ID]*audit.Trace),
		spans:  make(map[net.ID][]*audit.Span),
		events: make(map[net.ID][]*audit.KeyEvent),
	}
}

func (s *Store) SaveTrace(_ context.Context, t *audit.Trace) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.traces[t.ID] = &cp
	return nil
}

func (s *Store) SaveSpans(_ context.Context, spans []*audit.Span) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range spans {
		cp := *sp
		s.spans[sp.TraceID] = append(s.spans[sp.TraceID], &cp)
	}
	return nil
}

func (s *Store) SaveKeyEvents(_ context.Context, events []*audit.KeyEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		cp := *ev
		s.events[ev.TraceID] = append(s.events[ev.TraceID], &cp)
	}
	return nil
}

func (s *Store) GetRootSpans(_ context.Context, traceID net.ID) ([]*audit.Span, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*audit.Span
	for _, sp := range s.spans[traceID] {
		if sp.ParentSpanID == nil {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) GetChildSpans(_ context.Context, traceID, parentSpanID net.ID) ([]*audit.Span, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*audit.Span
	for _, sp := range s.spans[traceID] {
		if sp.ParentSpanID != nil && *sp.ParentSpanID == parentSpanID {
			cp := *sp
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) GetKeyEvents(_ context.Context, traceID net.ID) ([]*audit.KeyEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*audit.KeyEvent, len(s.events[traceID]))
	for i, ev := range s.events[traceID] {
		cp := *ev
		out[i] = &cp
	}
	return out, nil
}
