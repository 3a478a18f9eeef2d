package connect

import (
	"go.uber.org/zap"

	"threef/internal/workspace"
)

// Connection is a directed edge between two entry handles.
type Connection struct {
	From workspace.Handle
	To   workspace.Handle
}

func (c Connection) String() string {
	return c.From.String() + "->" + c.To.String()
}

// Store is the authoritative list of established connections.
type Store struct {
	kinds   Kinds
	conns   []Connection
	pending *Connection
	log     *zap.Logger
}

func NewStore(kinds Kinds, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{kinds: kinds, log: log}
}

// Add inserts a connection when it is valid and not already present.
// Anything else is a silent no-op.
func (s *Store) Add(from, to workspace.Handle) (Connection, bool) {
	c := Connection{From: from, To: to}
	if !IsValid(s.kinds, from, to) {
		return Connection{}, false
	}
	if s.Contains(c) {
		return Connection{}, false
	}
	s.conns = append(s.conns, c)
	s.log.Debug("connection added", zap.Stringer("connection", c))
	return c, true
}

func (s *Store) Contains(c Connection) bool {
	for _, existing := range s.conns {
		if existing == c {
			return true
		}
	}
	return false
}

// RequestRemoval marks c for deletion. Nothing is deleted until
// ConfirmRemoval is called.
func (s *Store) RequestRemoval(c Connection) bool {
	if !s.Contains(c) {
		return false
	}
	s.pending = &c
	return true
}

// Pending returns the connection awaiting confirmation, if any.
func (s *Store) Pending() (Connection, bool) {
	if s.pending == nil {
		return Connection{}, false
	}
	return *s.pending, true
}

// ConfirmRemoval deletes the pending connection.
func (s *Store) ConfirmRemoval() (Connection, bool) {
	if s.pending == nil {
		return Connection{}, false
	}
	c := *s.pending
	s.pending = nil
	if !s.remove(c) {
		return Connection{}, false
	}
	s.log.Debug("connection removed", zap.Stringer("connection", c))
	return c, true
}

func (s *Store) CancelRemoval() {
	s.pending = nil
}

func (s *Store) remove(c Connection) bool {
	for i, existing := range s.conns {
		if existing == c {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return true
		}
	}
	return false
}

// PruneDead removes every connection with an endpoint that is no longer
// live and returns how many were removed.
func (s *Store) PruneDead(live Liveness) int {
	kept := s.conns[:0]
	removed := 0
	for _, c := range s.conns {
		if live.Has(c.From.EntryID) && live.Has(c.To.EntryID) {
			kept = append(kept, c)
			continue
		}
		removed++
	}
	s.conns = kept
	if s.pending != nil && !s.Contains(*s.pending) {
		s.pending = nil
	}
	if removed > 0 {
		s.log.Debug("pruned dead connections", zap.Int("count", removed))
	}
	return removed
}

// Snapshot returns a copy of the current connections.
func (s *Store) Snapshot() []Connection {
	return append([]Connection(nil), s.conns...)
}

func (s *Store) Len() int {
	return len(s.conns)
}

func (s *Store) Clear() {
	s.conns = nil
	s.pending = nil
}
