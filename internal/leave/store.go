package leave

import (
	"sort"
	"strings"
	"sync"

	"github.com/hackgods/clinic-scheduling/internal/apperr"
	"github.com/hackgods/clinic-scheduling/internal/calendar"
	"github.com/hackgods/clinic-scheduling/internal/ident"
)

// Store owns leave requests. Only PENDING leaves change, and only their owner edits them.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Leave
}

func NewStore() *Store {
	return &Store{items: make(map[string]*Leave)}
}

func (s *Store) Replace(all []Leave) {
	items := make(map[string]*Leave, len(all))
	for i := range all {
		l := all[i]
		items[l.ID] = &l
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

func (s *Store) All() []Leave {
	return s.Find(Filter{})
}

func (s *Store) Find(f Filter) []Leave {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Leave, 0, len(s.items))
	for _, l := range s.items {
		if f.Match(*l) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Get(id string) (Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.items[id]
	if !ok {
		return Leave{}, apperr.NotFound(id, "leave %s not found", id)
	}
	return *l, nil
}

// OnLeave reports whether staffID has an approved leave on date.
func (s *Store) OnLeave(staffID string, date calendar.Date) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, l := range s.items {
		if l.StaffID == staffID && l.Date.Equal(date) && l.Status == StatusApproved {
			return true
		}
	}
	return false
}

// Create files a new PENDING leave under the next LR id.
func (s *Store) Create(staffID string, date calendar.Date, reason string) Leave {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	l := Leave{
		ID:      ident.Next(ids, IDPrefix, IDWidth),
		StaffID: staffID,
		Date:    date,
		Status:  StatusPending,
		Reason:  strings.TrimSpace(reason),
	}
	stored := l
	s.items[l.ID] = &stored
	return l
}

// Update changes date and reason of a pending leave owned by staffID.
func (s *Store) Update(id, staffID string, date calendar.Date, reason string) (Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.editable(id, staffID)
	if err != nil {
		return Leave{}, err
	}
	l.Date = date
	l.Reason = strings.TrimSpace(reason)
	return *l, nil
}

// Withdraw deletes a pending leave owned by staffID.
func (s *Store) Withdraw(id, staffID string) (Leave, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, err := s.editable(id, staffID)
	if err != nil {
		return Leave{}, err
	}
	delete(s.items, id)
	return *l, nil
}

// CheckPending fails unless id exists and is still PENDING.
func (s *Store) CheckPending(id string) (Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.items[id]
	if !ok {
		return Leave{}, apperr.NotFound(id, "leave %s not found", id)
	}
	if l.Status != StatusPending {
		return Leave{}, apperr.InvalidTransition(id, "leave %s is already %s", id, l.Status)
	}
	return *l, nil
}

// Resolve moves a PENDING leave to APPROVED or REJECTED.
func (s *Store) Resolve(id string, to Status) (Leave, error) {
	if to != StatusApproved && to != StatusRejected {
		return Leave{}, apperr.InvalidTransition(id, "leave %s cannot move to %s", id, to)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.items[id]
	if !ok {
		return Leave{}, apperr.NotFound(id, "leave %s not found", id)
	}
	if l.Status != StatusPending {
		return Leave{}, apperr.InvalidTransition(id, "leave %s is already %s", id, l.Status)
	}
	l.Status = to
	return *l, nil
}

func (s *Store) editable(id, staffID string) (*Leave, error) {
	l, ok := s.items[id]
	if !ok {
		return nil, apperr.NotFound(id, "leave %s not found", id)
	}
	if l.StaffID != staffID {
		return nil, apperr.Ownership(id, "leave %s belongs to %s, not %s", id, l.StaffID, staffID)
	}
	if l.Status != StatusPending {
		return nil, apperr.InvalidTransition(id, "leave %s is already %s and can no longer be changed", id, l.Status)
	}
	return l, nil
}
