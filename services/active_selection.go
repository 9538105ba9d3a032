package services

import (
	"sync"
	"time"

	"github.com/fenilmodi00/counsel-backend/models"
)

// DeriveActiveTab computes the selection after a regroup. A previous tab that
// still has items is kept; otherwise the first non-empty tab in declaration
// order wins. When every tab is empty there is no selection.
func DeriveActiveTab(previous models.Tab, buckets TabCounter) (models.Tab, bool) {
	if previous != "" && previous != Unclassified && buckets.Count(previous) > 0 && inVocabulary(previous, buckets.Vocabulary()) {
		return previous, true
	}
	for _, tab := range buckets.Vocabulary() {
		if buckets.Count(tab) > 0 {
			return tab, true
		}
	}
	return "", false
}

func inVocabulary(tab models.Tab, vocabulary []models.Tab) bool {
	for _, t := range vocabulary {
		if t == tab {
			return true
		}
	}
	return false
}

// SelectionState is the per-view selection reducer. Regroup applies the
// correction rule, Select records a user click as-is.
type SelectionState struct {
	Active    models.Tab `json:"active"`
	Selected  bool       `json:"selected"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Regroup returns the state after the underlying items changed
func (s SelectionState) Regroup(buckets TabCounter) SelectionState {
	tab, ok := DeriveActiveTab(s.Active, buckets)
	return SelectionState{Active: tab, Selected: ok, UpdatedAt: time.Now()}
}

// Select returns the state after the user picked tab, even an empty one
func (s SelectionState) Select(tab models.Tab) SelectionState {
	return SelectionState{Active: tab, Selected: tab != "", UpdatedAt: time.Now()}
}

// ViewStateStore keeps one SelectionState per (user, view)
type ViewStateStore struct {
	mutex  sync.RWMutex
	states map[string]SelectionState
}

// NewViewStateStore creates an empty store
func NewViewStateStore() *ViewStateStore {
	return &ViewStateStore{states: make(map[string]SelectionState)}
}

func viewKey(userID, view string) string {
	return userID + "|" + view
}

// Get returns the stored state for (user, view); the zero state if none
func (s *ViewStateStore) Get(userID, view string) SelectionState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.states[viewKey(userID, view)]
}

// Regroup applies the correction rule to the stored state and saves the result
func (s *ViewStateStore) Regroup(userID, view string, buckets TabCounter) SelectionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := viewKey(userID, view)
	next := s.states[key].Regroup(buckets)
	s.states[key] = next
	return next
}

// Select stores a user-initiated selection
func (s *ViewStateStore) Select(userID, view string, tab models.Tab) SelectionState {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	key := viewKey(userID, view)
	next := s.states[key].Select(tab)
	s.states[key] = next
	return next
}

// PurgeOlderThan drops states not touched since cutoff, returning how many were removed
func (s *ViewStateStore) PurgeOlderThan(cutoff time.Time) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := 0
	for key, state := range s.states {
		if state.UpdatedAt.Before(cutoff) {
			delete(s.states, key)
			removed++
		}
	}
	return removed
}

// Size returns the number of stored states
func (s *ViewStateStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.states)
}
