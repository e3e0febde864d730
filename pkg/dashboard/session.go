// pkg/dashboard/session.go
package dashboard

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/transito-gt/tablero/pkg/model"
	"github.com/transito-gt/tablero/pkg/selection"
)

// Cross-filter slots every session declares.
const (
	SlotDepartment   = "department"
	SlotAccidentType = "accident_type"
	SlotVehicleType  = "vehicle_type"
)

type dataset struct {
	records []model.CanonicalRecord
	reason  string // non-empty when the dataset failed to normalize
}

// Session holds one viewer's state: the normalized datasets its views read
// and the selection store its views cross-filter through. Sessions are
// independent; a selection in one is never visible in another.
type Session struct {
	store  *selection.Store
	logger *zap.Logger

	mu       sync.RWMutex
	datasets map[string]*dataset
}

// NewSession creates an empty session with the standard cross-filter slots.
func NewSession(logger *zap.Logger) (*Session, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Session{
		store:    selection.NewStore(SlotDepartment, SlotAccidentType, SlotVehicleType),
		logger:   logger.Named("session"),
		datasets: make(map[string]*dataset),
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.store.ID()
}

// Selections exposes the session's cross-filter store.
func (s *Session) Selections() *selection.Store {
	return s.store
}

// Attach makes a normalized dataset available to the session's views.
func (s *Session) Attach(name string, records []model.CanonicalRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = &dataset{records: records}
}

// MarkUnavailable records that a dataset could not be produced. Views over
// it render a degraded state; views over other datasets are unaffected.
func (s *Session) MarkUnavailable(name, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = &dataset{reason: reason}
	s.logger.Warn("Dataset unavailable for session",
		zap.String("sessionId", s.store.ID()),
		zap.String("dataset", name),
		zap.String("reason", reason))
}

// Select records a cross-filter selection. Failing closed on an unknown
// slot keeps a typo from silently filtering nothing.
func (s *Session) Select(slot, value string) error {
	return s.store.Set(slot, value)
}

// ClearSelection removes one slot's selection.
func (s *Session) ClearSelection(slot string) error {
	return s.store.Clear(slot)
}

// Reset clears every cross-filter selection at once.
func (s *Session) Reset() {
	s.store.ResetAll()
}

// records returns the dataset's records, or the degraded reason.
func (s *Session) records(name string) ([]model.CanonicalRecord, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[name]
	if !ok {
		return nil, "dataset not loaded"
	}
	if ds.reason != "" {
		return nil, ds.reason
	}
	return ds.records, ""
}
