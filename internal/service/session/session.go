// Package session holds the per-technician working copy of the shared job
// table. Edits land in memory and are pushed to the remote worksheet only at
// sync points, because the worksheet API is rate limited and supports only a
// wholesale replace.
//
// Known hazard: two sessions editing concurrently race on that full-replace
// save and the later write silently wins, discarding the earlier session's
// changes. The system assumes a single writer at a time; this is a documented
// limitation, not a guarantee.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"uelco_jobs/internal/domain"
	"uelco_jobs/internal/model"

	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnknownColumn = errors.New("unknown column")
)

// Session owns one in-memory copy of the table, the dirty flag, and the
// at-most-one selected record. The dirty flag is the one correctness-critical
// piece of state: true exactly when the table differs from the last
// successfully persisted version.
type Session struct {
	store  domain.RecordStore
	logger *zap.Logger

	mu       sync.Mutex
	records  []model.Record
	dirty    bool
	selected string
}

// New loads the worksheet and starts a clean session.
func New(ctx context.Context, store domain.RecordStore, logger *zap.Logger) (*Session, error) {
	records, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading record table: %w", err)
	}
	return &Session{
		store:   store,
		logger:  logger,
		records: records,
	}, nil
}

// Snapshot is an immutable view of session state handed to the presentation
// layer after every command.
type Snapshot struct {
	Records  []model.Record
	Dirty    bool
	Selected string
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	records := make([]model.Record, len(s.records))
	copy(records, s.records)
	return Snapshot{Records: records, Dirty: s.dirty, Selected: s.selected}
}

// ApplyEdit writes new values into the targeted records, column by column,
// and marks the session dirty if anything actually changed. The remote store
// is never touched here.
//
// Change detection compares canonical string forms, so type drift between a
// stored date and its text spelling does not register as a change. The flip
// side is that distinct values printing identically count as equal; that
// imprecision is inherited and kept.
func (s *Session) ApplyEdit(ids []string, changes map[string]string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known := make(map[string]struct{}, len(model.Columns()))
	for _, c := range model.Columns() {
		known[c] = struct{}{}
	}
	for col := range changes {
		if _, ok := known[col]; !ok {
			return false, fmt.Errorf("%w: %s", ErrUnknownColumn, col)
		}
	}

	changed := false
	for _, id := range ids {
		idx := s.indexLocked(id)
		if idx < 0 {
			return changed, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		for col, raw := range changes {
			// Identity and category are fixed at creation.
			if col == model.ColRecordID || col == model.ColCategory {
				continue
			}
			candidate := s.records[idx]
			candidate.SetValue(col, raw)
			if candidate.Value(col) == s.records[idx].Value(col) {
				continue
			}
			s.records[idx] = candidate
			changed = true
		}
	}
	if changed {
		s.dirty = true
	}
	return changed, nil
}

// Add appends the record and immediately syncs with a reload.
func (s *Session) Add(ctx context.Context, rec model.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.dirty = true
	return s.syncLocked(ctx, true)
}

// Delete removes the record, clears a selection pointing at it, then syncs
// with a reload.
func (s *Session) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.selected == id {
		s.selected = ""
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	s.dirty = true
	return s.syncLocked(ctx, true)
}

// Sync pushes the table to the store. On success the dirty flag clears; with
// forceReload the table is then re-read so edits made directly in the sheet
// are picked up. On failure nothing changes, so the unsaved indicator stays
// accurate.
func (s *Session) Sync(ctx context.Context, forceReload bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncLocked(ctx, forceReload)
}

func (s *Session) syncLocked(ctx context.Context, forceReload bool) error {
	if err := s.store.Save(ctx, s.records); err != nil {
		return fmt.Errorf("error saving record table: %w", err)
	}
	s.dirty = false

	if !forceReload {
		return nil
	}
	records, err := s.store.Load(ctx)
	if err != nil {
		// The save went through, so the dirty flag stays cleared; the stale
		// local copy is refreshed on the next successful sync.
		return fmt.Errorf("saved, but error reloading record table: %w", err)
	}
	s.records = records
	if s.selected != "" && s.indexLocked(s.selected) < 0 {
		s.selected = ""
	}
	return nil
}

// Select marks the record as the active selection for edit/delete.
func (s *Session) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.selected = id
	return nil
}

func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Selected returns the selected record, but only when it belongs to the
// asking category view; a selection made under another tab stays invisible.
func (s *Session) Selected(category model.Category) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.selected)
	if idx < 0 || s.records[idx].Category != category {
		return model.Record{}, false
	}
	return s.records[idx], true
}

// Get looks a record up by ID.
func (s *Session) Get(id string) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return model.Record{}, false
	}
	return s.records[idx], true
}

func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

func (s *Session) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}
