// Package services holds the session-scoped working state and the
// reconciliation logic that merges stored, AI-suggested and manually
// edited intent labels.
package services

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/dataset"
	"github.com/seolens/seolens-engine/pkg/models"
)

// Session owns one loaded dataset for the duration of an interactive
// run. Nothing outside the session observes the working table; only
// flushed intents reach the durable store.
type Session struct {
	ID      uuid.UUID
	dataset *dataset.Dataset

	byKey map[string]*models.KeywordRecord
	// baseline is the per-keyword label state as of the last flush (or
	// the store seed). Flush writes only keywords whose current label
	// differs from it.
	baseline map[string]models.Intent

	logger *zap.Logger
}

// NewSession wraps a loaded dataset in session state.
func NewSession(ds *dataset.Dataset, logger *zap.Logger) *Session {
	s := &Session{
		ID:       uuid.New(),
		dataset:  ds,
		byKey:    make(map[string]*models.KeywordRecord, len(ds.Records)),
		baseline: make(map[string]models.Intent, len(ds.Records)),
		logger:   logger.Named("session"),
	}
	for _, rec := range ds.Records {
		s.byKey[rec.Key()] = rec
	}
	return s
}

// Dataset returns the session's working dataset.
func (s *Session) Dataset() *dataset.Dataset { return s.dataset }

// Records returns the working table in load order.
func (s *Session) Records() []*models.KeywordRecord { return s.dataset.Records }

// SeedFromStore applies stored intents to the dataset and records them
// as the flush baseline. Keys are case-folded; keywords without a stored
// record stay Unknown.
func (s *Session) SeedFromStore(stored map[string]models.Intent) int {
	seeded := 0
	for key, intent := range stored {
		rec, ok := s.byKey[key]
		if !ok || !intent.Known() {
			continue
		}
		rec.Intent = intent
		s.baseline[key] = intent
		seeded++
	}
	s.logger.Debug("session seeded from store", zap.Int("seeded", seeded))
	return seeded
}

// ApplyClassification fills in classifier results for keywords that are
// still Unknown. Keywords already classified or edited are never
// overwritten by a fresh classification pass: stored and manual labels
// always beat re-classification.
func (s *Session) ApplyClassification(intents map[string]models.Intent) int {
	applied := 0
	for key, intent := range intents {
		rec, ok := s.byKey[key]
		if !ok || !intent.Known() {
			continue
		}
		if rec.Intent.Known() {
			continue
		}
		rec.Intent = intent
		applied++
	}
	return applied
}

// ApplyEdit applies an operator-supplied label, which unconditionally
// overwrites the current state. Returns false when the keyword is not in
// the dataset or the label is unchanged (unchanged edits produce no
// store write).
func (s *Session) ApplyEdit(entity string, intent models.Intent) bool {
	rec, ok := s.byKey[models.FoldKey(entity)]
	if !ok || rec.Intent == intent {
		return false
	}
	rec.Intent = intent
	return true
}

// UnknownKeywords returns the entities (display casing) that still lack
// a known intent, in load order. These are the classification candidates.
func (s *Session) UnknownKeywords() []string {
	var keywords []string
	for _, rec := range s.dataset.Records {
		if !rec.Intent.Known() {
			keywords = append(keywords, rec.Entity)
		}
	}
	return keywords
}

// UnknownCount reports how many records still lack a known intent.
func (s *Session) UnknownCount() int {
	n := 0
	for _, rec := range s.dataset.Records {
		if !rec.Intent.Known() {
			n++
		}
	}
	return n
}

// PendingChanges returns the flush candidates: every keyword whose known
// label differs from the baseline. Unknown labels are never persisted.
func (s *Session) PendingChanges() []models.IntentRecord {
	var changes []models.IntentRecord
	for _, rec := range s.dataset.Records {
		if !rec.Intent.Known() {
			continue
		}
		if s.baseline[rec.Key()] == rec.Intent {
			continue
		}
		changes = append(changes, models.IntentRecord{
			Keyword: rec.Key(),
			Intent:  rec.Intent,
		})
	}
	return changes
}

// commitFlush advances the baseline after a successful upsert.
func (s *Session) commitFlush(written []models.IntentRecord) {
	for _, rec := range written {
		s.baseline[rec.Keyword] = rec.Intent
	}
}
