package models

import "strings"

// EntityKind identifies what the rows of an export describe.
type EntityKind string

const (
	EntityQuery EntityKind = "query"
	EntityPage  EntityKind = "page"
)

// Metrics holds the cleaned per-period numbers for one entity.
// CTR values are always 0-1 fractions after cleaning, regardless of how
// the source encoded them.
type Metrics struct {
	LastClicks      int64   `json:"last_clicks"`
	PrevClicks      int64   `json:"prev_clicks"`
	LastImpressions int64   `json:"last_impressions"`
	PrevImpressions int64   `json:"prev_impressions"`
	LastCTR         float64 `json:"last_ctr"`
	PrevCTR         float64 `json:"prev_ctr"`
	LastPosition    float64 `json:"last_position"`
	PrevPosition    float64 `json:"prev_position"`
}

// Flags are the derived optimization signals for one record.
// Recomputed from Metrics, never persisted.
type Flags struct {
	CTRDrop           bool `json:"ctr_drop"`
	LowCTRHighPos     bool `json:"low_ctr_high_position"`
	ClickDownImprUp   bool `json:"click_down_impr_up"`
	NeedsOptimization bool `json:"needs_optimization"`

	CTRDropPct     float64 `json:"ctr_drop_pct"`
	ClickLoss      int64   `json:"click_loss"`
	CTRGap         float64 `json:"ctr_gap"`
	PositionChange float64 `json:"position_change"`
}

// KeywordRecord is one row of the working dataset.
type KeywordRecord struct {
	// Entity is the query or page as it appeared in the upload; display
	// casing is taken from the first occurrence.
	Entity  string  `json:"entity"`
	Metrics Metrics `json:"metrics"`
	Flags   Flags   `json:"flags"`
	Intent  Intent  `json:"keyword_intent"`
}

// Key returns the case-folded match key. All intent matching (store,
// classifier, manual edits) happens on this key, never on display casing.
func (r *KeywordRecord) Key() string {
	return FoldKey(r.Entity)
}

// FoldKey case-folds an entity string for matching.
func FoldKey(entity string) string {
	return strings.ToLower(strings.TrimSpace(entity))
}
