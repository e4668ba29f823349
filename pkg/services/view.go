package services

import (
	"sort"

	"github.com/seolens/seolens-engine/pkg/models"
)

// SortOption orders a filtered view for export or display.
type SortOption string

const (
	SortDefault         SortOption = "default"
	SortImpressionsLast SortOption = "impressions_last"
	SortCTRDropPct      SortOption = "ctr_drop_pct"
	SortClickLoss       SortOption = "click_loss"
	SortCTRGap          SortOption = "ctr_gap"
)

// ViewOptions filter and order the working table without mutating it.
type ViewOptions struct {
	// OnlyNeedsOptimization keeps only flagged records.
	OnlyNeedsOptimization bool
	// Intents, when non-empty, keeps only records carrying one of the
	// listed labels.
	Intents []models.Intent
	SortBy  SortOption
}

// View returns a filtered, sorted copy of the record list. Descending
// order on the chosen metric puts the biggest regressions first.
func (s *Session) View(opts ViewOptions) []*models.KeywordRecord {
	allowed := make(map[models.Intent]bool, len(opts.Intents))
	for _, i := range opts.Intents {
		allowed[i] = true
	}

	var view []*models.KeywordRecord
	for _, rec := range s.dataset.Records {
		if opts.OnlyNeedsOptimization && !rec.Flags.NeedsOptimization {
			continue
		}
		if len(allowed) > 0 && !allowed[rec.Intent] {
			continue
		}
		view = append(view, rec)
	}

	switch opts.SortBy {
	case SortImpressionsLast:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Metrics.LastImpressions > view[j].Metrics.LastImpressions
		})
	case SortCTRDropPct:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Flags.CTRDropPct > view[j].Flags.CTRDropPct
		})
	case SortClickLoss:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Flags.ClickLoss > view[j].Flags.ClickLoss
		})
	case SortCTRGap:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Flags.CTRGap > view[j].Flags.CTRGap
		})
	}

	return view
}
