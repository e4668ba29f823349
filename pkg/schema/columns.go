// Package schema maps arbitrary search-performance export headers onto
// the fixed canonical column set the rest of the pipeline depends on.
package schema

import "github.com/seolens/seolens-engine/pkg/models"

// Canonical column names. All processing logic operates on these; the
// original headers survive only inside the ColumnMapping for display and
// export round-trips.
const (
	ColTopQueries = "Top queries"
	ColTopPages   = "Top pages"

	ColLastClicks      = "Last 3 months Clicks"
	ColPrevClicks      = "Previous 3 months Clicks"
	ColLastImpressions = "Last 3 months Impressions"
	ColPrevImpressions = "Previous 3 months Impressions"
	ColLastCTR         = "Last 3 months CTR"
	ColPrevCTR         = "Previous 3 months CTR"
	ColLastPosition    = "Last 3 months Position"
	ColPrevPosition    = "Previous 3 months Position"
)

// MetricColumns lists the eight canonical metric columns in cleaning
// order. The entity column is not included.
var MetricColumns = []string{
	ColLastClicks, ColPrevClicks,
	ColLastImpressions, ColPrevImpressions,
	ColLastCTR, ColPrevCTR,
	ColLastPosition, ColPrevPosition,
}

// positionalOrder is the known export layout used when headers are
// unrecognized but the column count matches exactly.
var positionalOrder = []string{
	ColTopQueries,
	ColLastClicks, ColPrevClicks,
	ColLastImpressions, ColPrevImpressions,
	ColLastCTR, ColPrevCTR,
	ColLastPosition, ColPrevPosition,
}

// ColumnCount is the number of columns the canonical schema requires.
var ColumnCount = len(positionalOrder)

// EntityColumn returns the canonical name of the entity column for a
// given entity kind.
func EntityColumn(kind models.EntityKind) string {
	if kind == models.EntityPage {
		return ColTopPages
	}
	return ColTopQueries
}
