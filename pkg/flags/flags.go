// Package flags derives optimization signals from cleaned search metrics.
// Everything here is a pure function of the metric inputs: no state, no
// randomness, recomputed whenever metrics change.
package flags

import "github.com/seolens/seolens-engine/pkg/models"

// Design constants for the three regression signals.
const (
	// ctrDropRatio flags a relative CTR decline of more than 10%.
	ctrDropRatio = 0.9
	// lowCTRThreshold, topPositionLimit and highImpressions together flag
	// entities that rank well and are shown often but rarely get clicked.
	lowCTRThreshold  = 0.02
	topPositionLimit = 3.0
	highImpressions  = 5000
)

// Compute derives all boolean flags and numeric deltas for one record's
// metrics.
func Compute(m models.Metrics) models.Flags {
	f := models.Flags{
		CTRDrop: m.LastCTR < m.PrevCTR*ctrDropRatio,
		LowCTRHighPos: m.LastCTR < lowCTRThreshold &&
			m.LastPosition < topPositionLimit &&
			m.LastImpressions > highImpressions,
		ClickDownImprUp: m.LastClicks < m.PrevClicks &&
			m.LastImpressions > m.PrevImpressions,

		CTRDropPct:     (m.PrevCTR - m.LastCTR) * 100,
		ClickLoss:      m.PrevClicks - m.LastClicks,
		CTRGap:         m.PrevCTR - m.LastCTR,
		PositionChange: m.PrevPosition - m.LastPosition,
	}
	f.NeedsOptimization = f.CTRDrop || f.LowCTRHighPos || f.ClickDownImprUp
	return f
}
