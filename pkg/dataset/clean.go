// Package dataset loads delimited search-performance exports into the
// canonical working table, coercing heterogeneous cell encodings into
// clean numeric metrics.
package dataset

import (
	"strconv"
	"strings"
)

// CoercionStats counts what the lossy cleaning policy did to a dataset.
// Malformed cells degrade to zero instead of failing the load; the counts
// exist so callers and tests can see the degradation instead of it being
// invisible.
type CoercionStats struct {
	// BadCells is the number of cells that failed numeric parsing and
	// were replaced with zero.
	BadCells int `json:"bad_cells"`
	// MissingColumns lists canonical metric columns absent from the
	// upload and created as all-zero.
	MissingColumns []string `json:"missing_columns,omitempty"`
	// RescaledColumns lists CTR columns that arrived as 0-100 numbers
	// and were divided down to 0-1 fractions.
	RescaledColumns []string `json:"rescaled_columns,omitempty"`
	// DuplicateRows is the number of rows collapsed onto an earlier row
	// with the same case-folded entity.
	DuplicateRows int `json:"duplicate_rows"`
}

// ParseCell coerces one raw cell into a float. A trailing percent sign is
// stripped before parsing. Unparsable cells count as bad and yield zero.
func ParseCell(raw string, stats *CoercionStats) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.TrimSuffix(s, "%")
	// locale variants: "5,2" is a decimal comma, "12,345" a thousands
	// separator
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") && len(s)-strings.Index(s, ",") <= 3 {
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		stats.BadCells++
		return 0
	}
	return v
}

// RescaleCTR normalizes a CTR column in place. When the maximum observed
// value exceeds 1 the whole column is divided by 100 (heuristic: the
// source encoded percentages as 0-100 numbers). Values are then clamped
// to [0,1], which makes the rule idempotent: a second pass never divides
// again.
func RescaleCTR(values []float64) bool {
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	rescaled := maxVal > 1
	for i, v := range values {
		if rescaled {
			v /= 100
		}
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		values[i] = v
	}
	return rescaled
}

// clampCount coerces a parsed value into a non-negative integer count.
func clampCount(v float64) int64 {
	if v < 0 {
		return 0
	}
	return int64(v)
}

// clampPosition coerces a parsed value into a non-negative position.
func clampPosition(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
