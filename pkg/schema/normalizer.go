package schema

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/models"
)

// entityCandidates are the accepted keyword-column headers per locale,
// lowercased, mapped to the entity kind they imply.
var entityCandidates = map[string]models.EntityKind{
	"top queries":     models.EntityQuery,
	"kueri teratas":   models.EntityQuery,
	"top pages":       models.EntityPage,
	"halaman teratas": models.EntityPage,
}

// metricTokens are the locale-specific substrings identifying each metric
// family. Every family must match exactly two headers: the two comparison
// periods.
var metricTokens = []struct {
	token    string
	last     string
	previous string
}{
	{"klik", ColLastClicks, ColPrevClicks},
	{"tayangan", ColLastImpressions, ColPrevImpressions},
	{"ctr", ColLastCTR, ColPrevCTR},
	{"posisi", ColLastPosition, ColPrevPosition},
}

// matchStrategy attempts to build a ColumnMapping from a header row.
// applies reports whether the strategy recognizes the format at all; once
// a strategy applies, any failure inside detect is fatal for the dataset.
type matchStrategy interface {
	name() Strategy
	applies(headers []string) bool
	detect(headers []string) (*ColumnMapping, error)
}

// Normalizer detects the export format of a header row and produces the
// canonical column mapping for it.
type Normalizer struct {
	strategies []matchStrategy
	logger     *zap.Logger
}

// NewNormalizer creates a Normalizer with the canonical, keyword and
// positional strategies, tried in that order.
func NewNormalizer(logger *zap.Logger) *Normalizer {
	return &Normalizer{
		strategies: []matchStrategy{
			canonicalStrategy{},
			keywordStrategy{},
			positionalStrategy{},
		},
		logger: logger.Named("schema"),
	}
}

// Detect maps a raw header row onto the canonical schema. It returns a
// *Error when the format is unrecognized or structurally incompatible;
// callers must not process any rows in that case.
func (n *Normalizer) Detect(headers []string) (*ColumnMapping, error) {
	if len(headers) < ColumnCount {
		return nil, schemaErrorf(headers, "expected at least %d columns, got %d", ColumnCount, len(headers))
	}

	for _, s := range n.strategies {
		if !s.applies(headers) {
			continue
		}
		mapping, err := s.detect(headers)
		if err != nil {
			return nil, err
		}
		n.logger.Debug("header schema detected",
			zap.String("strategy", string(s.name())),
			zap.String("entity_kind", string(mapping.Kind())))
		return mapping, nil
	}

	return nil, schemaErrorf(headers, "keyword column not identified and column count does not match the known layout")
}

func foldHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// canonicalStrategy recognizes exports already using the canonical
// English header names, in any column order.
type canonicalStrategy struct{}

func (canonicalStrategy) name() Strategy { return StrategyCanonical }

func (canonicalStrategy) applies(headers []string) bool {
	_, _, ok := indexCanonical(headers)
	return ok
}

func (canonicalStrategy) detect(headers []string) (*ColumnMapping, error) {
	byName, kind, _ := indexCanonical(headers)

	m := newColumnMapping(kind, StrategyCanonical)
	entity := EntityColumn(kind)
	m.set(headers[byName[entity]], entity, byName[entity])
	for _, col := range MetricColumns {
		m.set(headers[byName[col]], col, byName[col])
	}
	return m, nil
}

// indexCanonical locates every canonical column by its verbatim (trimmed,
// case-insensitive) name. ok is false unless all nine are present.
func indexCanonical(headers []string) (map[string]int, models.EntityKind, bool) {
	folded := make(map[string]int, len(headers))
	for i, h := range headers {
		folded[foldHeader(h)] = i
	}

	byName := make(map[string]int, ColumnCount)
	kind := models.EntityQuery
	entityIdx, ok := folded[foldHeader(ColTopQueries)]
	if !ok {
		entityIdx, ok = folded[foldHeader(ColTopPages)]
		if !ok {
			return nil, kind, false
		}
		kind = models.EntityPage
	}
	byName[EntityColumn(kind)] = entityIdx

	for _, col := range MetricColumns {
		idx, ok := folded[foldHeader(col)]
		if !ok {
			return nil, kind, false
		}
		byName[col] = idx
	}
	return byName, kind, true
}

// keywordStrategy matches localized headers by metric-family substrings.
// Each family must match exactly two columns; after a case-insensitive
// sort the second match is taken as the "last" period and the first as
// "previous". That tie-break is a fixed contract inherited from the
// export formats this tool was built against; it is known to be fragile
// for locales whose period wording sorts the other way.
type keywordStrategy struct{}

func (keywordStrategy) name() Strategy { return StrategyKeyword }

func (keywordStrategy) applies(headers []string) bool {
	if _, _, ok := findEntityColumn(headers); !ok {
		return false
	}
	for _, family := range metricTokens {
		if len(matchFamily(headers, family.token)) > 0 {
			return true
		}
	}
	return false
}

func (keywordStrategy) detect(headers []string) (*ColumnMapping, error) {
	entityIdx, kind, _ := findEntityColumn(headers)

	m := newColumnMapping(kind, StrategyKeyword)
	m.set(headers[entityIdx], EntityColumn(kind), entityIdx)

	for _, family := range metricTokens {
		matches := matchFamily(headers, family.token)
		if len(matches) != 2 {
			return nil, schemaErrorf(headers,
				"metric family %q matched %d columns, want exactly 2", family.token, len(matches))
		}
		// second sorted match = most recent period
		m.set(headers[matches[1]], family.last, matches[1])
		m.set(headers[matches[0]], family.previous, matches[0])
	}
	return m, nil
}

func findEntityColumn(headers []string) (int, models.EntityKind, bool) {
	for i, h := range headers {
		if kind, ok := entityCandidates[foldHeader(h)]; ok {
			return i, kind, true
		}
	}
	return 0, models.EntityQuery, false
}

// matchFamily returns the indices of headers containing token, ordered by
// the case-insensitive sort of the header text.
func matchFamily(headers []string, token string) []int {
	var matches []int
	for i, h := range headers {
		if strings.Contains(foldHeader(h), token) {
			matches = append(matches, i)
		}
	}
	sort.Slice(matches, func(a, b int) bool {
		return foldHeader(headers[matches[a]]) < foldHeader(headers[matches[b]])
	})
	return matches
}

// positionalStrategy discards an unrecognized header row and assigns
// canonical names by the known export column order. It only applies when
// the column count matches the canonical layout exactly.
type positionalStrategy struct{}

func (positionalStrategy) name() Strategy { return StrategyPositional }

func (positionalStrategy) applies(headers []string) bool {
	return len(headers) == ColumnCount
}

func (positionalStrategy) detect(headers []string) (*ColumnMapping, error) {
	kind := models.EntityQuery
	first := foldHeader(headers[0])
	if strings.HasPrefix(first, "top page") || strings.HasPrefix(first, "halaman") {
		kind = models.EntityPage
	}

	m := newColumnMapping(kind, StrategyPositional)
	for i, canonical := range positionalOrder {
		if i == 0 {
			canonical = EntityColumn(kind)
		}
		m.set(headers[i], canonical, i)
	}
	return m, nil
}
