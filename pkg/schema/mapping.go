package schema

import "github.com/seolens/seolens-engine/pkg/models"

// Strategy identifies how a header row was matched to the canonical
// schema.
type Strategy string

const (
	// StrategyCanonical matched a header row that already used the
	// canonical column names.
	StrategyCanonical Strategy = "canonical"
	// StrategyKeyword matched columns by locale-specific metric tokens.
	StrategyKeyword Strategy = "keyword"
	// StrategyPositional assigned canonical names by the known export
	// order, ignoring what the headers were called.
	StrategyPositional Strategy = "positional"
)

// ColumnMapping is an invertible mapping between the original header
// names of one uploaded dataset and the canonical schema. Its lifetime is
// one dataset: logic runs on canonical names, the UI and export render
// under the originals.
type ColumnMapping struct {
	kind     models.EntityKind
	strategy Strategy

	toCanonical map[string]string // original header -> canonical name
	toOriginal  map[string]string // canonical name -> original header
	index       map[string]int    // canonical name -> source column index
}

// Kind returns the detected entity kind (query or page).
func (m *ColumnMapping) Kind() models.EntityKind { return m.kind }

// Strategy returns the strategy that produced this mapping.
func (m *ColumnMapping) Strategy() Strategy { return m.strategy }

// EntityColumn returns the canonical entity column name for this dataset.
func (m *ColumnMapping) EntityColumn() string { return EntityColumn(m.kind) }

// Canonical returns the canonical name for an original header.
func (m *ColumnMapping) Canonical(original string) (string, bool) {
	c, ok := m.toCanonical[original]
	return c, ok
}

// Original returns the original header for a canonical name. Every
// strategy records the source headers, so the canonical-name fallback
// only fires for columns that never appeared in the upload.
func (m *ColumnMapping) Original(canonical string) string {
	if o, ok := m.toOriginal[canonical]; ok {
		return o
	}
	return canonical
}

// Index returns the source column index of a canonical name.
func (m *ColumnMapping) Index(canonical string) (int, bool) {
	i, ok := m.index[canonical]
	return i, ok
}

func (m *ColumnMapping) set(original, canonical string, idx int) {
	m.toCanonical[original] = canonical
	m.toOriginal[canonical] = original
	m.index[canonical] = idx
}

func newColumnMapping(kind models.EntityKind, strategy Strategy) *ColumnMapping {
	return &ColumnMapping{
		kind:        kind,
		strategy:    strategy,
		toCanonical: make(map[string]string),
		toOriginal:  make(map[string]string),
		index:       make(map[string]int),
	}
}
