package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/apperrors"
	"github.com/seolens/seolens-engine/pkg/flags"
	"github.com/seolens/seolens-engine/pkg/models"
	"github.com/seolens/seolens-engine/pkg/schema"
)

// Dataset is one loaded, cleaned and flagged working table. It is owned
// by the session that loaded it; only the intent store outlives it.
type Dataset struct {
	Kind     models.EntityKind
	Mapping  *schema.ColumnMapping
	Records  []*models.KeywordRecord
	Coercion CoercionStats
}

// Loader reads a delimited export into a Dataset.
type Loader struct {
	normalizer *schema.Normalizer
	logger     *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(normalizer *schema.Normalizer, logger *zap.Logger) *Loader {
	return &Loader{
		normalizer: normalizer,
		logger:     logger.Named("dataset"),
	}
}

// Load parses a CSV export. Schema detection failures are fatal and no
// rows are produced; malformed metric cells degrade to zero under the
// lossy coercion policy and are counted in the returned Dataset.
func (l *Loader) Load(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.ErrEmptyDataset
	}
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	mapping, err := l.normalizer.Detect(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read data row: %w", err)
		}
		rows = append(rows, row)
	}

	ds := &Dataset{Kind: mapping.Kind(), Mapping: mapping}
	if err := l.build(ds, rows); err != nil {
		return nil, err
	}

	l.logger.Info("dataset loaded",
		zap.String("entity_kind", string(ds.Kind)),
		zap.String("strategy", string(mapping.Strategy())),
		zap.Int("rows", len(ds.Records)),
		zap.Int("bad_cells", ds.Coercion.BadCells),
		zap.Int("duplicate_rows", ds.Coercion.DuplicateRows),
		zap.Strings("missing_columns", ds.Coercion.MissingColumns))

	return ds, nil
}

// build clamps, rescales and dedupes the raw rows into KeywordRecords.
func (l *Loader) build(ds *Dataset, rows [][]string) error {
	mapping := ds.Mapping

	entityIdx, ok := mapping.Index(mapping.EntityColumn())
	if !ok {
		return &schema.Error{Reason: "entity column missing from mapping"}
	}

	// columns maps canonical metric name -> parsed values, one per row.
	columns := make(map[string][]float64, len(schema.MetricColumns))
	for _, col := range schema.MetricColumns {
		values := make([]float64, len(rows))
		idx, present := mapping.Index(col)
		if !present {
			ds.Coercion.MissingColumns = append(ds.Coercion.MissingColumns, col)
		} else {
			for i, row := range rows {
				if idx < len(row) {
					values[i] = ParseCell(row[idx], &ds.Coercion)
				}
			}
		}
		columns[col] = values
	}

	for _, col := range []string{schema.ColLastCTR, schema.ColPrevCTR} {
		if RescaleCTR(columns[col]) {
			ds.Coercion.RescaledColumns = append(ds.Coercion.RescaledColumns, col)
		}
	}

	seen := make(map[string]bool, len(rows))
	for i, row := range rows {
		if entityIdx >= len(row) {
			continue
		}
		entity := strings.TrimSpace(row[entityIdx])
		if entity == "" {
			continue
		}
		key := models.FoldKey(entity)
		if seen[key] {
			// first occurrence wins, both for metrics and display casing
			ds.Coercion.DuplicateRows++
			continue
		}
		seen[key] = true

		rec := &models.KeywordRecord{
			Entity: entity,
			Metrics: models.Metrics{
				LastClicks:      clampCount(columns[schema.ColLastClicks][i]),
				PrevClicks:      clampCount(columns[schema.ColPrevClicks][i]),
				LastImpressions: clampCount(columns[schema.ColLastImpressions][i]),
				PrevImpressions: clampCount(columns[schema.ColPrevImpressions][i]),
				LastCTR:         columns[schema.ColLastCTR][i],
				PrevCTR:         columns[schema.ColPrevCTR][i],
				LastPosition:    clampPosition(columns[schema.ColLastPosition][i]),
				PrevPosition:    clampPosition(columns[schema.ColPrevPosition][i]),
			},
			Intent: models.IntentUnknown,
		}
		rec.Flags = flags.Compute(rec.Metrics)
		ds.Records = append(ds.Records, rec)
	}

	if len(ds.Records) == 0 {
		return apperrors.ErrEmptyDataset
	}
	return nil
}
