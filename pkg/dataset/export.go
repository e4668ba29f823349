package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/seolens/seolens-engine/pkg/models"
	"github.com/seolens/seolens-engine/pkg/schema"
)

// Derived column headers for export. The canonical metric columns are
// rendered under the dataset's original header names; these extras have
// no original to round-trip to.
const (
	colCTRDrop         = "CTR Drop"
	colLowCTRHighPos   = "Low CTR High Position"
	colClickDownImprUp = "Click Down While Impr Up"
	colNeedsOpt        = "Needs Optimization"
	colCTRDropPct      = "CTR Drop %"
	colClickLoss       = "Click Loss"
	colCTRGap          = "CTR Gap"
	colPositionChange  = "Position Change"
	colIntent          = "keyword_intent"
)

// Export writes records as CSV under the dataset's original headers,
// followed by the derived flag, delta and intent columns. Callers pass
// the (possibly filtered and sorted) view they want exported.
func Export(w io.Writer, mapping *schema.ColumnMapping, records []*models.KeywordRecord) error {
	cw := csv.NewWriter(w)

	header := []string{mapping.Original(mapping.EntityColumn())}
	for _, col := range schema.MetricColumns {
		header = append(header, mapping.Original(col))
	}
	header = append(header,
		colCTRDrop, colLowCTRHighPos, colClickDownImprUp, colNeedsOpt,
		colCTRDropPct, colClickLoss, colCTRGap, colPositionChange, colIntent)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, rec := range records {
		m, f := rec.Metrics, rec.Flags
		row := []string{
			rec.Entity,
			strconv.FormatInt(m.LastClicks, 10),
			strconv.FormatInt(m.PrevClicks, 10),
			strconv.FormatInt(m.LastImpressions, 10),
			strconv.FormatInt(m.PrevImpressions, 10),
			formatFloat(m.LastCTR, 4),
			formatFloat(m.PrevCTR, 4),
			formatFloat(m.LastPosition, 2),
			formatFloat(m.PrevPosition, 2),
			strconv.FormatBool(f.CTRDrop),
			strconv.FormatBool(f.LowCTRHighPos),
			strconv.FormatBool(f.ClickDownImprUp),
			strconv.FormatBool(f.NeedsOptimization),
			formatFloat(f.CTRDropPct, 2),
			strconv.FormatInt(f.ClickLoss, 10),
			formatFloat(f.CTRGap, 4),
			formatFloat(f.PositionChange, 2),
			string(rec.Intent),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write export row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
