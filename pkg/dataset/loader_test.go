package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/apperrors"
	"github.com/seolens/seolens-engine/pkg/models"
	"github.com/seolens/seolens-engine/pkg/schema"
)

func newTestLoader() *Loader {
	return NewLoader(schema.NewNormalizer(zap.NewNop()), zap.NewNop())
}

const canonicalCSV = `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
buy shoes,10,20,8000,6000,1%,5%,2.0,2.0
running tips,30,25,4000,4100,1.2%,0.8%,5.1,5.3
`

func TestLoad_CanonicalExport(t *testing.T) {
	ds, err := newTestLoader().Load(strings.NewReader(canonicalCSV))
	require.NoError(t, err)

	require.Len(t, ds.Records, 2)
	assert.Equal(t, models.EntityQuery, ds.Kind)

	rec := ds.Records[0]
	assert.Equal(t, "buy shoes", rec.Entity)
	assert.Equal(t, int64(10), rec.Metrics.LastClicks)
	assert.Equal(t, int64(20), rec.Metrics.PrevClicks)
	assert.Equal(t, int64(8000), rec.Metrics.LastImpressions)
	assert.InDelta(t, 0.01, rec.Metrics.LastCTR, 1e-9)
	assert.InDelta(t, 0.05, rec.Metrics.PrevCTR, 1e-9)

	// all three regression signals fire for this row
	assert.True(t, rec.Flags.CTRDrop)
	assert.True(t, rec.Flags.LowCTRHighPos)
	assert.True(t, rec.Flags.ClickDownImprUp)
	assert.True(t, rec.Flags.NeedsOptimization)
	assert.Equal(t, int64(10), rec.Flags.ClickLoss)

	assert.False(t, ds.Records[1].Flags.NeedsOptimization)
	assert.Equal(t, models.IntentUnknown, rec.Intent)
}

func TestLoad_PercentAndFractionConverge(t *testing.T) {
	percent := `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
a,1,1,1,1,5%,10%,1,1
b,1,1,1,1,2%,4%,1,1
`
	fraction := `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
a,1,1,1,1,0.05,0.10,1,1
b,1,1,1,1,0.02,0.04,1,1
`
	dsPercent, err := newTestLoader().Load(strings.NewReader(percent))
	require.NoError(t, err)
	dsFraction, err := newTestLoader().Load(strings.NewReader(fraction))
	require.NoError(t, err)

	for i := range dsPercent.Records {
		assert.InDelta(t, dsFraction.Records[i].Metrics.LastCTR, dsPercent.Records[i].Metrics.LastCTR, 1e-9)
		assert.InDelta(t, dsFraction.Records[i].Metrics.PrevCTR, dsPercent.Records[i].Metrics.PrevCTR, 1e-9)
	}
	assert.Contains(t, dsPercent.Coercion.RescaledColumns, schema.ColLastCTR)
	assert.Empty(t, dsFraction.Coercion.RescaledColumns)
}

func TestLoad_BadCellsDegradeToZero(t *testing.T) {
	csvData := `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
a,n/a,5,100,100,0.1,0.1,1,1
`
	ds, err := newTestLoader().Load(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, int64(0), ds.Records[0].Metrics.LastClicks)
	assert.Equal(t, 1, ds.Coercion.BadCells)
}

func TestLoad_DuplicateEntitiesCollapse(t *testing.T) {
	csvData := `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
Buy Shoes,10,1,1,1,0.1,0.1,1,1
buy shoes,99,1,1,1,0.1,0.1,1,1
  BUY SHOES ,50,1,1,1,0.1,0.1,1,1
`
	ds, err := newTestLoader().Load(strings.NewReader(csvData))
	require.NoError(t, err)

	require.Len(t, ds.Records, 1)
	assert.Equal(t, 2, ds.Coercion.DuplicateRows)
	// first occurrence wins, including display casing
	assert.Equal(t, "Buy Shoes", ds.Records[0].Entity)
	assert.Equal(t, int64(10), ds.Records[0].Metrics.LastClicks)
}

func TestLoad_BlankEntitiesSkipped(t *testing.T) {
	csvData := `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
,1,1,1,1,0.1,0.1,1,1
real query,1,1,1,1,0.1,0.1,1,1
`
	ds, err := newTestLoader().Load(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, ds.Records, 1)
	assert.Equal(t, "real query", ds.Records[0].Entity)
}

func TestLoad_EmptyInput(t *testing.T) {
	_, err := newTestLoader().Load(strings.NewReader(""))
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestLoad_HeaderOnly(t *testing.T) {
	header := "Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position\n"
	_, err := newTestLoader().Load(strings.NewReader(header))
	assert.ErrorIs(t, err, apperrors.ErrEmptyDataset)
}

func TestLoad_SchemaErrorIsFatal(t *testing.T) {
	csvData := `Irrelevant,Export
a,b
`
	_, err := newTestLoader().Load(strings.NewReader(csvData))
	require.Error(t, err)

	var schemaErr *schema.Error
	assert.ErrorAs(t, err, &schemaErr)
}

func TestLoad_IndonesianExport(t *testing.T) {
	csvData := `Kueri Teratas,Klik 3 Bulan Terakhir,Klik 3 Bulan Sebelumnya,Tayangan 3 Bulan Terakhir,Tayangan 3 Bulan Sebelumnya,CTR 3 Bulan Terakhir,CTR 3 Bulan Sebelumnya,Posisi 3 Bulan Terakhir,Posisi 3 Bulan Sebelumnya
sepatu lari,10,20,8000,6000,"1,2%","5,5%","2,1","2,4"
`
	ds, err := newTestLoader().Load(strings.NewReader(csvData))
	require.NoError(t, err)

	rec := ds.Records[0]
	assert.Equal(t, "sepatu lari", rec.Entity)
	// decimal commas and percent signs resolve to fractions
	assert.InDelta(t, 0.012, rec.Metrics.LastCTR, 1e-9)
	assert.InDelta(t, 0.055, rec.Metrics.PrevCTR, 1e-9)
	assert.InDelta(t, 2.1, rec.Metrics.LastPosition, 1e-9)
	assert.Equal(t, int64(10), rec.Metrics.LastClicks)
}

func TestLoad_ShortRowTreatedAsZero(t *testing.T) {
	csvData := `Top queries,Last 3 months Clicks,Previous 3 months Clicks,Last 3 months Impressions,Previous 3 months Impressions,Last 3 months CTR,Previous 3 months CTR,Last 3 months Position,Previous 3 months Position
partial row,5
`
	ds, err := newTestLoader().Load(strings.NewReader(csvData))
	require.NoError(t, err)

	rec := ds.Records[0]
	assert.Equal(t, int64(5), rec.Metrics.LastClicks)
	assert.Equal(t, int64(0), rec.Metrics.PrevImpressions)
}

func TestExport_RoundTripsOriginalHeaders(t *testing.T) {
	csvData := `Kueri Teratas,Klik 3 Bulan Terakhir,Klik 3 Bulan Sebelumnya,Tayangan 3 Bulan Terakhir,Tayangan 3 Bulan Sebelumnya,CTR 3 Bulan Terakhir,CTR 3 Bulan Sebelumnya,Posisi 3 Bulan Terakhir,Posisi 3 Bulan Sebelumnya
sepatu lari,10,20,8000,6000,0.01,0.05,2.0,2.4
`
	ds, err := newTestLoader().Load(strings.NewReader(csvData))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, Export(&out, ds.Mapping, ds.Records))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], ",")
	assert.Equal(t, "Kueri Teratas", header[0])
	assert.Equal(t, "Klik 3 Bulan Terakhir", header[1])
	assert.Equal(t, "keyword_intent", header[len(header)-1])

	row := strings.Split(lines[1], ",")
	assert.Equal(t, "sepatu lari", row[0])
	assert.Equal(t, "10", row[1])
	assert.Equal(t, "Unknown", row[len(row)-1])
}
