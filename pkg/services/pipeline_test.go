package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/classifier"
	"github.com/seolens/seolens-engine/pkg/dataset"
	"github.com/seolens/seolens-engine/pkg/llm"
	"github.com/seolens/seolens-engine/pkg/models"
	"github.com/seolens/seolens-engine/pkg/schema"
)

// mockIntentRepository is a function-field mock for the store.
type mockIntentRepository struct {
	EnsureSchemaFunc func(ctx context.Context) error
	FetchAllFunc     func(ctx context.Context) (map[string]models.Intent, error)
	UpsertManyFunc   func(ctx context.Context, records []models.IntentRecord) (int, error)

	Upserts [][]models.IntentRecord
}

func (m *mockIntentRepository) EnsureSchema(ctx context.Context) error {
	if m.EnsureSchemaFunc != nil {
		return m.EnsureSchemaFunc(ctx)
	}
	return nil
}

func (m *mockIntentRepository) FetchAll(ctx context.Context) (map[string]models.Intent, error) {
	if m.FetchAllFunc != nil {
		return m.FetchAllFunc(ctx)
	}
	return map[string]models.Intent{}, nil
}

func (m *mockIntentRepository) UpsertMany(ctx context.Context, records []models.IntentRecord) (int, error) {
	m.Upserts = append(m.Upserts, records)
	if m.UpsertManyFunc != nil {
		return m.UpsertManyFunc(ctx, records)
	}
	return len(records), nil
}

func newTestPipeline(repo *mockIntentRepository, gen llm.TextGenerator) *Pipeline {
	logger := zap.NewNop()
	return NewPipeline(
		dataset.NewLoader(schema.NewNormalizer(logger), logger),
		repo,
		classifier.New(gen, classifier.Options{BatchSize: 2, RequestTimeout: time.Second}, logger),
		logger,
	)
}

func TestLoadSession_SeedsFromStore(t *testing.T) {
	repo := &mockIntentRepository{
		FetchAllFunc: func(ctx context.Context) (map[string]models.Intent, error) {
			return map[string]models.Intent{"buy shoes": models.IntentTransactional}, nil
		},
	}
	p := newTestPipeline(repo, llm.NewMockTextGenerator())

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	assert.Equal(t, models.IntentTransactional, session.Records()[0].Intent)
	assert.Equal(t, 2, session.UnknownCount())
}

func TestLoadSession_StoreOutageIsRecoverable(t *testing.T) {
	repo := &mockIntentRepository{
		FetchAllFunc: func(ctx context.Context) (map[string]models.Intent, error) {
			return nil, errors.New("connection refused")
		},
	}
	p := newTestPipeline(repo, llm.NewMockTextGenerator())

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, session.UnknownCount())
}

func TestLoadSession_SchemaErrorIsFatal(t *testing.T) {
	p := newTestPipeline(&mockIntentRepository{}, llm.NewMockTextGenerator())

	_, err := p.LoadSession(context.Background(), strings.NewReader("a,b\n1,2\n"))
	require.Error(t, err)
}

func TestClassifyUnknown_AppliesAndFlushes(t *testing.T) {
	repo := &mockIntentRepository{}
	mock := llm.NewMockTextGenerator()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "- Buy Shoes: Transactional\n- running tips: Informational\n- nike store: Navigational", nil
	}
	p := newTestPipeline(repo, mock)

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	result, err := p.ClassifyUnknown(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 0, session.UnknownCount())
	assert.GreaterOrEqual(t, result.BatchesCompleted, 1)

	// results were flushed to the store with case-folded keys
	require.Len(t, repo.Upserts, 1)
	assert.Len(t, repo.Upserts[0], 3)
	for _, rec := range repo.Upserts[0] {
		assert.Equal(t, strings.ToLower(rec.Keyword), rec.Keyword)
	}
}

func TestClassifyUnknown_PartialFailurePersistsEarlierBatches(t *testing.T) {
	repo := &mockIntentRepository{}
	mock := llm.NewMockTextGenerator()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		if mock.GenerateResponseCalls >= 2 {
			return "", errors.New("boom")
		}
		return "- Buy Shoes: Transactional\n- running tips: Informational", nil
	}
	p := newTestPipeline(repo, mock)

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	result, err := p.ClassifyUnknown(context.Background(), session)
	require.Error(t, err)

	var batchErr *classifier.BatchError
	require.ErrorAs(t, err, &batchErr)
	assert.Equal(t, 2, batchErr.Batch)

	// batch 1 labels were applied and persisted before the error surfaced
	assert.Equal(t, 1, result.BatchesCompleted)
	assert.Equal(t, 1, session.UnknownCount())
	require.Len(t, repo.Upserts, 1)
	assert.Len(t, repo.Upserts[0], 2)
}

func TestClassifyUnknown_NothingToClassify(t *testing.T) {
	repo := &mockIntentRepository{
		FetchAllFunc: func(ctx context.Context) (map[string]models.Intent, error) {
			return map[string]models.Intent{
				"buy shoes":    models.IntentTransactional,
				"running tips": models.IntentInformational,
				"nike store":   models.IntentNavigational,
			}, nil
		},
	}
	mock := llm.NewMockTextGenerator()
	p := newTestPipeline(repo, mock)

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	_, err = p.ClassifyUnknown(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0, mock.GenerateResponseCalls)
}

func TestClassifyUnknown_FlushFailureKeepsLabels(t *testing.T) {
	repo := &mockIntentRepository{
		UpsertManyFunc: func(ctx context.Context, records []models.IntentRecord) (int, error) {
			return 0, errors.New("store down")
		},
	}
	mock := llm.NewMockTextGenerator()
	mock.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temp float64) (string, error) {
		return "- Buy Shoes: Transactional\n- running tips: Informational\n- nike store: Navigational", nil
	}
	p := newTestPipeline(repo, mock)

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	// the classification error is nil even though persisting failed
	_, err = p.ClassifyUnknown(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 0, session.UnknownCount())
	// the labels remain pending so a later flush can retry
	assert.Len(t, session.PendingChanges(), 3)
}

func TestFlush_NoChangesWritesNothing(t *testing.T) {
	repo := &mockIntentRepository{}
	p := newTestPipeline(repo, llm.NewMockTextGenerator())

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	written, err := p.Flush(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Empty(t, repo.Upserts)
}

func TestFlush_SecondFlushIsEmpty(t *testing.T) {
	repo := &mockIntentRepository{}
	p := newTestPipeline(repo, llm.NewMockTextGenerator())

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	session.ApplyEdit("buy shoes", models.IntentCommercial)

	written, err := p.Flush(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	written, err = p.Flush(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0, written)
	assert.Len(t, repo.Upserts, 1)
}

func TestExport_WritesView(t *testing.T) {
	repo := &mockIntentRepository{}
	p := newTestPipeline(repo, llm.NewMockTextGenerator())

	session, err := p.LoadSession(context.Background(), strings.NewReader(sessionCSV))
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, p.Export(&out, session, ViewOptions{OnlyNeedsOptimization: true}))

	assert.Contains(t, out.String(), "Buy Shoes")
	assert.NotContains(t, out.String(), "nike store")
}
