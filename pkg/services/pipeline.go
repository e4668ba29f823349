package services

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/classifier"
	"github.com/seolens/seolens-engine/pkg/dataset"
	"github.com/seolens/seolens-engine/pkg/logging"
	"github.com/seolens/seolens-engine/pkg/repositories"
)

// Pipeline wires the load, classify, reconcile and flush stages. The
// whole pipeline runs synchronously within one session turn; the batch
// classification loop is the only long-running stage and blocks for its
// full duration.
type Pipeline struct {
	loader     *dataset.Loader
	repo       repositories.IntentRepository
	classifier *classifier.Classifier
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(loader *dataset.Loader, repo repositories.IntentRepository, cls *classifier.Classifier, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		loader:     loader,
		repo:       repo,
		classifier: cls,
		logger:     logger.Named("pipeline"),
	}
}

// LoadSession reads an export and seeds it with stored intents. A store
// outage is recoverable: the session starts with all-Unknown intents and
// a warning instead of aborting.
func (p *Pipeline) LoadSession(ctx context.Context, r io.Reader) (*Session, error) {
	ds, err := p.loader.Load(r)
	if err != nil {
		return nil, err
	}

	session := NewSession(ds, p.logger)

	stored, err := p.repo.FetchAll(ctx)
	if err != nil {
		p.logger.Warn("intent store unavailable, continuing with unknown intents",
			zap.String("error", logging.SanitizeError(err)))
		return session, nil
	}
	seeded := session.SeedFromStore(stored)

	p.logger.Info("session ready",
		zap.String("session_id", session.ID.String()),
		zap.Int("records", len(ds.Records)),
		zap.Int("known_intents", seeded),
		zap.Int("unknown_intents", session.UnknownCount()))

	return session, nil
}

// ClassifyUnknown runs the batch classifier over every keyword still
// lacking an intent, applies the results, and flushes them to the store.
// A *classifier.BatchError is recoverable: everything classified before
// the failure is applied and persisted, and the error is returned so the
// caller can surface the partial run.
func (p *Pipeline) ClassifyUnknown(ctx context.Context, session *Session) (*classifier.Result, error) {
	keywords := session.UnknownKeywords()
	if len(keywords) == 0 {
		return &classifier.Result{}, nil
	}

	result, runErr := p.classifier.ClassifyAll(ctx, keywords)

	applied := session.ApplyClassification(result.Intents)
	p.logger.Info("classification applied",
		zap.Int("labels", len(result.Intents)),
		zap.Int("applied", applied),
		zap.Int("batches_completed", result.BatchesCompleted),
		zap.Int("dropped_lines", result.DroppedLines))

	if applied > 0 {
		if _, err := p.Flush(ctx, session); err != nil {
			// the classification itself succeeded (possibly partially);
			// the labels stay in the session and a later flush retries
			p.logger.Warn("failed to persist classification results",
				zap.String("error", logging.SanitizeError(err)))
		}
	}

	var batchErr *classifier.BatchError
	if errors.As(runErr, &batchErr) {
		return result, batchErr
	}
	return result, runErr
}

// Flush persists every label that changed since the last flush. Each
// call is one store transaction; on success the session baseline
// advances so an immediate second flush writes nothing.
func (p *Pipeline) Flush(ctx context.Context, session *Session) (int, error) {
	changes := session.PendingChanges()
	if len(changes) == 0 {
		return 0, nil
	}

	if err := p.repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}

	written, err := p.repo.UpsertMany(ctx, changes)
	if err != nil {
		return 0, err
	}
	session.commitFlush(changes)

	p.logger.Info("intents flushed", zap.Int("written", written))
	return written, nil
}

// Export writes the given view as CSV under the dataset's original
// headers.
func (p *Pipeline) Export(w io.Writer, session *Session, opts ViewOptions) error {
	return dataset.Export(w, session.Dataset().Mapping, session.View(opts))
}
