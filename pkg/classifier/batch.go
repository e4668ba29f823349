// Package classifier runs keyword-intent classification against a
// language model in paced, bounded batches.
package classifier

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seolens/seolens-engine/pkg/llm"
	"github.com/seolens/seolens-engine/pkg/models"
	"github.com/seolens/seolens-engine/pkg/prompts"
	"github.com/seolens/seolens-engine/pkg/retry"
)

// Options configure the batch loop.
type Options struct {
	// BatchSize is the number of keywords per classification request.
	BatchSize int
	// PacingDelay is observed between batches to respect provider rate
	// limits.
	PacingDelay time.Duration
	// RequestTimeout bounds a single batch call. Expiry is treated like
	// any other batch failure: the loop stops with partial results.
	RequestTimeout time.Duration
	// Temperature for the model call.
	Temperature float64
}

// DefaultOptions returns the production defaults: batches of 100 with a
// 20s pause between calls.
func DefaultOptions() Options {
	return Options{
		BatchSize:      100,
		PacingDelay:    20 * time.Second,
		RequestTimeout: 2 * time.Minute,
		Temperature:    0.2,
	}
}

// BatchError reports the batch at which the classification loop stopped.
// Results from earlier batches are still valid and returned alongside it.
type BatchError struct {
	Batch   int // 1-based index of the failed batch
	Batches int // total number of batches planned
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("classification batch %d of %d failed: %v", e.Batch, e.Batches, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a classification run. Intents holds the union
// of every completed batch keyed by case-folded keyword; when a run stops
// early it contains exactly the batches that completed before the
// failure.
type Result struct {
	Intents          map[string]models.Intent
	BatchesCompleted int
	TotalBatches     int
	DroppedLines     int
}

// Classifier partitions keyword sets into batches and turns model
// responses into intent labels.
type Classifier struct {
	gen      llm.TextGenerator
	opts     Options
	retryCfg *retry.Config
	logger   *zap.Logger
}

// New creates a Classifier. Zero-valued options fall back to defaults.
func New(gen llm.TextGenerator, opts Options, logger *zap.Logger) *Classifier {
	def := DefaultOptions()
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.PacingDelay < 0 {
		opts.PacingDelay = def.PacingDelay
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = def.RequestTimeout
	}
	if opts.Temperature <= 0 {
		opts.Temperature = def.Temperature
	}
	return &Classifier{
		gen:      gen,
		opts:     opts,
		retryCfg: retry.DefaultConfig(),
		logger:   logger.Named("classifier"),
	}
}

// ClassifyAll classifies keywords in batches. Callers pass only keywords
// that still lack a known intent. On a batch failure the loop stops and
// the Result carries the union of all batches completed so far together
// with a *BatchError; partial progress is the return value, not a total
// failure.
func (c *Classifier) ClassifyAll(ctx context.Context, keywords []string) (*Result, error) {
	result := &Result{
		Intents:      make(map[string]models.Intent),
		TotalBatches: (len(keywords) + c.opts.BatchSize - 1) / c.opts.BatchSize,
	}
	if len(keywords) == 0 {
		return result, nil
	}

	c.logger.Info("starting classification run",
		zap.Int("keywords", len(keywords)),
		zap.Int("batches", result.TotalBatches),
		zap.String("model", c.gen.GetModel()))

	for start := 0; start < len(keywords); start += c.opts.BatchSize {
		end := start + c.opts.BatchSize
		if end > len(keywords) {
			end = len(keywords)
		}
		batchNum := start/c.opts.BatchSize + 1

		intents, dropped, err := c.classifyBatch(ctx, keywords[start:end])
		if err != nil {
			c.logger.Warn("classification stopped, keeping completed batches",
				zap.Int("batch", batchNum),
				zap.Int("classified", len(result.Intents)),
				zap.Error(err))
			return result, &BatchError{Batch: batchNum, Batches: result.TotalBatches, Err: err}
		}

		for k, v := range intents {
			result.Intents[k] = v
		}
		result.DroppedLines += dropped
		result.BatchesCompleted++

		c.logger.Debug("batch classified",
			zap.Int("batch", batchNum),
			zap.Int("of", result.TotalBatches),
			zap.Int("labels", len(intents)),
			zap.Int("dropped_lines", dropped))

		if end < len(keywords) && c.opts.PacingDelay > 0 {
			select {
			case <-time.After(c.opts.PacingDelay):
			case <-ctx.Done():
				return result, &BatchError{Batch: batchNum + 1, Batches: result.TotalBatches, Err: ctx.Err()}
			}
		}
	}

	return result, nil
}

// classifyBatch issues one classification request, retrying transient
// transport errors before giving up on the batch.
func (c *Classifier) classifyBatch(ctx context.Context, keywords []string) (map[string]models.Intent, int, error) {
	prompt := prompts.BuildIntentClassificationPrompt(keywords)

	raw, err := retry.DoWithResult(ctx, c.retryCfg, func() (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
		return c.gen.GenerateResponse(callCtx, prompt, prompts.IntentSystemMessage, c.opts.Temperature)
	})
	if err != nil {
		return nil, 0, err
	}

	intents, dropped := ParseResponse(raw)
	return intents, dropped, nil
}
