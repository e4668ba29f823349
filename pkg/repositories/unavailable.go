package repositories

import (
	"context"
	"fmt"

	"github.com/seolens/seolens-engine/pkg/apperrors"
	"github.com/seolens/seolens-engine/pkg/models"
)

// unavailableRepository stands in when the store cannot be reached at
// startup. Reads degrade to empty results so a session can still run
// with all-Unknown intents; writes fail with ErrStoreUnavailable.
type unavailableRepository struct {
	cause error
}

// NewUnavailableIntentRepository returns an IntentRepository whose every
// operation reports the store as unavailable.
func NewUnavailableIntentRepository(cause error) IntentRepository {
	return &unavailableRepository{cause: cause}
}

var _ IntentRepository = (*unavailableRepository)(nil)

func (r *unavailableRepository) EnsureSchema(ctx context.Context) error {
	return fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, r.cause)
}

func (r *unavailableRepository) FetchAll(ctx context.Context) (map[string]models.Intent, error) {
	return nil, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, r.cause)
}

func (r *unavailableRepository) UpsertMany(ctx context.Context, records []models.IntentRecord) (int, error) {
	return 0, fmt.Errorf("%w: %v", apperrors.ErrStoreUnavailable, r.cause)
}
