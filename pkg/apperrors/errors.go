package apperrors

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrStoreUnavailable = errors.New("intent store unavailable")
	ErrEmptyDataset     = errors.New("dataset contains no rows")
)
