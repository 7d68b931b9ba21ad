package cycle

import "errors"

var (
	// ErrNotFound is returned when a cycle id resolves to no record.
	ErrNotFound = errors.New("cycle: not found")

	// ErrIncompleteData is returned when completion was requested but zero
	// snapshot assets resolved a current price. Some assets missing is
	// tolerated and merely skips them; zero is fatal for the operation and
	// retryable for the caller, so the cycle stays active instead of being
	// persisted as a misleadingly empty completion.
	ErrIncompleteData = errors.New("cycle: no current prices resolved for snapshot assets")

	// ErrDurationTooShort rejects windows under the documented minimum.
	ErrDurationTooShort = errors.New("cycle: duration below 60s minimum")

	// ErrEmptySnapshot rejects cycle creation with nothing to predict.
	ErrEmptySnapshot = errors.New("cycle: snapshot is empty")
)
