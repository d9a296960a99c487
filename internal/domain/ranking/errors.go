package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrNoStages        = errors.New("stage count must be at least 1")
	ErrStageOutOfRange = errors.New("stage out of range")
)
