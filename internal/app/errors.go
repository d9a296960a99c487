package app

import "errors"

// Sentinel kinds for generation errors.
var (
	ErrOutputDir         = errors.New("cannot create output directories")
	ErrDuplicateFilename = errors.New("class names collide after transliteration")
)
