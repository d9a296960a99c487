package render

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrTemplate = errors.New("template error")
	ErrWrite    = errors.New("cannot write output file")
)
