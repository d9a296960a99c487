package repository

import "errors"

// Sentinel kinds for database errors.
var (
	ErrConnect       = errors.New("cannot connect to database")
	ErrQuery         = errors.New("database query failed")
	ErrUnknownDriver = errors.New("unknown sql driver")
	ErrStageNotFound = errors.New("stage not found")
)
