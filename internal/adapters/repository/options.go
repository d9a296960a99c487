package repository

import "github.com/okian/qehtml/pkg/logger"

// Option applies a configuration option to the BunSource.
type Option func(*BunSource)

// WithLogger sets the logger used for connection and query diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(s *BunSource) {
		if l != nil {
			s.log = l
		}
	}
}

// WithQueryDebug logs every SQL statement through bundebug.
func WithQueryDebug(on bool) Option {
	return func(s *BunSource) {
		s.queryDebug = on
	}
}
