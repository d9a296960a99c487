// Package repository reads event, class and run data from a QuickEvent database.
package repository

import (
	"context"
	"time"

	"github.com/okian/qehtml/internal/domain/model"
)

// Supported SQL drivers.
const (
	DriverPostgres = "psql"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
)

// Filter narrows class lists with SQL LIKE patterns. Empty fields are ignored.
type Filter struct {
	Like    string
	NotLike string
}

// Source provides read access to one event.
type Source interface {
	// Event returns the event metadata stored under "event." config keys.
	Event(ctx context.Context) (model.Event, error)

	// Classes returns the classes defined for a stage, ordered by name,
	// with the course length and climb when a course is assigned.
	Classes(ctx context.Context, stage int, filter Filter) ([]model.Class, error)

	// AllClasses returns every class of the event ordered by name.
	AllClasses(ctx context.Context, filter Filter) ([]model.Class, error)

	// StageStart returns the start datetime of a stage.
	// Returns ErrStageNotFound if the stage has no start recorded.
	StageStart(ctx context.Context, stage int) (time.Time, error)

	// Runs returns every competitor of a class with their run at a stage.
	Runs(ctx context.Context, stage int, classID int64) ([]model.Entry, error)

	// Close releases the connection.
	Close() error
}
