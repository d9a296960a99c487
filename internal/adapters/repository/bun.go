package repository

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"

	"github.com/okian/qehtml/internal/domain/model"
	"github.com/okian/qehtml/pkg/logger"
	"github.com/okian/qehtml/pkg/metrics"
)

// Conn describes where the event lives. For psql Event is the schema inside
// Database, for sqlite it is the database file and for mysql the database name.
type Conn struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Event    string
}

// BunSource is a Source backed by bun over one serial connection.
type BunSource struct {
	db         *bun.DB
	log        logger.Logger
	queryDebug bool
}

var _ Source = (*BunSource)(nil)

// Open connects to the event database and verifies the connection.
// Connection failures wrap ErrConnect.
func Open(ctx context.Context, c Conn, opts ...Option) (*BunSource, error) {
	s := &BunSource{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}

	sqldb, dialect, err := openSQL(c)
	if err != nil {
		return nil, err
	}
	// One pass issues its queries serially over a single connection.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, dialect)
	if s.queryDebug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %s %s: %w", ErrConnect, c.Driver, c.Event, err)
	}

	s.db = db
	s.log.Debug(ctx, "database connected",
		logger.String("driver", c.Driver),
		logger.String("event", c.Event))
	return s, nil
}

func openSQL(c Conn) (*sql.DB, schema.Dialect, error) {
	switch c.Driver {
	case DriverPostgres:
		connector := pgdriver.NewConnector(
			pgdriver.WithAddr(hostPort(c.Host, c.Port, 5432)),
			pgdriver.WithUser(c.User),
			pgdriver.WithPassword(c.Password),
			pgdriver.WithDatabase(c.Database),
			pgdriver.WithInsecure(true),
			pgdriver.WithApplicationName("qehtml"),
			pgdriver.WithConnParams(map[string]interface{}{"search_path": c.Event}),
		)
		return sql.OpenDB(connector), pgdialect.New(), nil

	case DriverSQLite:
		sqldb, err := sql.Open("sqlite3", sqliteDSN(c.Event))
		if err != nil {
			return nil, nil, fmt.Errorf("%w: sqlite %s: %w", ErrConnect, c.Event, err)
		}
		return sqldb, sqlitedialect.New(), nil

	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.Net = "tcp"
		mc.Addr = hostPort(c.Host, c.Port, 3306)
		mc.User = c.User
		mc.Passwd = c.Password
		mc.DBName = c.Event
		mc.ParseTime = true
		connector, err := mysql.NewConnector(mc)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: mysql %s: %w", ErrConnect, c.Event, err)
		}
		return sql.OpenDB(connector), mysqldialect.New(), nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
}

// sqliteDSN opens path read-only as a URI filename; '?', '#' and '%' in the
// path are escaped so they stay part of the file name.
func sqliteDSN(path string) string {
	u := url.URL{Scheme: "file", Opaque: url.PathEscape(path), RawQuery: "mode=ro"}
	return u.String()
}

func hostPort(host string, port, fallback int) string {
	if host == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = fallback
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Close releases the connection.
func (s *BunSource) Close() error {
	return s.db.Close()
}

// query runs a raw statement, scans it into dest and records its duration.
func (s *BunSource) query(ctx context.Context, name string, dest any, q string, args ...any) error {
	start := time.Now()
	err := s.db.NewRaw(q, args...).Scan(ctx, dest)
	metrics.RecordQuery(name, time.Since(start))
	if err != nil {
		metrics.RecordError("repository")
		return fmt.Errorf("%w: %s: %w", ErrQuery, name, err)
	}
	return nil
}

type configRow struct {
	Key   string `bun:"ckey"`
	Value string `bun:"cvalue"`
}

// Event returns the event metadata.
func (s *BunSource) Event(ctx context.Context) (model.Event, error) {
	var rows []configRow
	q := `SELECT ckey, COALESCE(cvalue, '') AS cvalue FROM config WHERE ckey LIKE 'event.%'`
	if err := s.query(ctx, "event", &rows, q); err != nil {
		return nil, err
	}

	event := make(model.Event, len(rows))
	for _, r := range rows {
		if key, ok := strings.CutPrefix(r.Key, "event."); ok {
			event[key] = r.Value
		}
	}
	return event, nil
}

type classRow struct {
	ID     int64  `bun:"class_id"`
	Name   string `bun:"class_name"`
	Length *int64 `bun:"course_length"`
	Climb  *int64 `bun:"course_climb"`
}

func (r classRow) toModel() model.Class {
	return model.Class{ID: r.ID, Name: r.Name, Length: r.Length, Climb: r.Climb}
}

// Classes returns the classes that run at stage.
func (s *BunSource) Classes(ctx context.Context, stage int, filter Filter) ([]model.Class, error) {
	where, args := filter.clauses([]any{stage})
	q := `SELECT classes.id AS class_id, classes.name AS class_name,
  courses.length AS course_length, courses.climb AS course_climb
FROM classes
INNER JOIN classdefs ON classdefs.classId = classes.id AND classdefs.stageId = ?
LEFT JOIN courses ON courses.id = classdefs.courseId` + where + `
ORDER BY classes.name, classes.id`

	var rows []classRow
	if err := s.query(ctx, "classes", &rows, q, args...); err != nil {
		return nil, err
	}
	return toClasses(rows), nil
}

// AllClasses returns every class regardless of stage.
func (s *BunSource) AllClasses(ctx context.Context, filter Filter) ([]model.Class, error) {
	where, args := filter.clauses(nil)
	q := `SELECT classes.id AS class_id, classes.name AS class_name
FROM classes` + where + `
ORDER BY classes.name, classes.id`

	var rows []classRow
	if err := s.query(ctx, "all_classes", &rows, q, args...); err != nil {
		return nil, err
	}
	return toClasses(rows), nil
}

func toClasses(rows []classRow) []model.Class {
	out := make([]model.Class, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out
}

// clauses renders the filter as a WHERE clause appended to args.
func (f Filter) clauses(args []any) (string, []any) {
	var conds []string
	if f.Like != "" {
		conds = append(conds, "classes.name LIKE ?")
		args = append(args, f.Like)
	}
	if f.NotLike != "" {
		conds = append(conds, "classes.name NOT LIKE ?")
		args = append(args, f.NotLike)
	}
	if len(conds) == 0 {
		return "", args
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

type stageRow struct {
	Start *time.Time `bun:"start_datetime"`
}

// StageStart returns when the stage starts.
func (s *BunSource) StageStart(ctx context.Context, stage int) (time.Time, error) {
	var rows []stageRow
	q := `SELECT startDateTime AS start_datetime FROM stages WHERE id = ?`
	if err := s.query(ctx, "stage_start", &rows, q, stage); err != nil {
		return time.Time{}, err
	}
	if len(rows) == 0 || rows[0].Start == nil {
		return time.Time{}, fmt.Errorf("%w: %d", ErrStageNotFound, stage)
	}
	return *rows[0].Start, nil
}

type runRow struct {
	CompetitorID  int64  `bun:"competitor_id"`
	Registration  string `bun:"registration"`
	LastName      string `bun:"last_name"`
	FirstName     string `bun:"first_name"`
	SIID          *int64 `bun:"si_id"`
	Leg           *int64 `bun:"leg"`
	RelayID       *int64 `bun:"relay_id"`
	CheckTimeMS   *int64 `bun:"check_time_ms"`
	StartTimeMS   *int64 `bun:"start_time_ms"`
	FinishTimeMS  *int64 `bun:"finish_time_ms"`
	PenaltyTimeMS *int64 `bun:"penalty_time_ms"`
	TimeMS        *int64 `bun:"time_ms"`
	IsRunning     *bool  `bun:"is_running"`
	NotCompeting  *bool  `bun:"not_competing"`
	Disqualified  *bool  `bun:"disqualified"`
	Mispunch      *bool  `bun:"mispunch"`
	BadCheck      *bool  `bun:"bad_check"`
}

func (r runRow) toModel(stage int) model.Entry {
	return model.Entry{
		Competitor: model.Competitor{
			ID:           r.CompetitorID,
			Registration: r.Registration,
			LastName:     r.LastName,
			FirstName:    r.FirstName,
		},
		Run: model.Run{
			Stage:         stage,
			SIID:          r.SIID,
			Leg:           r.Leg,
			RelayID:       r.RelayID,
			CheckTimeMS:   r.CheckTimeMS,
			StartTimeMS:   r.StartTimeMS,
			FinishTimeMS:  r.FinishTimeMS,
			PenaltyTimeMS: r.PenaltyTimeMS,
			TimeMS:        r.TimeMS,
			IsRunning:     flag(r.IsRunning),
			NotCompeting:  flag(r.NotCompeting),
			Disqualified:  flag(r.Disqualified),
			Mispunch:      flag(r.Mispunch),
			BadCheck:      flag(r.BadCheck),
		},
	}
}

func flag(b *bool) bool { return b != nil && *b }

// Runs returns the class competitors that have a run at stage.
func (s *BunSource) Runs(ctx context.Context, stage int, classID int64) ([]model.Entry, error) {
	q := `SELECT competitors.id AS competitor_id,
  COALESCE(competitors.registration, '') AS registration,
  COALESCE(competitors.lastName, '') AS last_name,
  COALESCE(competitors.firstName, '') AS first_name,
  runs.siId AS si_id, runs.leg AS leg, runs.relayId AS relay_id,
  runs.checkTimeMs AS check_time_ms, runs.startTimeMs AS start_time_ms,
  runs.finishTimeMs AS finish_time_ms, runs.penaltyTimeMs AS penalty_time_ms,
  runs.timeMs AS time_ms, runs.isRunning AS is_running,
  runs.notCompeting AS not_competing, runs.disqualified AS disqualified,
  runs.mispunch AS mispunch, runs.badCheck AS bad_check
FROM competitors
INNER JOIN runs ON runs.competitorId = competitors.id AND runs.stageId = ?
WHERE competitors.classId = ?
ORDER BY competitors.id`

	var rows []runRow
	if err := s.query(ctx, "runs", &rows, q, stage, classID); err != nil {
		return nil, err
	}

	out := make([]model.Entry, len(rows))
	for i, r := range rows {
		out[i] = r.toModel(stage)
	}
	return out, nil
}
