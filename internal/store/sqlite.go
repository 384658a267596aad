package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"

	"github.com/abhisek/prepwise/internal/interview"
	"github.com/abhisek/prepwise/internal/level"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	tableInterviews = "interviews"
	tableLevels     = "user_levels"
)

// Documents are stored whole as JSON. The indexed columns duplicate the
// fields that owner queries filter and sort on.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS interviews (
		session_id     TEXT PRIMARY KEY,
		user_id        TEXT NOT NULL,
		status         TEXT NOT NULL,
		created_at     INTEGER NOT NULL,
		last_active_at INTEGER NOT NULL,
		version        INTEGER NOT NULL,
		doc            TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS interviews_user_created ON interviews (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS interviews_user_status ON interviews (user_id, status)`,
	`CREATE TABLE IF NOT EXISTS user_levels (
		user_id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		doc     TEXT NOT NULL
	)`,
}

// SQLite is the single-file backend.
type SQLite struct {
	db  *sql.DB
	drv *entsql.Driver
	b   *entsql.DialectBuilder
}

// OpenSQLite opens (creating if needed) the database at dsn, applies
// pragmas and ensures the schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	s := &SQLite{
		db:  db,
		drv: entsql.OpenDB(dialect.SQLite, db),
		b:   entsql.Dialect(dialect.SQLite),
	}
	for _, stmt := range schema {
		if _, err := s.exec(ctx, stmt, []any{}); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	return s, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLite) Close(context.Context) error {
	return s.drv.Close()
}

// Interviews returns the interview repository.
func (s *SQLite) Interviews() interview.Repository {
	return &sqliteInterviews{s: s}
}

// Levels returns the user level repository.
func (s *SQLite) Levels() level.Repository {
	return &sqliteLevels{s: s}
}

func (s *SQLite) exec(ctx context.Context, query string, args []any) (sql.Result, error) {
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SQLite) query(ctx context.Context, query string, args []any) (*entsql.Rows, error) {
	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// count runs a single-value COUNT selector.
func (s *SQLite) count(ctx context.Context, sel *entsql.Selector) (int, error) {
	q, args := sel.Query()
	rows, err := s.query(ctx, q, args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

// applyPragmas configures SQLite for a single local writer.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

type sqliteInterviews struct {
	s *SQLite
}

func (r *sqliteInterviews) Create(ctx context.Context, iv *interview.Interview) error {
	doc := *iv
	doc.Version = 1
	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode interview: %w", err)
	}
	q, args := r.s.b.Insert(tableInterviews).
		Columns("session_id", "user_id", "status", "created_at", "last_active_at", "version", "doc").
		Values(doc.ID, doc.UserID, string(doc.Status), doc.CreatedAt.UnixNano(), doc.LastActiveAt.UnixNano(), doc.Version, string(data)).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return interview.ErrConcurrentModification.WithData("sessionId", iv.ID)
		}
		return fmt.Errorf("insert interview: %w", err)
	}
	iv.Version = doc.Version
	return nil
}

func (r *sqliteInterviews) Get(ctx context.Context, id string) (*interview.Interview, error) {
	sel := r.s.b.Select("doc", "version").
		From(r.s.b.Table(tableInterviews)).
		Where(entsql.EQ("session_id", id))
	out, err := r.scan(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, interview.ErrNotFound.WithData("sessionId", id)
	}
	return &out[0], nil
}

func (r *sqliteInterviews) Exists(ctx context.Context, id string) (bool, error) {
	n, err := r.s.count(ctx, r.s.b.Select(entsql.Count("*")).
		From(r.s.b.Table(tableInterviews)).
		Where(entsql.EQ("session_id", id)))
	if err != nil {
		return false, fmt.Errorf("check interview: %w", err)
	}
	return n > 0, nil
}

func (r *sqliteInterviews) Update(ctx context.Context, iv *interview.Interview) error {
	doc := *iv
	doc.Version = iv.Version + 1
	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode interview: %w", err)
	}
	q, args := r.s.b.Update(tableInterviews).
		Set("status", string(doc.Status)).
		Set("last_active_at", doc.LastActiveAt.UnixNano()).
		Set("version", doc.Version).
		Set("doc", string(data)).
		Where(entsql.And(
			entsql.EQ("session_id", iv.ID),
			entsql.EQ("version", iv.Version),
		)).
		Query()
	res, err := r.s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	if n == 0 {
		ok, err := r.Exists(ctx, iv.ID)
		switch {
		case err != nil:
			return err
		case !ok:
			return interview.ErrNotFound.WithData("sessionId", iv.ID)
		default:
			return interview.ErrConcurrentModification.WithData("sessionId", iv.ID)
		}
	}
	iv.Version = doc.Version
	return nil
}

func (r *sqliteInterviews) Delete(ctx context.Context, id string) error {
	q, args := r.s.b.Delete(tableInterviews).Where(entsql.EQ("session_id", id)).Query()
	res, err := r.s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return interview.ErrNotFound.WithData("sessionId", id)
	}
	return nil
}

func (r *sqliteInterviews) List(ctx context.Context, userID string, opts interview.ListOptions) ([]interview.Interview, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	preds := []*entsql.Predicate{entsql.EQ("user_id", userID)}
	if opts.Status != "" {
		preds = append(preds, entsql.EQ("status", string(opts.Status)))
	}
	if !opts.Since.IsZero() {
		preds = append(preds, entsql.GT("created_at", opts.Since.UnixNano()))
	}

	col := "created_at"
	if opts.SortBy == interview.SortByLastActiveAt {
		col = "last_active_at"
	}
	order := entsql.Desc
	if opts.Order == interview.OrderAsc {
		order = entsql.Asc
	}

	sel := r.s.b.Select("doc", "version").
		From(r.s.b.Table(tableInterviews)).
		Where(entsql.And(preds...)).
		OrderBy(order(col), order("session_id"))
	switch {
	case opts.Limit > 0:
		sel.Limit(opts.Limit)
	case opts.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		sel.Limit(math.MaxInt32)
	}
	if opts.Offset > 0 {
		sel.Offset(opts.Offset)
	}
	return r.scan(ctx, sel)
}

func (r *sqliteInterviews) Count(ctx context.Context, userID string) (interview.Counts, error) {
	var c interview.Counts
	q, args := r.s.b.Select("status", entsql.Count("*")).
		From(r.s.b.Table(tableInterviews)).
		Where(entsql.EQ("user_id", userID)).
		GroupBy("status").
		Query()
	rows, err := r.s.query(ctx, q, args)
	if err != nil {
		return c, fmt.Errorf("count interviews: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return c, fmt.Errorf("count interviews: %w", err)
		}
		c.Total += n
		switch interview.Status(status) {
		case interview.StatusActive:
			c.Active = n
		case interview.StatusCompleted:
			c.Completed = n
		case interview.StatusCancelled:
			c.Cancelled = n
		}
	}
	return c, rows.Err()
}

func (r *sqliteInterviews) scan(ctx context.Context, sel *entsql.Selector) ([]interview.Interview, error) {
	q, args := sel.Query()
	rows, err := r.s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query interviews: %w", err)
	}
	defer rows.Close()

	out := []interview.Interview{}
	for rows.Next() {
		var (
			data    string
			version int64
		)
		if err := rows.Scan(&data, &version); err != nil {
			return nil, fmt.Errorf("scan interview: %w", err)
		}
		var iv interview.Interview
		if err := json.Unmarshal([]byte(data), &iv); err != nil {
			return nil, fmt.Errorf("decode interview: %w", err)
		}
		iv.Version = version
		out = append(out, iv)
	}
	return out, rows.Err()
}

type sqliteLevels struct {
	s *SQLite
}

func (r *sqliteLevels) Get(ctx context.Context, userID string) (*level.UserLevel, error) {
	q, args := r.s.b.Select("doc", "version").
		From(r.s.b.Table(tableLevels)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	rows, err := r.s.query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("query user level: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query user level: %w", err)
		}
		return nil, level.ErrNotFound.WithData("userId", userID)
	}
	var (
		data    string
		version int64
	)
	if err := rows.Scan(&data, &version); err != nil {
		return nil, fmt.Errorf("scan user level: %w", err)
	}
	var u level.UserLevel
	if err := json.Unmarshal([]byte(data), &u); err != nil {
		return nil, fmt.Errorf("decode user level: %w", err)
	}
	u.Version = version
	return &u, nil
}

func (r *sqliteLevels) Create(ctx context.Context, u *level.UserLevel) error {
	doc := *u
	doc.Version = 1
	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode user level: %w", err)
	}
	q, args := r.s.b.Insert(tableLevels).
		Columns("user_id", "version", "doc").
		Values(doc.UserID, doc.Version, string(data)).
		Query()
	if _, err := r.s.exec(ctx, q, args); err != nil {
		if sqlgraph.IsUniqueConstraintError(err) {
			return level.ErrConcurrentModification.WithData("userId", u.UserID)
		}
		return fmt.Errorf("insert user level: %w", err)
	}
	u.Version = doc.Version
	return nil
}

func (r *sqliteLevels) Update(ctx context.Context, u *level.UserLevel) error {
	doc := *u
	doc.Version = u.Version + 1
	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encode user level: %w", err)
	}
	q, args := r.s.b.Update(tableLevels).
		Set("version", doc.Version).
		Set("doc", string(data)).
		Where(entsql.And(
			entsql.EQ("user_id", u.UserID),
			entsql.EQ("version", u.Version),
		)).
		Query()
	res, err := r.s.exec(ctx, q, args)
	if err != nil {
		return fmt.Errorf("update user level: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user level: %w", err)
	}
	if n == 0 {
		if _, err := r.Get(ctx, u.UserID); err != nil {
			return err
		}
		return level.ErrConcurrentModification.WithData("userId", u.UserID)
	}
	u.Version = doc.Version
	return nil
}
