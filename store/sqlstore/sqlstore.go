// Package sqlstore implements the crudgen.Store contract on a plain
// database/sql handle. It is driven entirely by the TableSpec and
// Record plumbing of the generated models, so one store serves every
// generated entity; the caller owns the connection and the dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/crudgen"
)

// Store is a crudgen.Store backed by database/sql. Statements use the
// ? placeholder form.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source. Tests pin it.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store on the given handle.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts the record. Auto-managed timestamp columns are stamped
// through the record's scan destinations before the insert, so the
// caller sees the stored values. A zero-valued primary key is omitted
// from the statement and backfilled from LastInsertId when the driver
// reports one.
func (s *Store) Create(ctx context.Context, spec crudgen.TableSpec, rec crudgen.Record) error {
	stampColumns(spec, rec, s.now())
	cols := rec.Columns()
	vals := rec.Values()
	pk := spec.Primary()

	names := make([]string, 0, len(cols))
	args := make([]any, 0, len(vals))
	autoIdx := -1
	for i, name := range cols {
		if pk != nil && name == pk.Name && zeroKey(vals[i]) {
			autoIdx = i
			continue
		}
		names = append(names, name)
		args = append(args, vals[i])
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Name, strings.Join(names, ", "), placeholders(len(names)))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return crudgen.NewConflictError(spec.Name, "unique constraint violated", err)
		}
		return fmt.Errorf("sqlstore: insert into %s: %w", spec.Name, err)
	}
	if autoIdx >= 0 {
		if id, err := res.LastInsertId(); err == nil {
			assignKey(rec.ScanDest()[autoIdx], id)
		}
	}
	return nil
}

// List returns one page of rows in primary-key order plus the total
// count. Rows carrying the soft-delete marker are invisible to both.
func (s *Store) List(ctx context.Context, spec crudgen.TableSpec, page crudgen.Page, newRec func() crudgen.Record) ([]crudgen.Record, int, error) {
	page = page.Clamp()
	cols := newRec().Columns()
	where := liveFilter(spec, "WHERE")

	var total int
	count := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", spec.Name, where)
	if err := s.db.QueryRowContext(ctx, count).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlstore: count %s: %w", spec.Name, err)
	}

	order := ""
	if pk := spec.Primary(); pk != nil {
		order = fmt.Sprintf(" ORDER BY %s ASC", pk.Name)
	}
	q := fmt.Sprintf("SELECT %s FROM %s%s%s LIMIT ? OFFSET ?",
		strings.Join(cols, ", "), spec.Name, where, order)
	rows, err := s.db.QueryContext(ctx, q, page.Limit, page.Skip)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlstore: select %s: %w", spec.Name, err)
	}
	defer rows.Close()

	var recs []crudgen.Record
	for rows.Next() {
		rec := newRec()
		if err := rows.Scan(rec.ScanDest()...); err != nil {
			return nil, 0, fmt.Errorf("sqlstore: scan %s: %w", spec.Name, err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlstore: iterate %s: %w", spec.Name, err)
	}
	return recs, total, nil
}

// Get hydrates rec by primary key.
func (s *Store) Get(ctx context.Context, spec crudgen.TableSpec, id any, rec crudgen.Record) error {
	pk := spec.Primary()
	if pk == nil {
		return fmt.Errorf("sqlstore: table %s has no primary key", spec.Name)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?%s",
		strings.Join(rec.Columns(), ", "), spec.Name, pk.Name, liveFilter(spec, "AND"))
	err := s.db.QueryRowContext(ctx, q, id).Scan(rec.ScanDest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return crudgen.NewNotFoundErrorWithID(spec.Name, id)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: get %s: %w", spec.Name, err)
	}
	return nil
}

// Update mutates the given columns of one row. The set-on-update stamp
// column is appended automatically unless the caller set it explicitly.
func (s *Store) Update(ctx context.Context, spec crudgen.TableSpec, id any, columns []string, values []any) error {
	pk := spec.Primary()
	if pk == nil {
		return fmt.Errorf("sqlstore: table %s has no primary key", spec.Name)
	}
	if us := spec.UpdateStamp(); us != nil && !contains(columns, us.Name) {
		columns = append(columns, us.Name)
		values = append(values, s.now())
	}
	if len(columns) == 0 {
		return s.exists(ctx, spec, pk, id)
	}

	sets := make([]string, len(columns))
	for i, col := range columns {
		sets[i] = col + " = ?"
	}
	q := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?%s",
		spec.Name, strings.Join(sets, ", "), pk.Name, liveFilter(spec, "AND"))
	res, err := s.db.ExecContext(ctx, q, append(values, id)...)
	if err != nil {
		if isUniqueViolation(err) {
			return crudgen.NewConflictError(spec.Name, "unique constraint violated", err)
		}
		return fmt.Errorf("sqlstore: update %s: %w", spec.Name, err)
	}
	return checkAffected(res, spec, id)
}

// Delete removes the row physically.
func (s *Store) Delete(ctx context.Context, spec crudgen.TableSpec, id any) error {
	pk := spec.Primary()
	if pk == nil {
		return fmt.Errorf("sqlstore: table %s has no primary key", spec.Name)
	}
	q := fmt.Sprintf("DELETE FROM %s WHERE %s = ?%s", spec.Name, pk.Name, liveFilter(spec, "AND"))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("sqlstore: delete %s: %w", spec.Name, err)
	}
	return checkAffected(res, spec, id)
}

// Archive stamps the soft-delete marker instead of removing the row.
// An already-archived row reads as absent.
func (s *Store) Archive(ctx context.Context, spec crudgen.TableSpec, id any) error {
	pk := spec.Primary()
	if pk == nil {
		return fmt.Errorf("sqlstore: table %s has no primary key", spec.Name)
	}
	marker := spec.Marker()
	if marker == nil {
		return fmt.Errorf("sqlstore: table %s has no soft-delete marker", spec.Name)
	}
	q := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ? AND %s IS NULL",
		spec.Name, marker.Name, pk.Name, marker.Name)
	res, err := s.db.ExecContext(ctx, q, s.now(), id)
	if err != nil {
		return fmt.Errorf("sqlstore: archive %s: %w", spec.Name, err)
	}
	return checkAffected(res, spec, id)
}

// exists reports the row's presence when an update had nothing to set.
func (s *Store) exists(ctx context.Context, spec crudgen.TableSpec, pk *crudgen.ColumnSpec, id any) error {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?%s",
		pk.Name, spec.Name, pk.Name, liveFilter(spec, "AND"))
	var found any
	err := s.db.QueryRowContext(ctx, q, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return crudgen.NewNotFoundErrorWithID(spec.Name, id)
	}
	if err != nil {
		return fmt.Errorf("sqlstore: get %s: %w", spec.Name, err)
	}
	return nil
}

// stampColumns writes the current time through the scan destinations of
// every set-on-insert column so the record reflects stored values.
func stampColumns(spec crudgen.TableSpec, rec crudgen.Record, now time.Time) {
	cols := rec.Columns()
	dest := rec.ScanDest()
	for _, cs := range spec.Columns {
		if !cs.OnInsertNow {
			continue
		}
		for i, name := range cols {
			if name != cs.Name {
				continue
			}
			if p, ok := dest[i].(*time.Time); ok {
				*p = now
			}
		}
	}
}

// liveFilter returns the soft-delete predicate prefixed with the given
// keyword, or the empty string for tables without a marker.
func liveFilter(spec crudgen.TableSpec, keyword string) string {
	m := spec.Marker()
	if m == nil {
		return ""
	}
	return fmt.Sprintf(" %s %s IS NULL", keyword, m.Name)
}

func checkAffected(res sql.Result, spec crudgen.TableSpec, id any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: rows affected for %s: %w", spec.Name, err)
	}
	if n == 0 {
		return crudgen.NewNotFoundErrorWithID(spec.Name, id)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// zeroKey reports whether the primary-key value is unset, in which case
// the column is left to the database to fill.
func zeroKey(v any) bool {
	switch x := v.(type) {
	case int:
		return x == 0
	case int64:
		return x == 0
	case string:
		return x == ""
	case uuid.UUID:
		return x == uuid.Nil
	default:
		return v == nil
	}
}

// assignKey backfills an auto-generated integer key into the record.
func assignKey(dest any, id int64) {
	switch p := dest.(type) {
	case *int:
		*p = int(id)
	case *int64:
		*p = id
	}
}

// isUniqueViolation matches the unique-constraint messages of the
// common drivers. database/sql exposes no portable error code for this.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
