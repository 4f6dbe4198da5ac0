// Package store persists tables as relations in a single file-backed
// SQLite database. A relation name is the primary key for a table: Replace
// drops and recreates the relation wholesale, so there is no merge, no
// versioning, and no partial update. Concurrent writers are not
// coordinated beyond SQLite's own single-writer locking; the last write
// wins, which is acceptable for a single-user local tool.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver

	"github.com/holtland/datalens/internal/dataset"
)

// insertBatchRows is the number of rows bound per multi-row INSERT.
// SQLite caps bound parameters at 999 by default, so batch * columns must
// stay under that; the batch shrinks for wide tables.
const insertBatchRows = 100

// ErrNotFound is returned when a relation does not exist.
var ErrNotFound = errors.New("relation not found")

// ErrBadName is returned when a relation name fails validation.
var ErrBadName = errors.New("invalid relation name")

// relationNameRE is the allow-list for relation names. User-supplied names
// end up in a table-name position, so they are validated here and
// additionally double-quoted in every generated statement.
var relationNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Store is a handle on the database file. The dashboard opens one per
// interaction and closes it when the interaction completes.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// ValidateRelationName checks a user-supplied relation name against the
// identifier allow-list.
func ValidateRelationName(name string) error {
	if !relationNameRE.MatchString(name) {
		return fmt.Errorf("%w: %q (use letters, digits, underscore; start with a letter)", ErrBadName, name)
	}
	return nil
}

// quoteIdent double-quotes an identifier for use in generated SQL.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Replace writes the table as relation name, destroying any prior contents.
// Drop, create, and inserts run in one transaction, so a failed persist
// leaves the previous relation exactly as it was.
func (s *Store) Replace(ctx context.Context, name string, t *dataset.Table) error {
	if err := ValidateRelationName(name); err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("replace %s: table has no columns", name)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace %s: begin: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return fmt.Errorf("replace %s: drop: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, createStatement(name, t)); err != nil {
		return fmt.Errorf("replace %s: create: %w", name, err)
	}
	if err := insertRows(ctx, tx, name, t); err != nil {
		return fmt.Errorf("replace %s: insert: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace %s: commit: %w", name, err)
	}
	return nil
}

// createStatement builds the CREATE TABLE statement for a table.
func createStatement(name string, t *dataset.Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c.Name))
		b.WriteByte(' ')
		b.WriteString(sqlType(c.Kind))
	}
	b.WriteString(")")
	return b.String()
}

// sqlType maps a column kind to its SQLite storage type.
func sqlType(k dataset.Kind) string {
	switch k {
	case dataset.KindInt:
		return "INTEGER"
	case dataset.KindBool:
		// NUMERIC affinity; the declared type lets Load restore bool cells.
		return "BOOLEAN"
	case dataset.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// insertRows writes all rows in multi-row batches inside the transaction.
func insertRows(ctx context.Context, tx *sqlx.Tx, name string, t *dataset.Table) error {
	rows := t.NumRows()
	if rows == 0 {
		return nil
	}

	cols := len(t.Columns)
	batch := insertBatchRows
	if cols*batch > 990 {
		batch = 990 / cols
		if batch < 1 {
			batch = 1
		}
	}

	colList := make([]string, cols)
	for i, c := range t.Columns {
		colList[i] = quoteIdent(c.Name)
	}
	prefix := "INSERT INTO " + quoteIdent(name) + " (" + strings.Join(colList, ", ") + ") VALUES "
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?,", cols), ",") + ")"

	for start := 0; start < rows; start += batch {
		end := start + batch
		if end > rows {
			end = rows
		}
		n := end - start

		args := make([]any, 0, n*cols)
		for i := start; i < end; i++ {
			for c := range t.Columns {
				args = append(args, t.Columns[c].Values[i])
			}
		}

		stmt := prefix + strings.TrimSuffix(strings.Repeat(placeholder+",", n), ",")
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the full relation back into memory. Column kinds are rebuilt
// from the returned driver values, so a persisted table round-trips with
// identical names, row count, and cell values.
func (s *Store) Load(ctx context.Context, name string) (*dataset.Table, error) {
	if err := ValidateRelationName(name); err != nil {
		return nil, err
	}
	exists, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("load %s: %w", name, ErrNotFound)
	}

	rows, err := s.db.QueryxContext(ctx, "SELECT * FROM "+quoteIdent(name))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("load %s: columns: %w", name, err)
	}

	cells := make([][]any, len(colNames))
	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return nil, fmt.Errorf("load %s: scan: %w", name, err)
		}
		for c, v := range vals {
			norm, _ := dataset.NormalizeCell(v)
			cells[c] = append(cells[c], norm)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	boolCols, err := s.declaredBoolColumns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	t := &dataset.Table{Columns: make([]dataset.Column, len(colNames))}
	for c, colName := range colNames {
		if boolCols[colName] {
			for i, v := range cells[c] {
				if n, ok := v.(int64); ok {
					cells[c][i] = n != 0
				}
			}
		}
		t.Columns[c] = dataset.BuildColumn(colName, cells[c])
	}
	return t, nil
}

// declaredBoolColumns returns the columns of a relation whose declared
// type is BOOLEAN. SQLite stores bools as 0/1 integers; the declared type
// is the only record that a column held bools, so Load uses it to restore
// the original cell kind.
func (s *Store) declaredBoolColumns(ctx context.Context, name string) (map[string]bool, error) {
	type colInfo struct {
		Name string `db:"name"`
		Type string `db:"type"`
	}
	var infos []colInfo
	// PRAGMA table_info does not accept bound parameters; the name has
	// already passed ValidateRelationName.
	err := s.db.SelectContext(ctx, &infos,
		"SELECT name, type FROM pragma_table_info("+quoteString(name)+")")
	if err != nil {
		return nil, err
	}
	bools := make(map[string]bool)
	for _, info := range infos {
		if strings.EqualFold(info.Type, "BOOLEAN") {
			bools[info.Name] = true
		}
	}
	return bools, nil
}

// quoteString single-quotes a string literal for the pragma call.
func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// List returns the names of all user relations in the store, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}
	return names, nil
}

// Drop removes a relation. Dropping a missing relation returns ErrNotFound.
func (s *Store) Drop(ctx context.Context, name string) error {
	if err := ValidateRelationName(name); err != nil {
		return err
	}
	exists, err := s.exists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("drop %s: %w", name, ErrNotFound)
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE "+quoteIdent(name)); err != nil {
		return fmt.Errorf("drop %s: %w", name, err)
	}
	return nil
}

// exists reports whether a relation is present in sqlite_master.
func (s *Store) exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", name, err)
	}
	return n > 0, nil
}
