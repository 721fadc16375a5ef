package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mlopes/apreciador/errs"
)

//go:embed migrations
var dbMigrations embed.FS

// SQLite keeps every collection in its own two-column table (id, doc) and
// translates filters to json_extract predicates. It backs self-hosted
// deployments that have no remote PostgREST instance.
type SQLite struct {
	db *sql.DB
}

var knownTables = map[string]bool{
	TableProjects:        true,
	TableTexts:           true,
	TableResponses:       true,
	TableResponseHistory: true,
	TableAIAnalyses:      true,
}

var reColumn = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		return nil, err
	}

	// db tuning options
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	if err = migrateDB(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func migrateDB(db *sql.DB) error {
	src, err := iofs.New(dbMigrations, "migrations")
	if err != nil {
		return err
	}

	dst, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
		break
	case err != nil:
		return err
	}
	return nil
}

func checkQuery(table string, f Filters) error {
	if !knownTables[table] {
		return errs.StoreMsg("store.table", "unknown table: "+table)
	}
	for _, eq := range f.Eqs {
		if !reColumn.MatchString(eq.Column) {
			return errs.StoreMsg("store.filter", "bad filter column: "+eq.Column)
		}
	}
	if column, _, ok := f.OrderColumn(); ok && !reColumn.MatchString(column) {
		return errs.StoreMsg("store.order", "bad order column: "+column)
	}
	return nil
}

func columnExpr(column string) string {
	if column == "id" {
		return "id"
	}
	return fmt.Sprintf("json_extract(doc, '$.%s')", column)
}

func whereClause(f Filters) (string, []any) {
	if len(f.Eqs) == 0 {
		return "", nil
	}
	preds := make([]string, len(f.Eqs))
	args := make([]any, len(f.Eqs))
	for i, eq := range f.Eqs {
		preds[i] = columnExpr(eq.Column) + " = ?"
		args[i] = eq.Value
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

func tailClause(f Filters) string {
	tail := ""
	if column, desc, ok := f.OrderColumn(); ok {
		dir := "ASC"
		if desc {
			dir = "DESC"
		}
		tail += fmt.Sprintf(" ORDER BY %s %s", columnExpr(column), dir)
	}
	if f.Limit > 0 {
		tail += fmt.Sprintf(" LIMIT %d", f.Limit)
		if f.Offset > 0 {
			tail += fmt.Sprintf(" OFFSET %d", f.Offset)
		}
	}
	return tail
}

func (s *SQLite) Get(ctx context.Context, table string, f Filters) ([]Record, error) {
	if err := checkQuery(table, f); err != nil {
		return nil, err
	}

	where, args := whereClause(f)
	query := "SELECT doc FROM " + table + where + tailClause(f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Store("store.sqlite.query", err)
	}
	defer rows.Close()

	recs := []Record{}
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, errs.Store("store.sqlite.scan", err)
		}
		rec := Record{}
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, errs.Store("store.sqlite.decode", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (s *SQLite) Post(ctx context.Context, table string, rec Record) (Record, error) {
	if err := checkQuery(table, Filters{}); err != nil {
		return nil, err
	}

	stored := copyRecord(rec)
	id, _ := stored["id"].(string)
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
		stored["id"] = id
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	doc, err := json.Marshal(stored)
	if err != nil {
		return nil, errs.Store("store.sqlite.encode", err)
	}

	_, err = s.db.ExecContext(ctx, "INSERT INTO "+table+" (id, doc) VALUES (?, ?)", id, string(doc))
	if err != nil {
		return nil, errs.Store("store.sqlite.insert", err)
	}
	return stored, nil
}

func (s *SQLite) Patch(ctx context.Context, table string, f Filters, partial Record) ([]Record, error) {
	if err := checkQuery(table, f); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errs.Store("store.sqlite.begin_tx", err)
	}
	defer tx.Rollback()

	where, args := whereClause(f)
	rows, err := tx.QueryContext(ctx, "SELECT id, doc FROM "+table+where, args...)
	if err != nil {
		return nil, errs.Store("store.sqlite.select", err)
	}

	type match struct {
		id  string
		rec Record
	}
	matches := []match{}
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			rows.Close()
			return nil, errs.Store("store.sqlite.scan", err)
		}
		rec := Record{}
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			rows.Close()
			return nil, errs.Store("store.sqlite.decode", err)
		}
		matches = append(matches, match{id, rec})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, errs.Store("store.sqlite.select", err)
	}

	updated := []Record{}
	for _, m := range matches {
		for k, v := range partial {
			m.rec[k] = v
		}
		doc, err := json.Marshal(m.rec)
		if err != nil {
			return nil, errs.Store("store.sqlite.encode", err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE "+table+" SET doc = ? WHERE id = ?", string(doc), m.id); err != nil {
			return nil, errs.Store("store.sqlite.update", err)
		}
		updated = append(updated, m.rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Store("store.sqlite.commit", err)
	}
	return updated, nil
}

func (s *SQLite) Delete(ctx context.Context, table string, f Filters) error {
	if err := checkQuery(table, f); err != nil {
		return err
	}

	where, args := whereClause(f)
	_, err := s.db.ExecContext(ctx, "DELETE FROM "+table+where, args...)
	if err != nil {
		return errs.Store("store.sqlite.delete", err)
	}
	return nil
}
