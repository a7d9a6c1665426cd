package store

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/richard-senior/apex/internal/logger"
)

// ErrNotFound is returned when a lookup by primary key matches nothing
var ErrNotFound = errors.New("record not found")

// Persistable is implemented by structs stored through the tag-driven helpers.
// Fields take part when they carry a dbtype tag; column names default to the lower-cased field name.
type Persistable interface {
	GetTableName() string
	GetPrimaryKey() map[string]any
	BeforeSave() error
}

// column describes one persisted struct field
type column struct {
	name    string
	dbType  string
	primary bool
	index   bool
	field   int
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func columnsOf(obj any) []column {
	t := structType(obj)
	var cols []column
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Tag.Get("db") == "-" {
			continue
		}
		dbType := f.Tag.Get("dbtype")
		if dbType == "" {
			continue
		}
		name := f.Tag.Get("column")
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		cols = append(cols, column{
			name:    name,
			dbType:  dbType,
			primary: f.Tag.Get("primary") == "true",
			index:   f.Tag.Get("index") == "true",
			field:   i,
		})
	}
	return cols
}

// createTableSQL generates CREATE TABLE SQL from struct tags
func createTableSQL(obj Persistable) string {
	var defs, keys []string
	for _, c := range columnsOf(obj) {
		defs = append(defs, c.name+" "+c.dbType)
		if c.primary {
			keys = append(keys, c.name)
		}
	}
	if len(keys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(keys, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", obj.GetTableName(), strings.Join(defs, ", "))
}

func indexSQL(obj Persistable) []string {
	table := obj.GetTableName()
	var out []string
	for _, c := range columnsOf(obj) {
		if !c.index {
			continue
		}
		out = append(out, fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(%s)", table, c.name, table, c.name))
	}
	return out
}

// CreateTable creates the table and indexes for obj if they do not exist
func (s *Store) CreateTable(obj Persistable) error {
	table := obj.GetTableName()
	query := createTableSQL(obj)
	logger.Debug("Creating table with SQL", query)
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	for _, q := range indexSQL(obj) {
		logger.Debug("Creating index with SQL", q)
		if _, err := s.db.Exec(q); err != nil {
			logger.Warn("Failed to create index", err)
		}
	}
	return nil
}

// Save inserts obj, or updates it when a row with the same primary key exists
func (s *Store) Save(obj Persistable) error {
	if err := obj.BeforeSave(); err != nil {
		return fmt.Errorf("before save hook failed: %w", err)
	}
	exists, err := s.Exists(obj)
	if err != nil {
		return fmt.Errorf("failed to check existence: %w", err)
	}
	if exists {
		return s.update(obj)
	}
	return s.insert(obj)
}

func (s *Store) insert(obj Persistable) error {
	v := reflect.Indirect(reflect.ValueOf(obj))
	var names, marks []string
	var values []any
	for _, c := range columnsOf(obj) {
		names = append(names, c.name)
		marks = append(marks, "?")
		values = append(values, v.Field(c.field).Interface())
	}
	table := obj.GetTableName()
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(marks, ", "))
	logger.Debug("Insert SQL", query)
	if _, err := s.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table, err)
	}
	return nil
}

func (s *Store) update(obj Persistable) error {
	v := reflect.Indirect(reflect.ValueOf(obj))
	var sets []string
	var values []any
	for _, c := range columnsOf(obj) {
		if c.primary {
			continue
		}
		sets = append(sets, c.name+" = ?")
		values = append(values, v.Field(c.field).Interface())
	}
	where, keyValues := whereClause(obj.GetPrimaryKey())
	values = append(values, keyValues...)

	table := obj.GetTableName()
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", table, strings.Join(sets, ", "), where)
	logger.Debug("Update SQL", query)
	if _, err := s.db.Exec(query, values...); err != nil {
		return fmt.Errorf("failed to update %s: %w", table, err)
	}
	return nil
}

// Exists checks if a row with obj's primary key is stored
func (s *Store) Exists(obj Persistable) (bool, error) {
	table := obj.GetTableName()
	where, values := whereClause(obj.GetPrimaryKey())
	var count int
	err := s.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where), values...).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check existence in %s: %w", table, err)
	}
	return count > 0, nil
}

// FindByPrimaryKey loads the row matching key into obj
func (s *Store) FindByPrimaryKey(obj Persistable, key map[string]any) error {
	table := obj.GetTableName()
	names, dest := selectTargets(obj)
	where, values := whereClause(key)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(names, ", "), table, where)
	logger.Debug("FindByPrimaryKey SQL", query)

	err := s.db.QueryRow(query, values...).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", table, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to scan row from %s: %w", table, err)
	}
	return nil
}

// FindWhere returns new instances of obj's type for every row matching clause.
// The clause may carry ORDER BY and LIMIT.
func (s *Store) FindWhere(obj Persistable, clause string, args ...any) ([]any, error) {
	table := obj.GetTableName()
	names, _ := selectTargets(obj)
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(names, ", "), table, clause)
	logger.Debug("FindWhere SQL", query)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	t := structType(obj)
	var results []any
	for rows.Next() {
		item := reflect.New(t).Interface()
		_, dest := selectTargets(item)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows from %s: %w", table, err)
	}
	return results, nil
}

func selectTargets(obj any) ([]string, []any) {
	v := reflect.Indirect(reflect.ValueOf(obj))
	var names []string
	var dest []any
	for _, c := range columnsOf(obj) {
		names = append(names, c.name)
		dest = append(dest, v.Field(c.field).Addr().Interface())
	}
	return names, dest
}

// whereClause builds "a = ? AND b = ?" from a primary key map
func whereClause(key map[string]any) (string, []any) {
	var conds []string
	var values []any
	for col, val := range key {
		conds = append(conds, col+" = ?")
		values = append(values, val)
	}
	return strings.Join(conds, " AND "), values
}
