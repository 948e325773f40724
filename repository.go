package ember

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Repository provides generic CRUD and upsert operations over a single
// table. Each write runs in its own transaction with automatic rollback on
// failure. Models are structs whose exported fields carry `db` column tags;
// the primary key column is "id".
type Repository struct {
	db    *DB
	table string
	idCol string
}

// NewRepository creates a repository for the given table
func NewRepository(db *DB, table string) *Repository {
	return &Repository{db: db, table: table, idCol: "id"}
}

// FindByID loads the row with the given id into dest, a pointer to a model
// struct. Returns sql.ErrNoRows when no row matches.
func (r *Repository) FindByID(ctx context.Context, id interface{}, dest interface{}) error {
	columns, err := modelColumns(dest)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		strings.Join(columns, ", "), r.table, r.idCol, r.db.Placeholder(1))

	row := r.db.QueryRowContext(ctx, query, id)
	return scanModel(row, dest)
}

// FindAll loads every row of the table into dest, a pointer to a slice of
// model structs.
func (r *Repository) FindAll(ctx context.Context, dest interface{}) error {
	return r.findWhere(ctx, dest, "", nil)
}

// FindAllByIDs loads the rows with the given ids into dest
func (r *Repository) FindAllByIDs(ctx context.Context, ids []interface{}, dest interface{}) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	for i := range ids {
		placeholders[i] = r.db.Placeholder(i + 1)
	}
	where := fmt.Sprintf("%s IN (%s)", r.idCol, strings.Join(placeholders, ", "))
	return r.findWhere(ctx, dest, where, ids)
}

func (r *Repository) findWhere(ctx context.Context, dest interface{}, where string, args []interface{}) error {
	sliceValue := reflect.ValueOf(dest)
	if sliceValue.Kind() != reflect.Ptr || sliceValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to a slice")
	}

	elemType := sliceValue.Elem().Type().Elem()
	sample := reflect.New(elemType).Interface()
	columns, err := modelColumns(sample)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), r.table)
	if where != "" {
		query += " WHERE " + where
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	slice := sliceValue.Elem()
	for rows.Next() {
		item := reflect.New(elemType)
		if err := scanModel(rows, item.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, item.Elem())
	}
	sliceValue.Elem().Set(slice)
	return rows.Err()
}

// Save inserts the model as a new row, in its own transaction
func (r *Repository) Save(ctx context.Context, model interface{}) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		return r.insert(ctx, tx, model)
	})
}

// SaveAll inserts every model in one transaction
func (r *Repository) SaveAll(ctx context.Context, models []interface{}) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		for _, model := range models {
			if err := r.insert(ctx, tx, model); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteByID removes the row with the given id. Reports whether a row was
// deleted.
func (r *Repository) DeleteByID(ctx context.Context, id interface{}) (bool, error) {
	var deleted bool
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", r.table, r.idCol, r.db.Placeholder(1))
		result, err := tx.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		deleted = affected > 0
		return nil
	})
	return deleted, err
}

// Upsert updates the row matching queryBy with the model's values, or
// inserts the model when no row matches
func (r *Repository) Upsert(ctx context.Context, model interface{}, queryBy map[string]interface{}) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		where, args := r.buildWhere(queryBy, 0)
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", r.table, where)

		var count int
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			return err
		}

		if count == 0 {
			return r.insert(ctx, tx, model)
		}
		return r.update(ctx, tx, model, queryBy)
	})
}

func (r *Repository) insert(ctx context.Context, tx *sql.Tx, model interface{}) error {
	columns, values, err := modelValues(model)
	if err != nil {
		return err
	}

	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = r.db.Placeholder(i + 1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		r.table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
	_, err = tx.ExecContext(ctx, query, values...)
	return err
}

func (r *Repository) update(ctx context.Context, tx *sql.Tx, model interface{}, queryBy map[string]interface{}) error {
	columns, values, err := modelValues(model)
	if err != nil {
		return err
	}

	assignments := make([]string, len(columns))
	for i, column := range columns {
		assignments[i] = fmt.Sprintf("%s = %s", column, r.db.Placeholder(i+1))
	}

	// Where placeholders continue the numbering after the assignments
	where, whereArgs := r.buildWhere(queryBy, len(columns))

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		r.table, strings.Join(assignments, ", "), where)
	_, err = tx.ExecContext(ctx, query, append(values, whereArgs...)...)
	return err
}

// buildWhere joins queryBy into an AND condition; offset shifts the
// placeholder numbering for drivers with positional parameters
func (r *Repository) buildWhere(queryBy map[string]interface{}, offset int) (string, []interface{}) {
	columns := make([]string, 0, len(queryBy))
	for column := range queryBy {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	conditions := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		conditions[i] = fmt.Sprintf("%s = %s", column, r.db.Placeholder(offset+i+1))
		args[i] = queryBy[column]
	}
	return strings.Join(conditions, " AND "), args
}

func (r *Repository) inTx(ctx context.Context, operation func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := operation(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// modelColumns returns the `db`-tagged column names of a model struct
func modelColumns(model interface{}) ([]string, error) {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct, got %s", t.Kind())
	}

	var columns []string
	for i := 0; i < t.NumField(); i++ {
		column := t.Field(i).Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		columns = append(columns, column)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("model %s has no db-tagged fields", t.Name())
	}
	return columns, nil
}

// modelValues returns the columns and current values of a model struct
func modelValues(model interface{}) ([]string, []interface{}, error) {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	columns, err := modelColumns(model)
	if err != nil {
		return nil, nil, err
	}

	var values []interface{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		column := t.Field(i).Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		values = append(values, v.Field(i).Interface())
	}
	return columns, values, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanModel scans the current row into the model's db-tagged fields
func scanModel(row rowScanner, model interface{}) error {
	v := reflect.ValueOf(model)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("model must be a pointer to a struct")
	}
	v = v.Elem()

	var targets []interface{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		column := t.Field(i).Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}
		targets = append(targets, v.Field(i).Addr().Interface())
	}
	return row.Scan(targets...)
}
