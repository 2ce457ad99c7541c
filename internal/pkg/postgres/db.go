package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB provides operations with postgresql
type DB struct {
	pool *pgxpool.Pool
}

//NewDB creates DB instance
func NewDB(pool *pgxpool.Pool) (*DB, error) {
	if pool == nil {
		return nil, fmt.Errorf("no pool")
	}
	res := &DB{pool: pool}
	return res, nil
}

// ListEmployees loads all employees
func (db *DB) ListEmployees(ctx context.Context) ([]*persistence.Employee, error) {
	return db.FindEmployees(ctx, nil)
}

// FindEmployees loads employees matching all filters
func (db *DB) FindEmployees(ctx context.Context, filters []persistence.Filter) ([]*persistence.Employee, error) {
	res, err := selectList[persistence.Employee](ctx, db.pool, TableEmployees,
		&persistence.Query{Filters: filters, OrderBy: "id"})
	if err != nil {
		return nil, fmt.Errorf("can't load employees: %w", err)
	}
	return res, nil
}

// LoadEmployee loads employee by ID, returns nil if there is no such record
func (db *DB) LoadEmployee(ctx context.Context, id int64) (*persistence.Employee, error) {
	res, err := selectOne[persistence.Employee](ctx, db.pool, TableEmployees,
		&persistence.Query{Filters: []persistence.Filter{{Column: "id", Op: persistence.OpEq, Value: id}}})
	if err != nil {
		return nil, fmt.Errorf("can't load employee: %w", err)
	}
	return res, nil
}

// TopSalaryEmployee returns the employee with the highest salary
func (db *DB) TopSalaryEmployee(ctx context.Context) (*persistence.Employee, error) {
	res, err := selectOne[persistence.Employee](ctx, db.pool, TableEmployees,
		&persistence.Query{OrderBy: "salary", Desc: true, Limit: 1})
	if err != nil {
		return nil, fmt.Errorf("can't load employee: %w", err)
	}
	return res, nil
}

// InsertEmployee inserts employee, returns stored record with generated fields
func (db *DB) InsertEmployee(ctx context.Context, e *persistence.Employee) (*persistence.Employee, error) {
	rows, err := db.pool.Query(ctx, `INSERT INTO employees(name, age, salary) 
	VALUES($1, $2, $3) RETURNING id, created_at, name, age, salary`, e.Name, e.Age, e.Salary)
	if err != nil {
		return nil, fmt.Errorf("can't insert employee: %w", err)
	}
	res, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[persistence.Employee])
	if err != nil {
		return nil, fmt.Errorf("can't insert employee: %w", err)
	}
	return res, nil
}

// UpdateEmployee updates set fields, returns nil if there is no such record
func (db *DB) UpdateEmployee(ctx context.Context, id int64, upd *persistence.EmployeeUpdate) (*persistence.Employee, error) {
	res, err := update[persistence.Employee](ctx, db.pool, TableEmployees, id, employeeSets(upd))
	if err != nil {
		return nil, fmt.Errorf("can't update employee: %w", err)
	}
	return res, nil
}

// DeleteEmployee deletes employee, returns false if nothing was deleted
func (db *DB) DeleteEmployee(ctx context.Context, id int64) (bool, error) {
	cmd, err := db.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("can't delete employee: %w", err)
	}
	goapp.Log.Info().Int64("ID", id).Int64("rows", cmd.RowsAffected()).Msg("deleted")
	return cmd.RowsAffected() > 0, nil
}

// ListRefunds loads all refund requests
func (db *DB) ListRefunds(ctx context.Context) ([]*persistence.RefundRequest, error) {
	return db.FindRefunds(ctx, nil)
}

// FindRefunds loads refund requests matching all filters
func (db *DB) FindRefunds(ctx context.Context, filters []persistence.Filter) ([]*persistence.RefundRequest, error) {
	res, err := selectList[persistence.RefundRequest](ctx, db.pool, TableRefunds,
		&persistence.Query{Filters: filters, OrderBy: "id"})
	if err != nil {
		return nil, fmt.Errorf("can't load refunds: %w", err)
	}
	return res, nil
}

// LoadRefund loads refund request by ID, returns nil if there is no such record
func (db *DB) LoadRefund(ctx context.Context, id int64) (*persistence.RefundRequest, error) {
	res, err := selectOne[persistence.RefundRequest](ctx, db.pool, TableRefunds,
		&persistence.Query{Filters: []persistence.Filter{{Column: "id", Op: persistence.OpEq, Value: id}}})
	if err != nil {
		return nil, fmt.Errorf("can't load refund: %w", err)
	}
	return res, nil
}

// UpdateRefund updates set fields, returns nil if there is no such record
func (db *DB) UpdateRefund(ctx context.Context, id int64, upd *persistence.RefundUpdate) (*persistence.RefundRequest, error) {
	res, err := update[persistence.RefundRequest](ctx, db.pool, TableRefunds, id, refundSets(upd))
	if err != nil {
		return nil, fmt.Errorf("can't update refund: %w", err)
	}
	return res, nil
}

// ListAudioRefs returns refund rows having an audio URL
func (db *DB) ListAudioRefs(ctx context.Context) ([]*persistence.AudioRef, error) {
	rows, err := db.pool.Query(ctx, `SELECT id, audio_url FROM refund_requests 
		WHERE audio_url IS NOT NULL AND audio_url <> '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("can't select audio urls: %w", err)
	}
	res, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[persistence.AudioRef])
	if err != nil {
		return nil, fmt.Errorf("can't retrieve audio urls: %w", err)
	}
	return res, nil
}

// Select returns projected rows of any known table
func (db *DB) Select(ctx context.Context, table string, q *persistence.Query) ([]map[string]interface{}, error) {
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("can't select %s: %w", table, err)
	}
	res, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("can't retrieve %s: %w", table, err)
	}
	return res, nil
}

// Live returns no error if db is reachable and initialized
func (db *DB) Live(ctx context.Context) error {
	var exists bool
	if err := db.pool.QueryRow(ctx, `SELECT EXISTS (SELECT FROM pg_tables WHERE tablename = 'refund_requests')`).Scan(&exists); err != nil {
		return fmt.Errorf("can't check table: %w", err)
	}
	if !exists {
		return fmt.Errorf("no migration done")
	}
	return nil
}

func selectList[T any](ctx context.Context, pool *pgxpool.Pool, table string, q *persistence.Query) ([]*T, error) {
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[T])
}

func selectOne[T any](ctx context.Context, pool *pgxpool.Pool, table string, q *persistence.Query) (*T, error) {
	sql, args, err := buildSelect(table, q)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return noRowsToNil(pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[T]))
}

func update[T any](ctx context.Context, pool *pgxpool.Pool, table string, id int64, values []setValue) (*T, error) {
	sql, args, err := buildUpdate(table, id, values)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return noRowsToNil(pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[T]))
}

func noRowsToNil[T any](res *T, err error) (*T, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return res, err
}
