package postgres

import (
	"fmt"
	"strings"

	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/jackc/pgx/v5"
)

const (
	// TableEmployees employees table name
	TableEmployees = "employees"
	// TableRefunds refund requests table name
	TableRefunds = "refund_requests"
)

// column order must match the struct field order in persistence
var tableColumns = map[string][]string{
	TableEmployees: {"id", "created_at", "name", "age", "salary"},
	TableRefunds:   {"id", "name", "amount", "image_url", "audio_url"},
}

var opSQL = map[persistence.Op]string{
	persistence.OpEq:  "=",
	persistence.OpGt:  ">",
	persistence.OpLt:  "<",
	persistence.OpGte: ">=",
	persistence.OpLte: "<=",
}

type setValue struct {
	column string
	value  interface{}
}

func buildSelect(table string, q *persistence.Query) (string, []interface{}, error) {
	if q == nil {
		q = &persistence.Query{}
	}
	fields := q.Fields
	if len(fields) == 0 {
		fields = tableColumns[table]
	}
	cols, err := sanitizeColumns(table, fields)
	if err != nil {
		return "", nil, err
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(pgx.Identifier{table}.Sanitize())
	args := []interface{}{}
	for i, f := range q.Filters {
		cond, v, err := buildCondition(table, f, len(args)+1)
		if err != nil {
			return "", nil, err
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(cond)
		args = append(args, v)
	}
	if q.OrderBy != "" {
		col, err := sanitizeColumns(table, []string{q.OrderBy})
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(col[0])
		if q.Desc {
			sb.WriteString(" DESC")
		}
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	}
	return sb.String(), args, nil
}

func buildCondition(table string, f persistence.Filter, n int) (string, interface{}, error) {
	col, err := sanitizeColumns(table, []string{f.Column})
	if err != nil {
		return "", nil, err
	}
	switch f.Op {
	case persistence.OpPrefix:
		return fmt.Sprintf("%s ILIKE $%d", col[0], n), escapeLike(fmt.Sprint(f.Value)) + "%", nil
	case persistence.OpContains:
		return fmt.Sprintf("%s ILIKE $%d", col[0], n), "%" + escapeLike(fmt.Sprint(f.Value)) + "%", nil
	}
	op, ok := opSQL[f.Op]
	if !ok {
		return "", nil, fmt.Errorf("%w: wrong operator '%s'", persistence.ErrWrongQuery, f.Op)
	}
	return fmt.Sprintf("%s %s $%d", col[0], op, n), f.Value, nil
}

func buildUpdate(table string, id int64, values []setValue) (string, []interface{}, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("%w: no fields to update", persistence.ErrWrongQuery)
	}
	args := []interface{}{id}
	sets := make([]string, 0, len(values))
	for _, v := range values {
		col, err := sanitizeColumns(table, []string{v.column})
		if err != nil {
			return "", nil, err
		}
		args = append(args, v.value)
		sets = append(sets, fmt.Sprintf("%s = $%d", col[0], len(args)))
	}
	all, _ := sanitizeColumns(table, tableColumns[table])
	return fmt.Sprintf("UPDATE %s SET %s WHERE \"id\" = $1 RETURNING %s", pgx.Identifier{table}.Sanitize(),
		strings.Join(sets, ", "), strings.Join(all, ", ")), args, nil
}

func sanitizeColumns(table string, fields []string) ([]string, error) {
	known, ok := tableColumns[table]
	if !ok {
		return nil, fmt.Errorf("%w: unknown table '%s'", persistence.ErrWrongQuery, table)
	}
	res := make([]string, 0, len(fields))
	for _, f := range fields {
		if !contains(known, f) {
			return nil, fmt.Errorf("%w: unknown column '%s' in '%s'", persistence.ErrWrongQuery, f, table)
		}
		res = append(res, pgx.Identifier{f}.Sanitize())
	}
	return res, nil
}

func contains(arr []string, s string) bool {
	for _, a := range arr {
		if a == s {
			return true
		}
	}
	return false
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeReplacer.Replace(s)
}

func employeeSets(upd *persistence.EmployeeUpdate) []setValue {
	res := []setValue{}
	if upd == nil {
		return res
	}
	if upd.Name != nil {
		res = append(res, setValue{column: "name", value: *upd.Name})
	}
	if upd.Age != nil {
		res = append(res, setValue{column: "age", value: *upd.Age})
	}
	if upd.Salary != nil {
		res = append(res, setValue{column: "salary", value: *upd.Salary})
	}
	return res
}

func refundSets(upd *persistence.RefundUpdate) []setValue {
	res := []setValue{}
	if upd == nil {
		return res
	}
	if upd.Name != nil {
		res = append(res, setValue{column: "name", value: *upd.Name})
	}
	if upd.Amount != nil {
		res = append(res, setValue{column: "amount", value: *upd.Amount})
	}
	if upd.ImageURL != nil {
		res = append(res, setValue{column: "image_url", value: *upd.ImageURL})
	}
	if upd.AudioURL != nil {
		res = append(res, setValue{column: "audio_url", value: *upd.AudioURL})
	}
	return res
}
