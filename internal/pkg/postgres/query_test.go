package postgres

import (
	"testing"

	"github.com/airenas/refundo/internal/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_buildSelect(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		q        *persistence.Query
		want     string
		wantArgs []interface{}
		wantErr  bool
	}{
		{name: "all", table: TableEmployees, q: nil,
			want:     `SELECT "id", "created_at", "name", "age", "salary" FROM "employees"`,
			wantArgs: []interface{}{}},
		{name: "projection", table: TableRefunds, q: &persistence.Query{Fields: []string{"id", "audio_url"}},
			want:     `SELECT "id", "audio_url" FROM "refund_requests"`,
			wantArgs: []interface{}{}},
		{name: "eq", table: TableEmployees, q: &persistence.Query{Fields: []string{"name"},
			Filters: []persistence.Filter{{Column: "id", Op: persistence.OpEq, Value: 10}}},
			want:     `SELECT "name" FROM "employees" WHERE "id" = $1`,
			wantArgs: []interface{}{10}},
		{name: "gt and prefix", table: TableEmployees, q: &persistence.Query{Fields: []string{"name"},
			Filters: []persistence.Filter{{Column: "age", Op: persistence.OpGt, Value: 30},
				{Column: "name", Op: persistence.OpPrefix, Value: "A"}}},
			want:     `SELECT "name" FROM "employees" WHERE "age" > $1 AND "name" ILIKE $2`,
			wantArgs: []interface{}{30, "A%"}},
		{name: "contains escaped", table: TableEmployees, q: &persistence.Query{Fields: []string{"name"},
			Filters: []persistence.Filter{{Column: "name", Op: persistence.OpContains, Value: "5%_"}}},
			want:     `SELECT "name" FROM "employees" WHERE "name" ILIKE $1`,
			wantArgs: []interface{}{`%5\%\_%`}},
		{name: "order limit", table: TableEmployees, q: &persistence.Query{Fields: []string{"id"}, OrderBy: "salary", Desc: true, Limit: 1},
			want:     `SELECT "id" FROM "employees" ORDER BY "salary" DESC LIMIT $1`,
			wantArgs: []interface{}{1}},
		{name: "wrong table", table: "users", q: nil, wantErr: true},
		{name: "wrong column", table: TableEmployees, q: &persistence.Query{Fields: []string{"id; drop"}}, wantErr: true},
		{name: "wrong filter column", table: TableEmployees, q: &persistence.Query{
			Filters: []persistence.Filter{{Column: "olia", Op: persistence.OpEq, Value: 1}}}, wantErr: true},
		{name: "wrong op", table: TableEmployees, q: &persistence.Query{
			Filters: []persistence.Filter{{Column: "age", Op: "like", Value: 1}}}, wantErr: true},
		{name: "wrong order", table: TableEmployees, q: &persistence.Query{OrderBy: "olia"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args, err := buildSelect(tt.table, tt.q)
			if tt.wantErr {
				assert.ErrorIs(t, err, persistence.ErrWrongQuery)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_buildUpdate(t *testing.T) {
	name, age := "Jonas", 40
	got, args, err := buildUpdate(TableEmployees, 5, employeeSets(&persistence.EmployeeUpdate{Name: &name, Age: &age}))
	require.Nil(t, err)
	assert.Equal(t, `UPDATE "employees" SET "name" = $2, "age" = $3 WHERE "id" = $1 RETURNING "id", "created_at", "name", "age", "salary"`, got)
	assert.Equal(t, []interface{}{int64(5), "Jonas", 40}, args)
}

func Test_buildUpdate_Refund(t *testing.T) {
	url, amount := "http://olia/1.png", 12.5
	got, args, err := buildUpdate(TableRefunds, 1, refundSets(&persistence.RefundUpdate{ImageURL: &url, Amount: &amount}))
	require.Nil(t, err)
	assert.Equal(t, `UPDATE "refund_requests" SET "amount" = $2, "image_url" = $3 WHERE "id" = $1 RETURNING "id", "name", "amount", "image_url", "audio_url"`, got)
	assert.Equal(t, []interface{}{int64(1), 12.5, "http://olia/1.png"}, args)
}

func Test_buildUpdate_Empty(t *testing.T) {
	_, _, err := buildUpdate(TableEmployees, 5, employeeSets(&persistence.EmployeeUpdate{}))
	assert.ErrorIs(t, err, persistence.ErrWrongQuery)
	_, _, err = buildUpdate(TableRefunds, 5, refundSets(nil))
	assert.NotNil(t, err)
}
