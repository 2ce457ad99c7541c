package persistence

import (
	"errors"
	"time"
)

// ErrWrongQuery marks a query with unknown columns or operators
var ErrWrongQuery = errors.New("wrong query")

type (

	//Employee table
	Employee struct {
		ID        int64     `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Name      string    `json:"name"`
		Age       int       `json:"age"`
		Salary    float64   `json:"salary"`
	}

	// EmployeeUpdate keeps changed employee fields, nil fields are not touched
	EmployeeUpdate struct {
		Name   *string  `json:"name,omitempty"`
		Age    *int     `json:"age,omitempty"`
		Salary *float64 `json:"salary,omitempty"`
	}

	//RefundRequest table
	RefundRequest struct {
		ID       int64    `json:"id"`
		Name     string   `json:"name"`
		Amount   *float64 `json:"amount"`
		ImageURL *string  `json:"image_url"`
		AudioURL *string  `json:"audio_url"`
	}

	// RefundUpdate keeps changed refund fields, nil fields are not touched
	RefundUpdate struct {
		Name     *string  `json:"name,omitempty"`
		Amount   *float64 `json:"amount,omitempty"`
		ImageURL *string  `json:"image_url,omitempty"`
		AudioURL *string  `json:"audio_url,omitempty"`
	}

	// AudioRef points to the audio description of a refund row
	AudioRef struct {
		ID       int64  `json:"id"`
		AudioURL string `json:"audio_url"`
	}
)

// Op is a conditional fetch operator
type Op string

const (
	// OpEq - column equals value
	OpEq Op = "eq"
	// OpGt - column greater than value
	OpGt Op = "gt"
	// OpLt - column less than value
	OpLt Op = "lt"
	// OpGte - column greater or equal
	OpGte Op = "gte"
	// OpLte - column less or equal
	OpLte Op = "lte"
	// OpPrefix - case insensitive prefix match
	OpPrefix Op = "prefix"
	// OpContains - case insensitive substring match
	OpContains Op = "contains"
)

// Filter is one condition of a conditional fetch
type Filter struct {
	Column string
	Op     Op
	Value  interface{}
}

// Query describes a select with optional projection
type Query struct {
	Fields  []string
	Filters []Filter
	OrderBy string
	Desc    bool
	Limit   int
}
