// Package docstore defines the narrow document store contract consumed by the
// resource pipeline, plus the stores the binaries ship with.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Distinguishable store conditions. Everything else a store returns is opaque.
var (
	ErrNotFound         = errors.New("docstore: not found")
	ErrPermissionDenied = errors.New("docstore: permission denied")
	// ErrInvalidQuery marks a field name or operator the store cannot resolve.
	ErrInvalidQuery = errors.New("docstore: invalid query")
)

type Operator string

const (
	OpEq   Operator = "eq"
	OpNeq  Operator = "neq"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpLike Operator = "like"
)

// ParseOperator accepts the operator names case-insensitively.
func ParseOperator(s string) (Operator, error) {
	op := Operator(strings.ToLower(strings.TrimSpace(s)))
	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte, OpLike:
		return op, nil
	}
	return "", fmt.Errorf("unsupported operator %q", s)
}

// Filter is one predicate; a list of filters is a conjunction applied in order.
type Filter struct {
	Key   string   `json:"key"`
	Op    Operator `json:"operator"`
	Value any      `json:"value"`
}

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "asc":
		return Asc, nil
	case "desc":
		return Desc, nil
	}
	return "", fmt.Errorf("unsupported direction %q", s)
}

type OrderBy struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Query describes one windowed read. Cursor is the id of the last document of
// the previous window; results start strictly after it. Offset is only
// honoured when Cursor is empty. Limit <= 0 means no limit.
type Query struct {
	Filters []Filter
	OrderBy *OrderBy
	Cursor  string
	Offset  int
	Limit   int
}

// Store is implemented by every document store collaborator.
// Not-found must be reported as ErrNotFound, access denial as
// ErrPermissionDenied and unresolvable fields as ErrInvalidQuery (wrapping is fine).
type Store[T any] interface {
	Create(ctx context.Context, data T) (T, error)
	CreateWithID(ctx context.Context, id string, data T) (T, error)
	FindByID(ctx context.Context, id string) (T, error)
	FindAll(ctx context.Context) ([]T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, error)
	Delete(ctx context.Context, id string) (bool, error)
	Query(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, filters []Filter) (int64, error)
}
