package storage

import (
	"context"
	"errors"
)

// ErrNotImplemented is returned by port primitives that a concrete backend
// has not overridden. Hitting it means a backend is wired incompletely; it is
// a development-time contract violation, not a runtime error category.
var ErrNotImplemented = errors.New("storage: primitive not implemented")

// Row is a single result row keyed by column name.
type Row map[string]any

// Statement pairs a parameterized statement with its arguments for batch
// execution.
type Statement struct {
	SQL  string
	Args []any
}

// Store is the four-primitive port every backing store must implement. All
// aggregation and query-building logic depends on this interface and never on
// a specific store's native API.
type Store interface {
	// Execute runs a single write statement.
	Execute(ctx context.Context, sql string, args ...any) error

	// QueryAll runs a read statement and returns every row in order.
	QueryAll(ctx context.Context, sql string, args ...any) ([]Row, error)

	// QueryOne runs a read statement and returns the first row, or nil when
	// the result set is empty.
	QueryOne(ctx context.Context, sql string, args ...any) (Row, error)

	// ExecuteBatch applies all statements atomically: either every statement
	// is applied or none are.
	ExecuteBatch(ctx context.Context, stmts []Statement) error
}

// Unimplemented is a Store whose every primitive fails with
// ErrNotImplemented. Partial backends embed it so that unproxied primitives
// fail loudly instead of silently.
type Unimplemented struct{}

func (Unimplemented) Execute(context.Context, string, ...any) error {
	return ErrNotImplemented
}

func (Unimplemented) QueryAll(context.Context, string, ...any) ([]Row, error) {
	return nil, ErrNotImplemented
}

func (Unimplemented) QueryOne(context.Context, string, ...any) (Row, error) {
	return nil, ErrNotImplemented
}

func (Unimplemented) ExecuteBatch(context.Context, []Statement) error {
	return ErrNotImplemented
}
