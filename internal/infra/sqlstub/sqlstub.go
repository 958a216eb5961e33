// Package sqlstub provides in-memory stand-ins for infra.SQLExecutor used by
// repository and handler tests.
package sqlstub

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Call records one statement sent to the Executor.
type Call struct {
	Query string
	Args  []any
}

// Executor dispatches statements to the configured funcs and records every call.
// Unset funcs behave like an empty database.
type Executor struct {
	ExecFunc     func(query string, args []any) (pgconn.CommandTag, error)
	QueryRowFunc func(query string, args []any) pgx.Row
	QueryFunc    func(query string, args []any) (pgx.Rows, error)

	mu    sync.Mutex
	calls []Call
}

func (e *Executor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.record(query, args)
	if e.ExecFunc == nil {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return e.ExecFunc(query, args)
}

func (e *Executor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	e.record(query, args)
	if e.QueryRowFunc == nil {
		return Row{}
	}
	return e.QueryRowFunc(query, args)
}

func (e *Executor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	e.record(query, args)
	if e.QueryFunc == nil {
		return NewRows(), nil
	}
	return e.QueryFunc(query, args)
}

// Calls returns a copy of the recorded statements.
func (e *Executor) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallsFor returns the recorded calls of one statement.
func (e *Executor) CallsFor(query string) []Call {
	var out []Call
	for _, c := range e.Calls() {
		if c.Query == query {
			out = append(out, c)
		}
	}
	return out
}

func (e *Executor) record(query string, args []any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, Call{Query: query, Args: append([]any(nil), args...)})
}

// Row is a single-row result. The zero Row scans as pgx.ErrNoRows.
type Row struct {
	scan func(dest ...any) error
}

func NewRow(scanner func(dest ...any) error) Row {
	return Row{scan: scanner}
}

// RowOf returns a row that scans values into the destinations in order.
func RowOf(values ...any) Row {
	return Row{scan: func(dest ...any) error { return Assign(dest, values) }}
}

// ErrRow returns a row whose Scan fails with err.
func ErrRow(err error) Row {
	return Row{scan: func(...any) error { return err }}
}

func (r Row) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// Rows iterates over fixed values.
type Rows struct {
	values [][]any
	idx    int
	err    error
	closed bool
}

func NewRows(values ...[]any) *Rows {
	return &Rows{values: values, idx: -1}
}

// WithErr makes Err report err once iteration finishes.
func (r *Rows) WithErr(err error) *Rows {
	r.err = err
	return r
}

func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	if r.idx >= len(r.values) {
		r.closed = true
		return false
	}
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.idx < 0 || r.idx >= len(r.values) {
		return fmt.Errorf("sqlstub: scan called without a current row")
	}
	return Assign(dest, r.values[r.idx])
}

func (r *Rows) Err() error                                   { return r.err }
func (r *Rows) Close()                                       { r.closed = true }
func (r *Rows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *Rows) Conn() *pgx.Conn                              { return nil }
func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *Rows) RawValues() [][]byte                          { return nil }

func (r *Rows) Values() ([]any, error) {
	if r.idx < 0 || r.idx >= len(r.values) {
		return nil, fmt.Errorf("sqlstub: values called without a current row")
	}
	return append([]any(nil), r.values[r.idx]...), nil
}

// Assign copies values into pointer destinations, converting between
// compatible kinds the way a driver would.
func Assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("sqlstub: %d destinations for %d values", len(dest), len(values))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d)
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("sqlstub: destination %d is not a pointer", i)
		}
		elem := target.Elem()
		if values[i] == nil {
			elem.Set(reflect.Zero(elem.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		switch {
		case v.Type().AssignableTo(elem.Type()):
			elem.Set(v)
		case elem.Kind() == reflect.String && v.Kind() != reflect.String:
			return fmt.Errorf("sqlstub: cannot scan %T into %s", values[i], elem.Type())
		case v.Type().ConvertibleTo(elem.Type()):
			elem.Set(v.Convert(elem.Type()))
		default:
			return fmt.Errorf("sqlstub: cannot scan %T into %s", values[i], elem.Type())
		}
	}
	return nil
}

var _ pgx.Rows = (*Rows)(nil)
