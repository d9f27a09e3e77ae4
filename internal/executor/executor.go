package executor

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/querysql"
)

// Executor compiles statements and runs them on DB.
type Executor struct {
	DB       *sql.DB
	Compiler *querysql.Compiler
	// Binder defaults to MSSQLBinder for the compiler's dialect.
	Binder Binder
}

// New creates an executor that binds with MSSQLBinder.
func New(db *sql.DB, c *querysql.Compiler) *Executor {
	return &Executor{DB: db, Compiler: c, Binder: MSSQLBinder{Dialect: c.Dialect()}}
}

// Exec compiles and executes a statement that returns no rows.
func (e *Executor) Exec(ctx context.Context, stmt queryir.Statement) (sql.Result, error) {
	query, args, err := e.prepare(stmt)
	if err != nil {
		return nil, err
	}
	res, err := e.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("exec: %w", err)
	}
	return res, nil
}

// Query compiles and runs a query.
// Callers are responsible for closing the returned rows.
func (e *Executor) Query(ctx context.Context, q queryir.Query) (*sql.Rows, error) {
	query, args, err := e.prepare(q)
	if err != nil {
		return nil, err
	}
	rows, err := e.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return rows, nil
}

func (e *Executor) prepare(stmt queryir.Statement) (string, []any, error) {
	query, params, err := e.Compiler.Compile(stmt)
	if err != nil {
		return "", nil, err
	}
	binder := e.Binder
	if binder == nil {
		binder = MSSQLBinder{Dialect: e.Compiler.Dialect()}
	}
	return query, binder.Bind(params), nil
}
