package querysql

import (
	"fmt"
	"log/slog"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
)

// Compiler compiles queryir statements to parameterized T-SQL.
//
// A Compiler is immutable and safe for concurrent use. Each Compile call
// works in its own Session, so parameter numbering and render caches never
// leak between statements.
type Compiler struct {
	dialect *dialect.Dialect
	logger  *slog.Logger
	inline  bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// WithInlineLiterals renders constants as T-SQL literals instead of
// @P{n} placeholders.
func WithInlineLiterals() Option {
	return func(c *Compiler) { c.inline = true }
}

// NewCompiler creates a Compiler for d.
func NewCompiler(d *dialect.Dialect, opts ...Option) *Compiler {
	c := &Compiler{dialect: d, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the dialect the compiler targets.
func (c *Compiler) Dialect() *dialect.Dialect { return c.dialect }

// Compile converts a statement to SQL.
// Returns (sql, parameters, error) tuple.
//
// The statement is validated first; any error aborts compilation and no
// partial SQL is returned.
func (c *Compiler) Compile(stmt queryir.Statement) (string, []Parameter, error) {
	if stmt == nil {
		return "", nil, fmt.Errorf("cannot compile nil statement")
	}
	if err := queryir.Validate(stmt); err != nil {
		return "", nil, fmt.Errorf("invalid statement: %w", err)
	}

	s := c.NewSession()
	var sql string
	var err error
	switch st := stmt.(type) {
	case *queryir.Select:
		sql, err = s.selectSQL(st, true)
	case *queryir.Compound:
		sql, err = s.compoundSQL(st, true)
	case *queryir.Insert:
		sql, err = s.insertSQL(st)
	case *queryir.InsertFrom:
		sql, err = s.insertFromSQL(st)
	case *queryir.Update:
		sql, err = s.updateSQL(st)
	case *queryir.Delete:
		sql, err = s.deleteSQL(st)
	default:
		return "", nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
	if err != nil {
		return "", nil, err
	}

	params := s.Parameters()
	c.logger.Debug("statement compiled",
		"statement", fmt.Sprintf("%T", stmt),
		"build", c.dialect.Build,
		"parameters", len(params))
	return sql, params, nil
}

// Session is the state of one compilation: the parameter context and the
// per-node render caches. A Session is not safe for concurrent use.
type Session struct {
	dialect *dialect.Dialect
	logger  *slog.Logger
	params  ParameterContext

	values     map[queryir.Field]Expr
	predicates map[queryir.Field]Expr
}

// NewSession starts a session with a fresh parameter context.
func (c *Compiler) NewSession() *Session {
	var params ParameterContext
	if c.inline {
		params = NewInlineContext(c.dialect)
	} else {
		params = NewParameterContext()
	}
	return c.NewSessionWith(params)
}

// NewSessionWith starts a session that registers constants in params.
func (c *Compiler) NewSessionWith(params ParameterContext) *Session {
	return &Session{
		dialect:    c.dialect,
		logger:     c.logger,
		params:     params,
		values:     make(map[queryir.Field]Expr),
		predicates: make(map[queryir.Field]Expr),
	}
}

// Render renders f in value form, or in predicate form when predicate is
// true. Rendering the same node twice in a session returns identical text.
func (s *Session) Render(f queryir.Field, predicate bool) (Expr, error) {
	if predicate {
		return s.predicate(f)
	}
	return s.value(f)
}

// Query renders a nested query without column aliases.
func (s *Session) Query(q queryir.Query) (string, error) {
	return s.querySQL(q, false)
}

// Parameters returns the parameters registered so far.
func (s *Session) Parameters() []Parameter {
	return s.params.Parameters()
}
