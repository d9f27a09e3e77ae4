package querysql

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/testutil"
)

func newCompiler(d *dialect.Dialect, opts ...Option) *Compiler {
	return NewCompiler(d, append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)...)
}

func newSession(d *dialect.Dialect) *Session {
	return newCompiler(d).NewSession()
}

func valueSQL(t *testing.T, s *Session, f queryir.Field) string {
	t.Helper()
	e, err := s.Render(f, false)
	require.NoError(t, err)
	return e.SQL
}

func predicateSQL(t *testing.T, s *Session, f queryir.Field) string {
	t.Helper()
	e, err := s.Render(f, true)
	require.NoError(t, err)
	return e.SQL
}

// mustList and mustBinary take constructor results directly:
// mustBinary(t)(queryir.In(x, list)).
func mustList(t *testing.T) func(*queryir.Constant, error) *queryir.Constant {
	return func(c *queryir.Constant, err error) *queryir.Constant {
		t.Helper()
		require.NoError(t, err)
		return c
	}
}

func mustBinary(t *testing.T) func(*queryir.Binary, error) *queryir.Binary {
	return func(b *queryir.Binary, err error) *queryir.Binary {
		t.Helper()
		require.NoError(t, err)
		return b
	}
}

func compileSQL(t *testing.T, d *dialect.Dialect, stmt queryir.Statement) (string, []Parameter) {
	t.Helper()
	sql, params, err := newCompiler(d).Compile(stmt)
	require.NoError(t, err)
	return sql, params
}

func natives(params []Parameter) []any {
	out := make([]any, len(params))
	for i, p := range params {
		out[i] = p.Native()
	}
	return out
}
