package fixture

import (
	"strings"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/config"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/querysql"
)

// Result is a compiled fixture.
type Result struct {
	Name       string
	SQL        string
	Parameters []querysql.Parameter
}

// Compile builds the fixture and compiles it under cfg with the fixture's
// overrides applied. cfg is taken by value; the caller's copy is unchanged.
func (f *Fixture) Compile(cfg config.Config, opts ...querysql.Option) (*Result, error) {
	f.Configure(&cfg)
	stmt, err := f.Build()
	if err != nil {
		return nil, err
	}
	if !cfg.Parametric {
		opts = append(opts, querysql.WithInlineLiterals())
	}
	sql, params, err := querysql.NewCompiler(cfg.Dialect(), opts...).Compile(stmt)
	if err != nil {
		return nil, err
	}
	return &Result{Name: f.Name, SQL: sql, Parameters: params}, nil
}

// Text renders the SQL on one line followed by one line per parameter.
func (r *Result) Text() string {
	var b strings.Builder
	b.WriteString(r.SQL)
	b.WriteByte('\n')
	for _, p := range r.Parameters {
		b.WriteString(p.String())
		b.WriteByte('\n')
	}
	return b.String()
}
