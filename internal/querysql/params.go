package querysql

import (
	"fmt"
	"strconv"
	"time"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// Parameter is one bound value of a compiled command.
type Parameter struct {
	// Name is the placeholder name without the @ prefix ("P0").
	Name  string
	Value ir.IRValue
	// Type is the declared type of the first constant that registered the
	// value. Binders use it to pick a wire type.
	Type *ir.Type
}

// Placeholder returns the text that stands for p in SQL ("@P0").
func (p Parameter) Placeholder() string { return "@" + p.Name }

// Native returns the Go value to bind.
func (p Parameter) Native() any { return ir.Native(p.Value) }

// String formats p for listings: @P0 int32 = 18.
func (p Parameter) String() string {
	typ := "unknown"
	if p.Type != nil {
		typ = p.Type.String()
	}
	return fmt.Sprintf("%s %s = %s", p.Placeholder(), typ, displayValue(p.Value))
}

func displayValue(v ir.IRValue) string {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "null"
	case ir.IRString:
		return strconv.Quote(string(val))
	case ir.IRDateTime:
		return time.Time(val).Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(ir.Native(v))
	}
}

// ParameterContext receives every constant the compiler encounters and
// returns the SQL text that represents it.
type ParameterContext interface {
	// Add registers v of declared type t and returns its SQL text.
	Add(v ir.IRValue, t *ir.Type) (string, error)
	// Parameters returns the registered parameters in first-seen order.
	Parameters() []Parameter
}

// NewParameterContext returns a context that emits @P{n} placeholders.
// Equal values share one placeholder; numbering follows first encounter.
func NewParameterContext() ParameterContext {
	return &placeholders{index: make(map[string]int)}
}

type placeholders struct {
	index  map[string]int
	params []Parameter
}

func (p *placeholders) Add(v ir.IRValue, t *ir.Type) (string, error) {
	if _, ok := v.(ir.IRSequence); ok {
		return "", sqlerr.Unsupported("Constant", "a sequence cannot be bound as a single parameter")
	}
	if v == nil {
		v = ir.IRNull{}
	}
	key := ir.Key(v)
	if i, ok := p.index[key]; ok {
		return p.params[i].Placeholder(), nil
	}
	param := Parameter{Name: fmt.Sprintf("P%d", len(p.params)), Value: v, Type: t}
	p.index[key] = len(p.params)
	p.params = append(p.params, param)
	return param.Placeholder(), nil
}

func (p *placeholders) Parameters() []Parameter {
	out := make([]Parameter, len(p.params))
	copy(out, p.params)
	return out
}

// NewInlineContext returns a context that renders constants as T-SQL
// literals and binds nothing.
func NewInlineContext(d *dialect.Dialect) ParameterContext {
	return &inline{dialect: d}
}

type inline struct {
	dialect *dialect.Dialect
}

func (c *inline) Add(v ir.IRValue, t *ir.Type) (string, error) {
	return literal(c.dialect, v, t)
}

func (c *inline) Parameters() []Parameter { return nil }
