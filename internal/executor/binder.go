package executor

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	mssql "github.com/microsoft/go-mssqldb"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/querysql"
)

// Binder turns compiled parameters into database/sql arguments.
type Binder interface {
	Bind(params []querysql.Parameter) []any
}

// PlainBinder binds native Go values by name. Durations bind as
// nanoseconds.
type PlainBinder struct{}

// Bind implements Binder.
func (PlainBinder) Bind(params []querysql.Parameter) []any {
	args := make([]any, len(params))
	for i, p := range params {
		v := p.Native()
		if d, ok := v.(time.Duration); ok {
			v = int64(d)
		}
		args[i] = sql.Named(p.Name, v)
	}
	return args
}

// MSSQLBinder binds parameters with go-mssqldb wire types chosen from each
// parameter's declared type. Dialect decides whether strings are varchar
// or nvarchar; a nil Dialect uses the defaults.
type MSSQLBinder struct {
	Dialect *dialect.Dialect
}

// Bind implements Binder.
func (b MSSQLBinder) Bind(params []querysql.Parameter) []any {
	d := b.Dialect
	if d == nil {
		d = dialect.Default()
	}
	args := make([]any, len(params))
	for i, p := range params {
		args[i] = sql.Named(p.Name, wireValue(d, p))
	}
	return args
}

func wireValue(d *dialect.Dialect, p querysql.Parameter) any {
	kind := ir.KindInvalid
	if p.Type != nil {
		kind = p.Type.Underlying().Kind
	}
	switch v := p.Value.(type) {
	case ir.IRString:
		if kind == ir.KindString && isVarChar(d, p.Type) {
			return mssql.VarChar(v)
		}
		return string(v)
	case ir.IRGuid:
		return mssql.UniqueIdentifier(uuid.UUID(v))
	case ir.IRDateTime:
		if kind == ir.KindDateTimeOffset {
			return mssql.DateTimeOffset(time.Time(v))
		}
		return mssql.DateTime1(time.Time(v))
	case ir.IRDuration:
		return timeOfDay(time.Duration(v))
	default:
		return p.Native()
	}
}

func isVarChar(d *dialect.Dialect, t *ir.Type) bool {
	ct, err := d.ColumnType(t)
	if err != nil {
		return false
	}
	ct = strings.ToLower(ct)
	return strings.HasPrefix(ct, "varchar") || strings.HasPrefix(ct, "char")
}

// timeOfDay formats d for a time(7) parameter: hh:mm:ss.fffffff.
func timeOfDay(d time.Duration) string {
	return time.Time{}.Add(d).Format("15:04:05.0000000")
}
