package querysql

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// literal renders v as T-SQL text. Typed literals are wrapped in convert so
// that the expression has the column type of t.
func literal(d *dialect.Dialect, v ir.IRValue, t *ir.Type) (string, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return "null", nil
	case ir.IRString:
		return "N'" + strings.ReplaceAll(string(val), "'", "''") + "'", nil
	case ir.IRInt:
		return strconv.FormatInt(int64(val), 10), nil
	case ir.IRFloat:
		bits := 64
		if t.Is(ir.KindSingle) {
			bits = 32
		}
		return strconv.FormatFloat(float64(val), 'g', -1, bits), nil
	case ir.IRDecimal:
		return val.String(), nil
	case ir.IRBool:
		if val {
			return "convert(bit, 1)", nil
		}
		return "convert(bit, 0)", nil
	case ir.IRDateTime:
		tm := time.Time(val)
		if t.Is(ir.KindDateTimeOffset) {
			return typedLiteral(d, t, tm.Format("2006-01-02T15:04:05.0000000-07:00"))
		}
		return typedLiteral(d, ir.DateTime, tm.Format("2006-01-02T15:04:05.000"))
	case ir.IRDuration:
		dur := time.Duration(val)
		base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(dur)
		return typedLiteral(d, ir.TimeSpan, base.Format("15:04:05.0000000"))
	case ir.IRGuid:
		return typedLiteral(d, ir.Guid, uuid.UUID(val).String())
	default:
		return "", sqlerr.Unsupported("Constant", "no literal form for %T", v)
	}
}

func typedLiteral(d *dialect.Dialect, t *ir.Type, text string) (string, error) {
	ct, err := d.ColumnType(t)
	if err != nil {
		return "", err
	}
	return "convert(" + ct + ", '" + text + "')", nil
}
