package dialect

import (
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

func defaultColumnTypes() map[ir.Kind]string {
	return map[ir.Kind]string{
		ir.KindInt16:          "smallint",
		ir.KindInt32:          "int",
		ir.KindInt64:          "bigint",
		ir.KindDateTime:       "datetime",
		ir.KindGuid:           "uniqueidentifier",
		ir.KindSingle:         "real",
		ir.KindDouble:         "float",
		ir.KindDateTimeOffset: "datetimeoffset(7)",
		ir.KindTimeSpan:       "time(7)",
		ir.KindDecimal:        "decimal(23,5)",
		ir.KindBool:           "bit",
		ir.KindByte:           "tinyint",
		ir.KindString:         "varchar(255)",
	}
}

// ColumnType maps a runtime type to a column type. Nullable wrappers are
// unwrapped and enums map to int. Any other unmapped type is a
// type-mapping failure.
func (d *Dialect) ColumnType(t *ir.Type) (string, error) {
	u := t.Underlying()
	if u == nil {
		return "", sqlerr.TypeMapping("<nil>")
	}
	if u.Kind == ir.KindEnum {
		return d.columnTypes[ir.KindInt32], nil
	}
	if ct, ok := d.columnTypes[u.Kind]; ok {
		return ct, nil
	}
	return "", sqlerr.TypeMapping(t.String())
}

// ColumnTypes returns a copy of the kind→column-type table.
func (d *Dialect) ColumnTypes() map[ir.Kind]string {
	out := make(map[ir.Kind]string, len(d.columnTypes))
	for k, v := range d.columnTypes {
		out[k] = v
	}
	return out
}
