package querysql

import (
	"strconv"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// dateStyle is a convert() style number and the varchar length that keeps
// exactly the formatted characters.
type dateStyle struct {
	length int
	style  int
}

var dateFormats = map[string]dateStyle{
	"MM/dd/yy":                {8, 1},
	"yy.MM.dd":                {8, 2},
	"dd/MM/yy":                {8, 3},
	"dd.MM.yy":                {8, 4},
	"dd-MM-yy":                {8, 5},
	"dd MM yy":                {8, 6},
	"HH:mm:ss":                {8, 8},
	"MM-dd-yy":                {8, 10},
	"yy/MM/dd":                {8, 11},
	"yyMMdd":                  {6, 12},
	"dd MM yyyy HH:mm:ss:fff": {23, 13},
	"HH:mm:ss:fff":            {12, 14},
	"yyyy-MM-dd HH:mm:ss.fff": {23, 21},
	"yyyy-MM-dd":              {10, 23},
	"yyyy-MM-dd HH:mm:ss":     {19, 25},
	"MM/dd/yyyy":              {10, 101},
	"yyyy.MM.dd":              {10, 102},
	"dd/MM/yyyy":              {10, 103},
	"dd.MM.yyyy":              {10, 104},
	"dd-MM-yyyy":              {10, 105},
	"dd MM yyyy":              {10, 106},
	"MM-dd-yyyy":              {10, 110},
	"yyyy/MM/dd":              {10, 111},
	"yyyyMMdd":                {8, 112},
}

// DateFormats lists the format strings DateTime.ToString accepts.
func DateFormats() []string {
	out := []string{"yyyy/MM/dd HH:mm:ss", "yyyyMMddHHmmss", "yyyyMMddHHmmssfff"}
	for f := range dateFormats {
		out = append(out, f)
	}
	return out
}

func styled(x Expr, st dateStyle) string {
	return "convert(varchar(" + strconv.Itoa(st.length) + "), " + arg(x) + ", " + strconv.Itoa(st.style) + ")"
}

// formatDate renders DateTime.ToString([format]). The format must be a
// string constant; it is folded into a convert() style rather than bound.
func (s *Session) formatDate(n *queryir.MethodCall, x Expr) (Expr, error) {
	format := "yyyy/MM/dd HH:mm:ss"
	switch len(n.Args) {
	case 0:
	case 1:
		c, ok := n.Args[0].(*queryir.Constant)
		if !ok {
			return Expr{}, sqlerr.InvalidShape(methodName(n), "the date format must be a constant")
		}
		str, ok := c.Value.(ir.IRString)
		if !ok {
			return Expr{}, sqlerr.InvalidShape(methodName(n), "the date format must be a string, got %s", c.DataType)
		}
		format = string(str)
	default:
		return Expr{}, sqlerr.InvalidShape(methodName(n), "at most one format argument is accepted")
	}

	switch format {
	case "yyyy/MM/dd HH:mm:ss":
		return Expr{SQL: "replace(" + styled(x, dateStyle{19, 25}) + ", '-', '/')", Class: ClassCall}, nil
	case "yyyyMMddHHmmssfff":
		return Expr{SQL: styled(x, dateStyle{8, 112}) + " + replace(" + styled(x, dateStyle{12, 14}) + ", ':', '')", Class: ClassAdd}, nil
	case "yyyyMMddHHmmss":
		return Expr{SQL: styled(x, dateStyle{8, 112}) + " + replace(" + styled(x, dateStyle{8, 14}) + ", ':', '')", Class: ClassAdd}, nil
	}
	st, ok := dateFormats[format]
	if !ok {
		return Expr{}, sqlerr.Unsupported(methodName(n)+"(\""+format+"\")", "no convert style produces this format")
	}
	return Expr{SQL: styled(x, st), Class: ClassCall}, nil
}
