package querysql

import (
	"github.com/a907638015/GfdbFramework.SqlServer/internal/queryir"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

var dateParts = map[queryir.MemberID]string{
	queryir.DateTimeYear:        "year",
	queryir.DateTimeMonth:       "month",
	queryir.DateTimeDay:         "day",
	queryir.DateTimeHour:        "hour",
	queryir.DateTimeMinute:      "minute",
	queryir.DateTimeSecond:      "second",
	queryir.DateTimeMillisecond: "millisecond",
	queryir.DateTimeDayOfYear:   "dayofyear",
}

func memberName(n *queryir.MemberAccess) string {
	return n.Declaring + "." + n.Name
}

func (s *Session) memberValue(n *queryir.MemberAccess) (Expr, error) {
	switch n.ID {
	case queryir.DateTimeNow:
		return Expr{SQL: "getdate()", Class: ClassCall}, nil
	case queryir.DateTimeUtcNow:
		return Expr{SQL: "getutcdate()", Class: ClassCall}, nil
	case queryir.DateTimeToday:
		return Expr{SQL: "convert(date, getdate())", Class: ClassCall}, nil
	case queryir.NullableHasValue:
		return s.predicateAsValue(n)
	case queryir.MemberUnknown:
		return Expr{}, sqlerr.Unsupported(memberName(n), "unrecognized member")
	}

	if n.Receiver == nil {
		return Expr{}, sqlerr.InvalidShape(memberName(n), "instance member without a receiver")
	}
	x, err := s.value(n.Receiver)
	if err != nil {
		return Expr{}, err
	}

	switch n.ID {
	case queryir.StringLength:
		return call("len", x), nil
	case queryir.DateTimeDate:
		return Expr{SQL: "convert(date, " + arg(x) + ")", Class: ClassCall}, nil
	case queryir.DateTimeTimeOfDay:
		return Expr{SQL: "convert(time, " + arg(x) + ")", Class: ClassCall}, nil
	case queryir.NullableValue:
		return x, nil
	}
	if part, ok := dateParts[n.ID]; ok {
		return Expr{SQL: "datepart(" + part + ", " + arg(x) + ")", Class: ClassCall}, nil
	}
	return Expr{}, sqlerr.Unsupported(memberName(n), "no translation for member")
}

func (s *Session) memberPredicate(n *queryir.MemberAccess) (Expr, error) {
	switch n.ID {
	case queryir.NullableHasValue:
		if n.Receiver == nil {
			return Expr{}, sqlerr.InvalidShape(memberName(n), "instance member without a receiver")
		}
		return s.isNull(n.Receiver, false)
	case queryir.NullableValue:
		if n.Receiver != nil && n.Receiver.Type().IsBool() {
			return s.predicate(n.Receiver)
		}
	}
	return s.bitIs(n, "1")
}

// call renders name(args...) with function-argument parenthesization.
func call(name string, args ...Expr) Expr {
	text := name + "("
	for i, a := range args {
		if i > 0 {
			text += ", "
		}
		text += arg(a)
	}
	return Expr{SQL: text + ")", Class: ClassCall}
}
