package ir

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IRValue is a sealed interface over constant payloads.
// Only the types in this file implement it.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull is the absent value.
type IRNull struct{}

func (IRNull) irValue() {}

// IRString is a text constant.
type IRString string

func (IRString) irValue() {}

// IRInt is any signed or unsigned integer that fits in int64.
type IRInt int64

func (IRInt) irValue() {}

// IRFloat is a single or double precision constant.
type IRFloat float64

func (IRFloat) irValue() {}

// IRDecimal is an exact numeric constant.
type IRDecimal struct{ decimal.Decimal }

func (IRDecimal) irValue() {}

// IRBool is a boolean constant.
type IRBool bool

func (IRBool) irValue() {}

// IRDateTime is a point in time. Offset-aware values keep their location.
type IRDateTime time.Time

func (IRDateTime) irValue() {}

// IRDuration is a time-of-day or interval constant.
type IRDuration time.Duration

func (IRDuration) irValue() {}

// IRGuid is a unique identifier constant.
type IRGuid uuid.UUID

func (IRGuid) irValue() {}

// IRSequence is an in-memory list of constants used as the right operand
// of In and NotIn.
type IRSequence []IRValue

func (IRSequence) irValue() {}

// IsNull reports whether v is nil or Null.
func IsNull(v IRValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(IRNull)
	return ok
}

// ValueOf converts a Go value into an IRValue.
//
// Supported inputs: nil, string, bool, all integer kinds, float32/64,
// decimal.Decimal, time.Time, time.Duration, uuid.UUID, []any, and any
// IRValue (returned unchanged).
func ValueOf(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case bool:
		return IRBool(val), nil
	case int:
		return IRInt(val), nil
	case int8:
		return IRInt(val), nil
	case int16:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint8:
		return IRInt(val), nil
	case uint16:
		return IRInt(val), nil
	case uint32:
		return IRInt(val), nil
	case uint64:
		if val > 1<<63-1 {
			return nil, fmt.Errorf("uint64 %d overflows int64", val)
		}
		return IRInt(val), nil
	case float32:
		return IRFloat(val), nil
	case float64:
		return IRFloat(val), nil
	case decimal.Decimal:
		return IRDecimal{val}, nil
	case time.Time:
		return IRDateTime(val), nil
	case time.Duration:
		return IRDuration(val), nil
	case uuid.UUID:
		return IRGuid(val), nil
	case []any:
		seq := make(IRSequence, len(val))
		for i, elem := range val {
			ev, err := ValueOf(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = ev
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", v)
	}
}

// Native returns the Go representation of v: nil, string, int64, float64,
// decimal.Decimal, bool, time.Time, time.Duration, uuid.UUID or []any.
func Native(v IRValue) any {
	switch val := v.(type) {
	case nil, IRNull:
		return nil
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRFloat:
		return float64(val)
	case IRDecimal:
		return val.Decimal
	case IRBool:
		return bool(val)
	case IRDateTime:
		return time.Time(val)
	case IRDuration:
		return time.Duration(val)
	case IRGuid:
		return uuid.UUID(val)
	case IRSequence:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Native(elem)
		}
		return out
	default:
		return nil
	}
}

// Fits reports whether v is a constant of basic type t: the value family
// matches t's underlying kind. Null fits every basic type; sequences fit
// none.
func Fits(v IRValue, t *Type) bool {
	if !t.IsBasic() {
		return false
	}
	if IsNull(v) {
		return true
	}
	switch v.(type) {
	case IRString:
		return t.Is(KindString)
	case IRBool:
		return t.Is(KindBool)
	case IRInt:
		switch t.Underlying().Kind {
		case KindByte, KindSByte, KindInt16, KindUInt16, KindInt32, KindUInt32,
			KindInt64, KindUInt64, KindEnum:
			return true
		}
		return false
	case IRFloat:
		return t.Is(KindSingle) || t.Is(KindDouble)
	case IRDecimal:
		return t.Is(KindDecimal)
	case IRDateTime:
		return t.Is(KindDateTime) || t.Is(KindDateTimeOffset)
	case IRDuration:
		return t.Is(KindTimeSpan)
	case IRGuid:
		return t.Is(KindGuid)
	default:
		return false
	}
}
