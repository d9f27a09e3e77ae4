package ir

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Kind classifies a Type.
type Kind int

const (
	KindInvalid Kind = iota
	KindBool
	KindByte
	KindSByte
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindSingle
	KindDouble
	KindDecimal
	KindString
	KindDateTime
	KindDateTimeOffset
	KindTimeSpan
	KindGuid

	// KindEnum is a named enumeration stored as an integer.
	KindEnum
	// KindNullable wraps a basic type.
	KindNullable
	// KindObject is a composite shape (a projected record or a table row).
	KindObject
	// KindSequence is an in-memory list of constants, used by In/NotIn.
	KindSequence
)

var kindNames = map[Kind]string{
	KindBool:           "bool",
	KindByte:           "byte",
	KindSByte:          "sbyte",
	KindInt16:          "int16",
	KindUInt16:         "uint16",
	KindInt32:          "int32",
	KindUInt32:         "uint32",
	KindInt64:          "int64",
	KindUInt64:         "uint64",
	KindSingle:         "single",
	KindDouble:         "double",
	KindDecimal:        "decimal",
	KindString:         "string",
	KindDateTime:       "datetime",
	KindDateTimeOffset: "datetimeoffset",
	KindTimeSpan:       "timespan",
	KindGuid:           "guid",
	KindEnum:           "enum",
	KindNullable:       "nullable",
	KindObject:         "object",
	KindSequence:       "sequence",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// ParseKind resolves a kind name case-insensitively ("Int32", "int32").
func ParseKind(name string) (Kind, bool) {
	folded := cases.Fold().String(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == folded {
			return k, true
		}
	}
	return KindInvalid, false
}

// Type describes the declared type of an expression node.
//
// Primitive types are shared singletons (Int32, String, ...). Composite
// types are built with EnumOf, NullableOf, ObjectOf and SequenceOf.
// Compare types with Equal, not ==.
type Type struct {
	Kind Kind
	// Name is the enum or object shape name. Empty for primitives.
	Name string
	// Elem is the wrapped type for KindNullable and KindSequence.
	Elem *Type
}

var (
	Bool           = &Type{Kind: KindBool}
	Byte           = &Type{Kind: KindByte}
	SByte          = &Type{Kind: KindSByte}
	Int16          = &Type{Kind: KindInt16}
	UInt16         = &Type{Kind: KindUInt16}
	Int32          = &Type{Kind: KindInt32}
	UInt32         = &Type{Kind: KindUInt32}
	Int64          = &Type{Kind: KindInt64}
	UInt64         = &Type{Kind: KindUInt64}
	Single         = &Type{Kind: KindSingle}
	Double         = &Type{Kind: KindDouble}
	Decimal        = &Type{Kind: KindDecimal}
	String         = &Type{Kind: KindString}
	DateTime       = &Type{Kind: KindDateTime}
	DateTimeOffset = &Type{Kind: KindDateTimeOffset}
	TimeSpan       = &Type{Kind: KindTimeSpan}
	Guid           = &Type{Kind: KindGuid}
)

// EnumOf returns an enum type with the given name.
func EnumOf(name string) *Type {
	return &Type{Kind: KindEnum, Name: name}
}

// NullableOf wraps t. Wrapping a nullable returns it unchanged.
func NullableOf(t *Type) *Type {
	if t.Kind == KindNullable {
		return t
	}
	return &Type{Kind: KindNullable, Elem: t}
}

// ObjectOf returns a composite shape type.
func ObjectOf(name string) *Type {
	return &Type{Kind: KindObject, Name: name}
}

// SequenceOf returns the type of an in-memory constant list of elem.
func SequenceOf(elem *Type) *Type {
	return &Type{Kind: KindSequence, Elem: elem}
}

// Underlying strips a nullable wrapper.
func (t *Type) Underlying() *Type {
	if t != nil && t.Kind == KindNullable {
		return t.Elem
	}
	return t
}

// Is reports whether the underlying type has kind k.
func (t *Type) Is(k Kind) bool {
	u := t.Underlying()
	return u != nil && u.Kind == k
}

// IsBool reports whether values of t are booleans (nullable or not).
func (t *Type) IsBool() bool { return t.Is(KindBool) }

// IsString reports whether values of t are strings.
func (t *Type) IsString() bool { return t.Is(KindString) }

// IsBasic reports whether t can be stored in a single column: a primitive,
// an enum, or a nullable wrapper around one of those.
func (t *Type) IsBasic() bool {
	u := t.Underlying()
	if u == nil {
		return false
	}
	switch u.Kind {
	case KindInvalid, KindNullable, KindObject, KindSequence:
		return false
	default:
		return true
	}
}

// IsNumeric reports whether t is an integer, floating point or decimal type.
func (t *Type) IsNumeric() bool {
	u := t.Underlying()
	if u == nil {
		return false
	}
	switch u.Kind {
	case KindByte, KindSByte, KindInt16, KindUInt16, KindInt32, KindUInt32,
		KindInt64, KindUInt64, KindSingle, KindDouble, KindDecimal:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is an integral type. Enums are excluded.
func (t *Type) IsInteger() bool {
	u := t.Underlying()
	if u == nil {
		return false
	}
	switch u.Kind {
	case KindByte, KindSByte, KindInt16, KindUInt16, KindInt32, KindUInt32, KindInt64, KindUInt64:
		return true
	default:
		return false
	}
}

// Equal reports structural equality.
func (t *Type) Equal(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Name != o.Name {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == o.Elem
	}
	return t.Elem.Equal(o.Elem)
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindEnum, KindObject:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Name)
	case KindNullable, KindSequence:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Elem)
	default:
		return t.Kind.String()
	}
}

// ParseType parses the textual form produced by String. Primitive names are
// matched case-insensitively.
//
//	int32, nullable(int32), enum(Status), sequence(string), object(User)
func ParseType(s string) (*Type, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 {
		k, ok := ParseKind(s)
		if !ok || k >= KindEnum {
			return nil, fmt.Errorf("unknown type %q", s)
		}
		return primitive(k), nil
	}
	if !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("malformed type %q", s)
	}
	outer, inner := s[:open], s[open+1:len(s)-1]
	k, ok := ParseKind(outer)
	if !ok {
		return nil, fmt.Errorf("unknown type constructor %q", outer)
	}
	switch k {
	case KindEnum:
		return EnumOf(inner), nil
	case KindObject:
		return ObjectOf(inner), nil
	case KindNullable, KindSequence:
		elem, err := ParseType(inner)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", outer, err)
		}
		if k == KindNullable {
			return NullableOf(elem), nil
		}
		return SequenceOf(elem), nil
	default:
		return nil, fmt.Errorf("type %q takes no argument", outer)
	}
}

func primitive(k Kind) *Type {
	switch k {
	case KindBool:
		return Bool
	case KindByte:
		return Byte
	case KindSByte:
		return SByte
	case KindInt16:
		return Int16
	case KindUInt16:
		return UInt16
	case KindInt32:
		return Int32
	case KindUInt32:
		return UInt32
	case KindInt64:
		return Int64
	case KindUInt64:
		return UInt64
	case KindSingle:
		return Single
	case KindDouble:
		return Double
	case KindDecimal:
		return Decimal
	case KindString:
		return String
	case KindDateTime:
		return DateTime
	case KindDateTimeOffset:
		return DateTimeOffset
	case KindTimeSpan:
		return TimeSpan
	case KindGuid:
		return Guid
	default:
		return &Type{Kind: k}
	}
}
