package queryir

import (
	"strings"

	"golang.org/x/text/cases"
)

// MethodID identifies a recognized method independent of how the upstream
// builder spells it. The compiler's translation table is keyed by MethodID.
type MethodID int

const (
	MethodUnknown MethodID = iota

	// String instance methods.
	StringIndexOf
	StringSubstring
	StringTrim
	StringTrimStart
	StringTrimEnd
	StringToUpper
	StringToLower
	StringStartsWith
	StringEndsWith
	StringContains
	StringReplace
	StringInsert
	// String static methods.
	StringIsNullOrEmpty
	StringIsNullOrWhiteSpace

	// ToString on any receiver; DateTime receivers accept a format.
	MethodToString

	MathRound
	MathFloor
	MathCeiling
	MathAbs
	MathPow

	// Aggregates.
	DBCount
	DBMax
	DBMin
	DBSum
	DBAvg
	DBStDev
	DBStDevP
	DBVar
	DBVarP

	// Server-side generators.
	DBNowTime
	DBNewGuid
	DBNewInt
	DBNewLong

	// Date arithmetic: DiffX(a, b) and AddX(date, n).
	DBDiffYear
	DBDiffMonth
	DBDiffDay
	DBDiffHour
	DBDiffMinute
	DBDiffSecond
	DBDiffMillisecond
	DBAddYear
	DBAddMonth
	DBAddDay
	DBAddHour
	DBAddMinute
	DBAddSecond
	DBAddMillisecond

	// Convert.ToXxx(x): the target is the node's DataType.
	MethodConvert
	// Xxx.Parse(s): the target is the node's DataType.
	MethodParse
)

// MemberID identifies a recognized property.
type MemberID int

const (
	MemberUnknown MemberID = iota
	StringLength
	DateTimeYear
	DateTimeMonth
	DateTimeDay
	DateTimeHour
	DateTimeMinute
	DateTimeSecond
	DateTimeMillisecond
	DateTimeDayOfYear
	DateTimeDate
	DateTimeTimeOfDay
	DateTimeNow
	DateTimeUtcNow
	DateTimeToday
	NullableHasValue
	NullableValue
)

var methodTable = map[string]MethodID{}
var memberTable = map[string]MemberID{}

func registryKey(declaring, name string) string {
	return cases.Fold().String(strings.TrimSpace(declaring) + "." + strings.TrimSpace(name))
}

func init() {
	methods := []struct {
		declaring string
		name      string
		id        MethodID
	}{
		{"String", "IndexOf", StringIndexOf},
		{"String", "Substring", StringSubstring},
		{"String", "Trim", StringTrim},
		{"String", "TrimStart", StringTrimStart},
		{"String", "TrimEnd", StringTrimEnd},
		{"String", "ToUpper", StringToUpper},
		{"String", "ToLower", StringToLower},
		{"String", "StartsWith", StringStartsWith},
		{"String", "EndsWith", StringEndsWith},
		{"String", "Contains", StringContains},
		{"String", "Replace", StringReplace},
		{"String", "Insert", StringInsert},
		{"String", "IsNullOrEmpty", StringIsNullOrEmpty},
		{"String", "IsNullOrWhiteSpace", StringIsNullOrWhiteSpace},
		{"Object", "ToString", MethodToString},
		{"Math", "Round", MathRound},
		{"Math", "Floor", MathFloor},
		{"Math", "Ceiling", MathCeiling},
		{"Math", "Abs", MathAbs},
		{"Math", "Pow", MathPow},
		{"DBFun", "Count", DBCount},
		{"DBFun", "Max", DBMax},
		{"DBFun", "Min", DBMin},
		{"DBFun", "Sum", DBSum},
		{"DBFun", "Avg", DBAvg},
		{"DBFun", "StDev", DBStDev},
		{"DBFun", "StDevP", DBStDevP},
		{"DBFun", "Var", DBVar},
		{"DBFun", "VarP", DBVarP},
		{"DBFun", "NowTime", DBNowTime},
		{"DBFun", "NewGuid", DBNewGuid},
		{"DBFun", "NewInt", DBNewInt},
		{"DBFun", "NewLong", DBNewLong},
		{"DBFun", "DiffYear", DBDiffYear},
		{"DBFun", "DiffMonth", DBDiffMonth},
		{"DBFun", "DiffDay", DBDiffDay},
		{"DBFun", "DiffHour", DBDiffHour},
		{"DBFun", "DiffMinute", DBDiffMinute},
		{"DBFun", "DiffSecond", DBDiffSecond},
		{"DBFun", "DiffMillisecond", DBDiffMillisecond},
		{"DBFun", "AddYear", DBAddYear},
		{"DBFun", "AddMonth", DBAddMonth},
		{"DBFun", "AddDay", DBAddDay},
		{"DBFun", "AddHour", DBAddHour},
		{"DBFun", "AddMinute", DBAddMinute},
		{"DBFun", "AddSecond", DBAddSecond},
		{"DBFun", "AddMillisecond", DBAddMillisecond},
	}
	for _, m := range methods {
		methodTable[registryKey(m.declaring, m.name)] = m.id
	}
	for _, target := range []string{"Int16", "Int32", "Int64", "Boolean", "Byte", "SByte", "Single", "Double", "Decimal", "DateTime", "String"} {
		methodTable[registryKey("Convert", "To"+target)] = MethodConvert
	}
	for _, declaring := range []string{"DateTime", "Int16", "Int32", "Int64", "Single", "Double", "Decimal", "Byte", "Boolean", "Guid"} {
		methodTable[registryKey(declaring, "Parse")] = MethodParse
	}

	members := []struct {
		declaring string
		name      string
		id        MemberID
	}{
		{"String", "Length", StringLength},
		{"DateTime", "Year", DateTimeYear},
		{"DateTime", "Month", DateTimeMonth},
		{"DateTime", "Day", DateTimeDay},
		{"DateTime", "Hour", DateTimeHour},
		{"DateTime", "Minute", DateTimeMinute},
		{"DateTime", "Second", DateTimeSecond},
		{"DateTime", "Millisecond", DateTimeMillisecond},
		{"DateTime", "DayOfYear", DateTimeDayOfYear},
		{"DateTime", "Date", DateTimeDate},
		{"DateTime", "TimeOfDay", DateTimeTimeOfDay},
		{"DateTime", "Now", DateTimeNow},
		{"DateTime", "UtcNow", DateTimeUtcNow},
		{"DateTime", "Today", DateTimeToday},
		{"Nullable", "HasValue", NullableHasValue},
		{"Nullable", "Value", NullableValue},
	}
	for _, m := range members {
		memberTable[registryKey(m.declaring, m.name)] = m.id
	}
}

// LookupMethod resolves a method by declaring type and name,
// case-insensitively. ToString resolves for every declaring type.
func LookupMethod(declaring, name string) MethodID {
	if id, ok := methodTable[registryKey(declaring, name)]; ok {
		return id
	}
	if id, ok := methodTable[registryKey("Object", name)]; ok {
		return id
	}
	return MethodUnknown
}

// LookupMember resolves a property by declaring type and name,
// case-insensitively.
func LookupMember(declaring, name string) MemberID {
	return memberTable[registryKey(declaring, name)]
}
