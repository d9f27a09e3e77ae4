// Package dialect describes the SQL Server instance a statement is compiled
// for: its build number (which gates iif, OFFSET/FETCH, row_number, set
// operators and trim), whether string comparisons are case sensitive, and how
// runtime types map to column types.
package dialect

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
)

// Build-number thresholds for dialect capabilities.
const (
	// BuildRowNumber is SQL Server 2005 SP2: row_number(), INTERSECT, EXCEPT.
	BuildRowNumber = 611
	// BuildOffsetFetch is SQL Server 2012: OFFSET/FETCH and iif().
	BuildOffsetFetch = 684
	// BuildTrim is SQL Server 2017: trim().
	BuildTrim = 868

	// DefaultBuild is SQL Server 2019.
	DefaultBuild = 895
)

// DefaultCollation is appended to string comparisons when case sensitivity
// is enabled.
const DefaultCollation = "Chinese_PRC_CS_AI"

// releases lists SQL Server releases oldest first. first is the lowest build
// number of the release; preset is the build a release name stands for.
var releases = []struct {
	name          string
	first, preset int
}{
	{"7", 515, 515},
	{"2000", 539, 539},
	{"2005", 611, 612},
	{"2008", 655, 655},
	{"2008r2", 661, 665},
	{"2012", 684, 706},
	{"2014", 782, 782},
	{"2016", 852, 852},
	{"2017", 868, 869},
	{"2019", 895, 902},
}

// ReleaseBuild returns the build number a release name stands for
// ("2012", "2008 R2", "SQL Server 2017").
func ReleaseBuild(release string) (int, bool) {
	key := cases.Fold().String(release)
	key = strings.TrimPrefix(strings.ReplaceAll(key, " ", ""), "sqlserver")
	for _, r := range releases {
		if r.name == key {
			return r.preset, true
		}
	}
	return 0, false
}

// SameRelease reports whether two build numbers belong to the same release.
// Builds older than SQL Server 7 belong to none.
func SameRelease(a, b int) bool {
	ra, rb := releaseOf(a), releaseOf(b)
	return ra != "" && ra == rb
}

func releaseOf(build int) string {
	name := ""
	for _, r := range releases {
		if build >= r.first {
			name = r.name
		}
	}
	return name
}

// PagingTier is the strategy used for a row window with a non-zero start.
type PagingTier int

const (
	// PagingTopOnly supports only a leading row count; offsets are rejected.
	PagingTopOnly PagingTier = iota + 1
	// PagingRowNumber wraps the query and filters on row_number().
	PagingRowNumber
	// PagingOffsetFetch uses OFFSET ... ROWS FETCH NEXT ... ROWS ONLY.
	PagingOffsetFetch
)

func (t PagingTier) String() string {
	switch t {
	case PagingTopOnly:
		return "top-only"
	case PagingRowNumber:
		return "row-number"
	case PagingOffsetFetch:
		return "offset-fetch"
	default:
		return fmt.Sprintf("PagingTier(%d)", int(t))
	}
}

// Dialect is the per-compilation descriptor. It is read-only once built and
// safe to share between goroutines.
type Dialect struct {
	// Build is the server's major build number (e.g. 684 for 2012).
	Build int
	// CaseSensitive makes string comparisons append the collation marker.
	CaseSensitive bool
	// Collation is the case-sensitive collation name.
	Collation string

	columnTypes map[ir.Kind]string
}

// Option configures a Dialect.
type Option func(*Dialect)

// WithCaseSensitive toggles case-sensitive string comparison.
func WithCaseSensitive(on bool) Option {
	return func(d *Dialect) { d.CaseSensitive = on }
}

// WithCollation overrides the case-sensitive collation name.
func WithCollation(name string) Option {
	return func(d *Dialect) { d.Collation = name }
}

// WithColumnType overrides the column type of a primitive kind.
func WithColumnType(kind ir.Kind, columnType string) Option {
	return func(d *Dialect) { d.columnTypes[kind] = columnType }
}

// New creates a dialect for build.
func New(build int, opts ...Option) *Dialect {
	d := &Dialect{
		Build:       build,
		Collation:   DefaultCollation,
		columnTypes: defaultColumnTypes(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Default returns a case-insensitive dialect for DefaultBuild.
func Default() *Dialect {
	return New(DefaultBuild)
}

// SupportsIIF reports whether iif() is available.
func (d *Dialect) SupportsIIF() bool { return d.Build >= BuildOffsetFetch }

// SupportsTrim reports whether trim() is available.
func (d *Dialect) SupportsTrim() bool { return d.Build >= BuildTrim }

// SupportsSetOperators reports whether INTERSECT and EXCEPT are available.
func (d *Dialect) SupportsSetOperators() bool { return d.Build >= BuildRowNumber }

// Paging returns the best strategy for offset pagination.
func (d *Dialect) Paging() PagingTier {
	switch {
	case d.Build >= BuildOffsetFetch:
		return PagingOffsetFetch
	case d.Build >= BuildRowNumber:
		return PagingRowNumber
	default:
		return PagingTopOnly
	}
}

// CollationMarker returns the text inserted after the left operand of a
// string comparison ("collate Chinese_PRC_CS_AI"), or "" when comparisons are
// case insensitive.
func (d *Dialect) CollationMarker() string {
	if !d.CaseSensitive {
		return ""
	}
	return "collate " + d.Collation
}

// QuoteName encodes a table, view or column name as [name].
func QuoteName(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// TableAlias returns the alias of the i-th FROM-tree leaf.
func TableAlias(i int) string { return fmt.Sprintf("T%d", i) }

// FieldAlias returns the alias of the i-th projected column.
func FieldAlias(i int) string { return fmt.Sprintf("F%d", i) }
