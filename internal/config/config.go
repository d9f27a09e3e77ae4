// Package config loads the dialect configuration from CUE.
//
// A configuration document sets fields of the dialect struct:
//
//	dialect: {
//		release:       "2012"
//		caseSensitive: true
//		columnTypes: string: "nvarchar(100)"
//	}
//
// The document is unified with an embedded #Dialect schema, so unknown
// fields and out-of-range values are rejected with their CUE position.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// Config is a decoded dialect configuration.
type Config struct {
	Build         int
	CaseSensitive bool
	Collation     string
	// Parametric is false when constants should be rendered inline.
	Parametric  bool
	ColumnTypes map[ir.Kind]string
}

// document mirrors #Dialect for decoding.
type document struct {
	Build         *int              `json:"build,omitempty"`
	Release       string            `json:"release,omitempty"`
	CaseSensitive bool              `json:"caseSensitive"`
	Collation     string            `json:"collation"`
	Parametric    bool              `json:"parametric"`
	ColumnTypes   map[string]string `json:"columnTypes"`
}

// Error is a configuration error, positioned when CUE reports a position.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the configuration used when no document is given.
func Default() *Config {
	return &Config{
		Build:       dialect.DefaultBuild,
		Collation:   dialect.DefaultCollation,
		Parametric:  true,
		ColumnTypes: map[ir.Kind]string{},
	}
}

// Load reads and parses the CUE document at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(path, src)
}

// Parse parses a CUE document. filename is used in error positions.
func Parse(filename string, src []byte) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	doc := ctx.CompileBytes(src, cue.Filename(filename))
	if err := doc.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	dv := v.LookupPath(cue.ParsePath("dialect"))
	var d document
	if err := dv.Decode(&d); err != nil {
		return nil, formatCUEError(err)
	}
	return d.resolve(dv)
}

func (d *document) resolve(v cue.Value) (*Config, error) {
	cfg := Default()
	cfg.CaseSensitive = d.CaseSensitive
	cfg.Collation = d.Collation
	cfg.Parametric = d.Parametric

	if d.Release != "" {
		build, ok := dialect.ReleaseBuild(d.Release)
		if !ok {
			return nil, &Error{
				Field:   "release",
				Message: fmt.Sprintf("unknown release %q", d.Release),
				Pos:     v.LookupPath(cue.ParsePath("release")).Pos(),
			}
		}
		if d.Build != nil && !dialect.SameRelease(*d.Build, build) {
			return nil, &Error{
				Field:   "build",
				Message: fmt.Sprintf("build %d is not a build of release %q", *d.Build, d.Release),
				Pos:     v.LookupPath(cue.ParsePath("build")).Pos(),
			}
		}
		cfg.Build = build
	}
	if d.Build != nil {
		cfg.Build = *d.Build
	}

	// Sorted so the first reported error is stable.
	names := make([]string, 0, len(d.ColumnTypes))
	for name := range d.ColumnTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		kind, ok := ir.ParseKind(name)
		if !ok || !primitive(kind) {
			return nil, &Error{
				Field:   "columnTypes",
				Message: fmt.Sprintf("%q is not a primitive kind", name),
				Pos:     v.LookupPath(cue.MakePath(cue.Str("columnTypes"), cue.Str(name))).Pos(),
			}
		}
		cfg.ColumnTypes[kind] = d.ColumnTypes[name]
	}
	return cfg, nil
}

func primitive(k ir.Kind) bool {
	switch k {
	case ir.KindInvalid, ir.KindEnum, ir.KindNullable, ir.KindObject, ir.KindSequence:
		return false
	default:
		return true
	}
}

// Dialect builds the dialect described by c.
func (c *Config) Dialect() *dialect.Dialect {
	opts := []dialect.Option{
		dialect.WithCaseSensitive(c.CaseSensitive),
		dialect.WithCollation(c.Collation),
	}
	for kind, ct := range c.ColumnTypes {
		opts = append(opts, dialect.WithColumnType(kind, ct))
	}
	return dialect.New(c.Build, opts...)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Field: "cue", Message: err.Error()}
	}

	// Report the first error with its position
	first := errs[0]
	cfgErr := &Error{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		cfgErr.Pos = positions[0]
	}
	return cfgErr
}
