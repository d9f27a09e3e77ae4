package fixture

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/config"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
)

// Fixture describes one statement in YAML: the tables it touches and the
// statement tree built over them. Fixtures drive the golden tests and the
// compile command.
type Fixture struct {
	// Name uniquely identifies this fixture.
	Name string `yaml:"name"`

	// Description explains what this fixture exercises.
	Description string `yaml:"description"`

	// Dialect overrides the compiler settings for this fixture.
	Dialect *DialectOverride `yaml:"dialect,omitempty"`

	// Tables declares every table or view the statement references. Each
	// table is bound to exactly one alias.
	Tables []TableDef `yaml:"tables"`

	// Statement is the statement tree. It is kept as a node so that scalar
	// tags (18 vs "18") and line numbers survive until Build.
	Statement yaml.Node `yaml:"statement"`
}

// DialectOverride pins compiler settings a fixture depends on.
type DialectOverride struct {
	Build         int  `yaml:"build,omitempty"`
	CaseSensitive bool `yaml:"caseSensitive,omitempty"`
	Inline        bool `yaml:"inline,omitempty"`
}

// TableDef declares a table leaf and its column types.
type TableDef struct {
	Name  string `yaml:"name"`
	Alias string `yaml:"alias"`
	View  bool   `yaml:"view,omitempty"`

	// Columns maps column names to type names as accepted by ir.ParseType
	// (int32, nullable(string), enum(Status), ...).
	Columns map[string]string `yaml:"columns"`
}

// Configure applies the fixture's dialect overrides to cfg.
func (f *Fixture) Configure(cfg *config.Config) {
	if f.Dialect == nil {
		return
	}
	if f.Dialect.Build != 0 {
		cfg.Build = f.Dialect.Build
	}
	if f.Dialect.CaseSensitive {
		cfg.CaseSensitive = true
	}
	if f.Dialect.Inline {
		cfg.Parametric = false
	}
}

// Error is a fixture error tied to a position in the YAML source.
type Error struct {
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

func errorAt(n *yaml.Node, format string, args ...any) *Error {
	e := &Error{Message: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

// Load reads and parses a fixture YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse parses fixture YAML.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateFixture(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

// validateFixture checks the declarations. The statement tree is checked
// by Build.
func validateFixture(f *Fixture) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if f.Statement.Kind == 0 {
		return fmt.Errorf("statement is required")
	}

	aliases := make(map[string]bool)
	for i, t := range f.Tables {
		if t.Name == "" {
			return fmt.Errorf("tables[%d]: name is required", i)
		}
		if t.Alias == "" {
			return fmt.Errorf("tables[%d] (%s): alias is required", i, t.Name)
		}
		if aliases[t.Alias] {
			return fmt.Errorf("tables[%d] (%s): alias %q is already bound", i, t.Name, t.Alias)
		}
		aliases[t.Alias] = true
		for col, typ := range t.Columns {
			parsed, err := ir.ParseType(typ)
			if err != nil {
				return fmt.Errorf("tables[%d] (%s): column %s: %w", i, t.Name, col, err)
			}
			if !parsed.IsBasic() {
				return fmt.Errorf("tables[%d] (%s): column %s: %s is not a column type", i, t.Name, col, parsed)
			}
		}
	}
	return nil
}
