package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/dialect"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/ir"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse("dialect.cue", []byte(`dialect: {}`))
	require.NoError(t, err)

	assert.Equal(t, dialect.DefaultBuild, cfg.Build)
	assert.False(t, cfg.CaseSensitive)
	assert.Equal(t, dialect.DefaultCollation, cfg.Collation)
	assert.True(t, cfg.Parametric)
	assert.Empty(t, cfg.ColumnTypes)
}

func TestParse_AllFields(t *testing.T) {
	src := `
dialect: {
	build:         684
	caseSensitive: true
	collation:     "Latin1_General_CS_AS"
	parametric:    false
	columnTypes: {
		String:  "nvarchar(100)"
		decimal: "decimal(18,2)"
	}
}`
	cfg, err := Parse("dialect.cue", []byte(src))
	require.NoError(t, err)

	assert.Equal(t, 684, cfg.Build)
	assert.True(t, cfg.CaseSensitive)
	assert.Equal(t, "Latin1_General_CS_AS", cfg.Collation)
	assert.False(t, cfg.Parametric)
	assert.Equal(t, map[ir.Kind]string{
		ir.KindString:  "nvarchar(100)",
		ir.KindDecimal: "decimal(18,2)",
	}, cfg.ColumnTypes)
}

func TestParse_Release(t *testing.T) {
	cfg, err := Parse("dialect.cue", []byte(`dialect: release: "2008 R2"`))
	require.NoError(t, err)
	assert.Equal(t, 665, cfg.Build)

	cfg, err = Parse("dialect.cue", []byte(`dialect: {release: "2012", build: 684}`))
	require.NoError(t, err)
	assert.Equal(t, 684, cfg.Build)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"build below minimum", `dialect: build: 300`, "cue"},
		{"unknown field", `dialect: paging: "fast"`, "cue"},
		{"wrong type", `dialect: caseSensitive: "yes"`, "cue"},
		{"syntax", `dialect: {`, "cue"},
		{"unknown release", `dialect: release: "1999"`, "release"},
		{"contradicting build", `dialect: {release: "2012", build: 895}`, "build"},
		{"composite column type", `dialect: columnTypes: nullable: "int"`, "columnTypes"},
		{"unknown column type", `dialect: columnTypes: money: "money"`, "columnTypes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("dialect.cue", []byte(tt.src))
			require.Error(t, err)

			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr), "got %T: %v", err, err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("dialect.cue", []byte("dialect: {\n\tbuild: 300\n}"))
	require.Error(t, err)

	var cfgErr *Error
	require.True(t, errors.As(err, &cfgErr))
	require.True(t, cfgErr.Pos.IsValid())
	assert.Contains(t, err.Error(), "dialect.cue:")
}

func TestConfig_Dialect(t *testing.T) {
	cfg := Default()
	cfg.Build = dialect.BuildRowNumber
	cfg.CaseSensitive = true
	cfg.ColumnTypes[ir.KindString] = "nvarchar(50)"

	d := cfg.Dialect()
	assert.Equal(t, dialect.BuildRowNumber, d.Build)
	assert.Equal(t, dialect.PagingRowNumber, d.Paging())
	assert.Equal(t, "collate "+dialect.DefaultCollation, d.CollationMarker())

	ct, err := d.ColumnType(ir.String)
	require.NoError(t, err)
	assert.Equal(t, "nvarchar(50)", ct)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialect.cue")
	require.NoError(t, os.WriteFile(path, []byte(`dialect: release: "2017"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 869, cfg.Build)
	assert.True(t, cfg.Dialect().SupportsTrim())

	_, err = Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
}
