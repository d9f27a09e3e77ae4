package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/a907638015/GfdbFramework.SqlServer/internal/config"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/fixture"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/querysql"
	"github.com/a907638015/GfdbFramework.SqlServer/internal/sqlerr"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Build         int
	CaseSensitive bool
	Inline        bool
}

// CompiledStatement is the JSON payload of a successful compile.
type CompiledStatement struct {
	Name       string          `json:"name"`
	SQL        string          `json:"sql"`
	Parameters []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes one bound parameter.
type ParameterInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <fixture.yaml>",
		Short: "Compile a statement fixture to T-SQL",
		Long: `Compile the statement described by a YAML fixture to T-SQL.

The dialect comes from --config (or the defaults), then the fixture's own
dialect block, then any of --build, --case-sensitive and --inline given on
the command line.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Build, "build", 0, "SQL Server build number (e.g. 611 for 2005, 684 for 2012)")
	cmd.Flags().BoolVar(&opts.CaseSensitive, "case-sensitive", false, "emit a case-sensitive collation marker on string comparisons")
	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "render constants as literals instead of parameters")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	logger := opts.logger(cmd.ErrOrStderr())

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid dialect configuration", err.Error())
	}

	f, err := fixture.Load(path)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeFixture, "invalid fixture", err.Error())
	}
	// Command-line flags win over the fixture's own overrides.
	f.Configure(cfg)
	if err := applyFlags(opts, cmd, cfg); err != nil {
		return formatter.fail(ExitCommandError, ErrCodeFlags, err.Error(), nil)
	}
	f.Dialect = nil

	logger.Debug("compiling fixture",
		"name", f.Name,
		"build", cfg.Build,
		"paging", cfg.Dialect().Paging().String(),
		"parametric", cfg.Parametric)

	res, err := f.Compile(*cfg, querysql.WithLogger(logger))
	if err != nil {
		var fe *fixture.Error
		if errors.As(err, &fe) {
			return formatter.fail(ExitCommandError, ErrCodeFixture, "invalid statement", err.Error())
		}
		var se *sqlerr.Error
		if errors.As(err, &se) {
			return formatter.fail(ExitFailure, string(se.Code), se.Message, se.Construct)
		}
		return formatter.fail(ExitFailure, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Format == "json" {
		return formatter.Success(toCompiledStatement(res))
	}
	return formatter.Success(res.Text())
}

func applyFlags(opts *CompileOptions, cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("build") {
		if opts.Build <= 0 {
			return fmt.Errorf("--build must be positive, got %d", opts.Build)
		}
		cfg.Build = opts.Build
	}
	if flags.Changed("case-sensitive") {
		cfg.CaseSensitive = opts.CaseSensitive
	}
	if flags.Changed("inline") {
		cfg.Parametric = !opts.Inline
	}
	return nil
}

func toCompiledStatement(res *fixture.Result) CompiledStatement {
	out := CompiledStatement{
		Name:       res.Name,
		SQL:        res.SQL,
		Parameters: make([]ParameterInfo, 0, len(res.Parameters)),
	}
	for _, p := range res.Parameters {
		typ := "unknown"
		if p.Type != nil {
			typ = p.Type.String()
		}
		out.Parameters = append(out.Parameters, ParameterInfo{
			Name:  p.Name,
			Type:  typ,
			Value: p.Native(),
		})
	}
	return out
}
