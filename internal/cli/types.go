package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// TypeMapping is one runtime kind and the column type it maps to.
type TypeMapping struct {
	Kind       string `json:"kind"`
	ColumnType string `json:"columnType"`
}

// NewTypesCommand creates the types command.
func NewTypesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "types",
		Short:         "List the runtime type to column type table",
		Long:          "List the column type each runtime kind maps to under the configured dialect. Enums map to the int32 column type.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes(rootOpts, cmd)
		},
	}
}

func runTypes(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	cfg, err := opts.loadConfig()
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeConfig, "invalid dialect configuration", err.Error())
	}

	var mappings []TypeMapping
	for kind, columnType := range cfg.Dialect().ColumnTypes() {
		mappings = append(mappings, TypeMapping{Kind: kind.String(), ColumnType: columnType})
	}
	sort.Slice(mappings, func(i, j int) bool { return mappings[i].Kind < mappings[j].Kind })

	if opts.Format == "json" {
		return formatter.Success(mappings)
	}
	var b strings.Builder
	for _, m := range mappings {
		fmt.Fprintf(&b, "%-16s %s\n", m.Kind, m.ColumnType)
	}
	return formatter.Success(b.String())
}
