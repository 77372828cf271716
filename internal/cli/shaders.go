package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"

	"github.com/gogpu/blendpack/internal/glsl"
)

var fold = cases.Fold()

// NewShadersCommand creates the shaders command.
func NewShadersCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "shaders",
		Short: "List the keys of the shader library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := rootOpts.Library()
			want := fold.String(filter)
			n := 0
			for _, key := range lib.Registry.Keys() {
				if want != "" && !strings.Contains(fold.String(key), want) {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), key)
				n++
			}
			if n == 0 && filter != "" {
				return fmt.Errorf("no shader matches %q", filter)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only list keys containing this text")
	return cmd
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transpile <key>",
		Short: "Print the GLSL 3.30 fragment program compiled for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib := rootOpts.Library()
			def, ok := lib.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown shader %q", args[0])
			}
			src, strategy := glsl.Fragment(glsl.Header(lib.CommonCode()), def.Fragment)
			fmt.Fprintf(cmd.OutOrStdout(), "// %s: %s strategy\n%s\n", def.Key, strategy, src)
			return nil
		},
	}
}
