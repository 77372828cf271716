package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gogpu/blendpack"
	"github.com/gogpu/blendpack/backend"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and registered backends",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blendpack %s (%s, %s/%s)\nbackends: %s (default %s)\n",
				blendpack.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH,
				strings.Join(backend.Available(), ", "), backend.DefaultName())
		},
	}
}
