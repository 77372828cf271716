// Package cli implements the blendpack command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/blendpack"
	"github.com/gogpu/blendpack/shader"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Corpus  string // shader corpus directory; empty for the embedded one
}

// Library returns the shader library selected by the flags.
func (o *RootOptions) Library() *shader.Library {
	if o.Corpus == "" {
		return shader.Stock()
	}
	return shader.LoadDir(o.Corpus)
}

// NewRootCommand creates the root command for the blendpack CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "blendpack",
		Short: "GPU transitions between frame clips",
		Long: `Render shader-driven transitions between two frame clips.

Clips are directories of still images, animated GIFs or single images.
Transitions come from the embedded shader library or a corpus directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Verbose {
				blendpack.SetLogger(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")
	cmd.PersistentFlags().StringVar(&opts.Corpus, "corpus", "", "shader corpus directory (default: embedded library)")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewShadersCommand(opts))
	cmd.AddCommand(NewTranspileCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
