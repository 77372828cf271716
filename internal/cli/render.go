package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gogpu/blendpack"
	"github.com/gogpu/blendpack/frames"
	"github.com/gogpu/blendpack/settings"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	ClipA      string
	ClipB      string
	Settings   string
	Backend    string
	Out        string
	AssetTemp  string
	AssetInput string
	NoFallback bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a transition between two clips",
		Long: `Render the transition from clip A to clip B.

Writes frame_NNNNN.png and mask_NNNNN.png for every output frame and an
info.json describing the run to the output directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ClipA, "a", "", "clip A (image directory, GIF or image)")
	cmd.Flags().StringVar(&opts.ClipB, "b", "", "clip B (image directory, GIF or image)")
	cmd.Flags().StringVar(&opts.Settings, "settings", "", "YAML or JSON settings file")
	cmd.Flags().StringVar(&opts.Backend, "backend", "", "render backend (default: best available)")
	cmd.Flags().StringVar(&opts.Out, "out", "", "output directory")
	cmd.Flags().StringVar(&opts.AssetTemp, "asset-temp", "", "directory for pre-rendered frames of type temp")
	cmd.Flags().StringVar(&opts.AssetInput, "asset-input", "", "directory for pre-rendered frames of type input")
	cmd.Flags().BoolVar(&opts.NoFallback, "no-fallback", false, "fail instead of retrying on the software backend")
	_ = cmd.MarkFlagRequired("a")
	_ = cmd.MarkFlagRequired("b")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runRender(rootOpts *RootOptions, opts *RenderOptions, cmd *cobra.Command) error {
	s := settings.Default()
	if opts.Settings != "" {
		var err error
		if s, err = settings.Load(opts.Settings); err != nil {
			return err
		}
	}

	a, err := frames.LoadClip(opts.ClipA)
	if err != nil {
		return fmt.Errorf("clip A: %w", err)
	}
	b, err := frames.LoadClip(opts.ClipB)
	if err != nil {
		return fmt.Errorf("clip B: %w", err)
	}

	j := blendpack.NewJoiner(
		blendpack.WithLibrary(rootOpts.Library()),
		blendpack.WithBackend(opts.Backend),
		blendpack.WithAssetDirs(opts.AssetTemp, opts.AssetInput),
		blendpack.WithSoftwareFallback(!opts.NoFallback),
	)
	defer j.Close()

	out, err := j.Blend(a, b, s)
	if err != nil {
		return err
	}
	return writeOutput(opts.Out, out, cmd)
}

func writeOutput(dir string, out *blendpack.Output, cmd *cobra.Command) error {
	if err := frames.WritePNGs(dir, "frame", out.Frames); err != nil {
		return err
	}
	if err := frames.WritePNGs(dir, "mask", out.Masks); err != nil {
		return err
	}
	info, err := out.Info.JSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "info.json"), append(info, '\n'), 0o644); err != nil {
		return fmt.Errorf("write info: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d frames (%s) via %s, shader %s -> %s\n",
		out.Info.FrameCount, out.Info.OutputRes, out.Info.Backend, out.Info.ShaderUsed, dir)
	return nil
}
