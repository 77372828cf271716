// Command blendpack renders shader transitions between frame clips.
package main

import (
	"fmt"
	"os"

	_ "github.com/silbinarywolf/preferdiscretegpu"

	_ "github.com/gogpu/blendpack/gpu/opengl" // registers the OpenGL backend
	"github.com/gogpu/blendpack/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "blendpack:", err)
		os.Exit(1)
	}
}
