// Command drmcheck reports which DRM formats and modifiers a device can
// import as textures and render to.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "drmcheck: %s\n", err)
		os.Exit(1)
	}
}
