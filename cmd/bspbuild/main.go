// Command bspbuild is the offline BSP node builder's CLI entry point.
package main

import "doombsp/cmd/bspbuild/cmd"

func main() {
	cmd.Execute()
}
