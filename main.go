//go:build ignore

// This file is kept out of the orbsound package that shares its directory;
// run the CLI by naming it: go run main.go
package main

import cmd "github.com/mabysh/orb-sound-system/cmd/orb-sound-system"

func main() {
	cmd.Execute()
}
