package main

import (
	"os"

	"limeal.fr/cobalt/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args[1:]))
}
