package main

import (
	"github.com/jgathje/framesink/cmdmain"

	_ "github.com/jgathje/framesink/subcmd"
)

func main() {
	cmdmain.Main()
}
