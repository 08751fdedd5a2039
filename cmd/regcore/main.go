package main

import (
	"os"

	"github.com/eregs/regcore/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
