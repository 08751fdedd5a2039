// Package version implements the version command.
package version

import (
	"github.com/eregs/regcore/internal/cmd/base"
	"github.com/eregs/regcore/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return "Usage: regcore version\n\n  Prints the binary version."
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
