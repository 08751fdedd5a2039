// Package base carries the shared pieces of every CLI command.
package base

import (
	"flag"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
)

// Command is embedded by every concrete command.
type Command struct {
	// Log is the root logger; commands derive named loggers from it.
	Log hclog.Logger

	// UI is the terminal the command talks to.
	UI cli.Ui
}

// NewCommand returns a base command.
func NewCommand(log hclog.Logger, ui cli.Ui) *Command {
	return &Command{Log: log, UI: ui}
}

// FlagSet wraps the standard flag set with help rendering that matches
// the rest of the CLI output.
type FlagSet struct {
	*flag.FlagSet
}

// NewFlagSet returns a named flag set that reports errors to the caller
// instead of exiting.
func NewFlagSet(name string) *FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	// Parse errors surface through the command's UI, not flag's default
	// stderr printing.
	f.Usage = func() {}
	return &FlagSet{FlagSet: f}
}

// Help renders the flag defaults as an indented block for command help
// text.
func (f *FlagSet) Help() string {
	var b strings.Builder
	b.WriteString("Options:\n\n")
	f.SetOutput(&b)
	f.PrintDefaults()
	return b.String()
}
