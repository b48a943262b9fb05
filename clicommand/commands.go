package clicommand

import "github.com/urfave/cli"

// LoomCommands are the subcommands of loom, in help order.
var LoomCommands = []cli.Command{
	RunCommand,
	ValidateCommand,
	ParseCommand,
	ActionsCommand,
}
