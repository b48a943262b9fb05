// loom generates GitHub Actions workflow files from Go definition programs.
//
// Running loom with no command runs the definition program, see
// `loom run --help`.
package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/loomworks/loom/clicommand"
	"github.com/loomworks/loom/version"
)

const appHelpTemplate = `Usage:

  {{.Name}} <command> [options...]

Available commands are:

  {{range .Commands}}{{.Name}}{{with .ShortName}}, {{.}}{{end}}{{ "\t" }}{{.Usage}}
  {{end}}
Use "{{.Name}} <command> --help" for more information about a command.

`

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cli.AppHelpTemplate = appHelpTemplate

	app := newApp()
	return clicommand.PrintMessageAndReturnExitCode(app.ErrWriter, app.Run(args))
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "loom"
	app.Usage = "Generate GitHub Actions workflows from Go"
	app.Version = version.Full()
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	app.Commands = clicommand.LoomCommands

	// With no command, behave like `loom run`.
	app.Flags = clicommand.RunCommand.Flags
	app.Action = clicommand.RunCommand.Action
	return app
}
