package clicommand

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli"

	"github.com/loomworks/loom/actions"
)

const actionsHelpDescription = `Usage:

    loom actions [options] [name]

Description:

Lists the actions in the built-in catalog, with the version each is pinned
to. Given the name of an action, lists the inputs it accepts instead.

Example:

    $ loom actions
    $ loom actions upload-artifact
    $ loom actions --markdown`

type ActionsConfig struct {
	GlobalConfig

	Name     string `cli:"arg:0" label:"action name"`
	Markdown bool   `cli:"markdown"`
}

var ActionsCommand = cli.Command{
	Name:        "actions",
	Usage:       "List the built-in action catalog",
	Description: actionsHelpDescription,
	Flags: append(globalFlags(),
		cli.BoolFlag{
			Name:  "markdown",
			Usage: "Print the table as Markdown",
		},
	),
	Action: func(c *cli.Context) error {
		_, cfg, _, _, err := setupLoggerAndConfig[ActionsConfig](context.Background(), c)
		if err != nil {
			return err
		}

		if cfg.Name == "" {
			PrintCatalog(outWriter(c), actions.Catalog(), cfg.Markdown)
			return nil
		}

		spec, ok := actions.Lookup(cfg.Name)
		if !ok {
			return fmt.Errorf("unknown action %q; run `%s actions` for the list", cfg.Name, c.App.Name)
		}
		PrintInputs(outWriter(c), spec, cfg.Markdown)
		return nil
	},
}

// PrintCatalog writes a table of specs to w.
func PrintCatalog(w io.Writer, specs []*actions.Spec, markdown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Uses", "Description"})
	for _, s := range specs {
		t.AppendRow(table.Row{s.Name, s.Uses + "@" + s.Ref, s.Description})
	}
	render(t, markdown)
}

// PrintInputs writes a table of the inputs spec accepts to w.
func PrintInputs(w io.Writer, spec *actions.Spec, markdown bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(spec.Uses + "@" + spec.Ref)
	t.AppendHeader(table.Row{"Input", "Key", "Type", "Required", "Allowed"})
	for _, f := range spec.Schema {
		var allowed string
		switch {
		case len(f.Choices) > 0:
			allowed = strings.Join(f.Choices, ", ")
		case f.Range != nil:
			allowed = f.Range.String()
		}
		required := ""
		if f.Required {
			required = "yes"
		}
		t.AppendRow(table.Row{f.Name, f.WithKey(), f.Kind.String(), required, allowed})
	}
	render(t, markdown)
}

func render(t table.Writer, markdown bool) {
	if markdown {
		t.RenderMarkdown()
		return
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
