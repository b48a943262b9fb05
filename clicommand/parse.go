package clicommand

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/loomworks/loom/internal/stdin"
	"github.com/loomworks/loom/internal/yamltojson"
)

const parseHelpDescription = `Usage:

    loom parse [options] [file]

Description:

Converts a YAML workflow file to JSON, resolving anchors, aliases and merge
keys. Reads from stdin when no file is given. Useful for piping a workflow
into tools such as jq.

Example:

    $ loom parse .github/workflows/ci.yml | jq '.jobs | keys'
    $ cat ci.yml | loom parse --pretty`

type ParseConfig struct {
	GlobalConfig

	File   string `cli:"arg:0" validate:"file-exists" label:"workflow file"`
	Pretty bool   `cli:"pretty"`
}

var ParseCommand = cli.Command{
	Name:        "parse",
	Usage:       "Convert a workflow file from YAML to JSON",
	Description: parseHelpDescription,
	Flags: append(globalFlags(),
		cli.BoolFlag{
			Name:  "pretty",
			Usage: "Indent the JSON output",
		},
	),
	Action: func(c *cli.Context) error {
		_, cfg, l, _, err := setupLoggerAndConfig[ParseConfig](context.Background(), c)
		if err != nil {
			return err
		}

		var input []byte
		switch {
		case cfg.File != "":
			l.Debug("Reading workflow from %q", cfg.File)
			if input, err = os.ReadFile(cfg.File); err != nil {
				return fmt.Errorf("reading %s: %w", cfg.File, err)
			}
		case stdin.IsReadable():
			l.Debug("Reading workflow from STDIN")
			if input, err = io.ReadAll(os.Stdin); err != nil {
				return fmt.Errorf("reading from STDIN: %w", err)
			}
		default:
			return errors.New("no workflow given; pass a file or pipe one to STDIN")
		}

		return ParseWorkflow(outWriter(c), input, cfg.Pretty)
	},
}

// ParseWorkflow converts a YAML workflow to JSON and writes it to w followed
// by a newline.
func ParseWorkflow(w io.Writer, input []byte, pretty bool) error {
	if len(bytes.TrimSpace(input)) == 0 {
		return errors.New("workflow is empty")
	}

	js, err := yamltojson.Convert(input)
	if err != nil {
		return fmt.Errorf("parsing workflow: %w", err)
	}

	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, js, "", "  "); err != nil {
			return fmt.Errorf("formatting JSON: %w", err)
		}
		js = buf.Bytes()
	}
	js = append(js, '\n')

	_, err = w.Write(js)
	return err
}
