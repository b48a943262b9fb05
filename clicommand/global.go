package clicommand

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/oleiade/reflections"
	"github.com/urfave/cli"

	"github.com/loomworks/loom/cliconfig"
	"github.com/loomworks/loom/logger"
)

var DebugFlag = cli.BoolFlag{
	Name:   "debug",
	Usage:  "Enable debug mode. Synonym for --log-level debug, and takes precedence over it",
	EnvVar: "LOOM_DEBUG",
}

var LogLevelFlag = cli.StringFlag{
	Name:   "log-level",
	Value:  "notice",
	Usage:  "Set the log level for loom. Possible values are: \"debug\", \"info\", \"notice\", \"warn\", \"error\", \"fatal\"",
	EnvVar: "LOOM_LOG_LEVEL",
}

var LogFormatFlag = cli.StringFlag{
	Name:   "log-format",
	Value:  "text",
	Usage:  "The format to use for the logger output, either \"text\" or \"json\"",
	EnvVar: "LOOM_LOG_FORMAT",
}

var NoColorFlag = cli.BoolFlag{
	Name:   "no-color",
	Usage:  "Don't show colors in logging",
	EnvVar: "LOOM_NO_COLOR",
}

var ConfigFlag = cli.StringFlag{
	Name:   "config",
	Usage:  "Path to a loom configuration file",
	EnvVar: "LOOM_CONFIG",
}

// GlobalConfig holds the flags every command accepts.
type GlobalConfig struct {
	Debug     bool   `cli:"debug"`
	LogLevel  string `cli:"log-level"`
	LogFormat string `cli:"log-format"`
	NoColor   bool   `cli:"no-color"`
	Config    string `cli:"config"`
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		DebugFlag,
		LogLevelFlag,
		LogFormatFlag,
		NoColorFlag,
		ConfigFlag,
	}
}

// DefaultConfigFilePaths returns the config files tried, in order, when
// --config isn't given.
func DefaultConfigFilePaths() []string {
	paths := []string{"loom.cfg"}
	if runtime.GOOS == "windows" {
		paths = append(paths, "$USERPROFILE\\AppData\\Local\\Loom\\loom.cfg")
	} else {
		paths = append(paths, "$HOME/.loom/loom.cfg", "/etc/loom/loom.cfg")
	}

	// Also check the directory the binary lives in.
	if dir, err := filepath.Abs(filepath.Dir(os.Args[0])); err == nil {
		paths = append(paths, filepath.Join(dir, "loom.cfg"))
	}
	return paths
}

// CreateLogger builds a logger writing to w according to the global flags
// in cfg.
func CreateLogger(cfg any, w io.Writer) (logger.Logger, error) {
	format, _ := reflections.GetField(cfg, "LogFormat")

	var printer logger.Printer
	switch format {
	case "", "text":
		tp := logger.NewTextPrinter(w)
		if noColor, err := reflections.GetField(cfg, "NoColor"); err == nil && noColor == true {
			tp.Colors = false
		}
		printer = tp
	case "json":
		printer = logger.NewJSONPrinter(w)
	default:
		return nil, fmt.Errorf("invalid log format %q; only 'text' or 'json' are allowed", format)
	}

	l := logger.NewConsoleLogger(printer, os.Exit)

	if level, err := reflections.GetField(cfg, "LogLevel"); err == nil && level != "" {
		lvl, err := logger.LevelFromString(fmt.Sprint(level))
		if err != nil {
			return nil, err
		}
		l.SetLevel(lvl)
	}
	if debug, err := reflections.GetField(cfg, "Debug"); err == nil && debug == true {
		l.SetLevel(logger.DEBUG)
	}
	return l, nil
}

// setupLoggerAndConfig loads the command's config and creates its logger.
func setupLoggerAndConfig[T any](ctx context.Context, c *cli.Context) (context.Context, T, logger.Logger, *cliconfig.File, error) {
	var cfg T
	loader := cliconfig.Loader{
		CLI:                    c,
		Config:                 &cfg,
		DefaultConfigFilePaths: DefaultConfigFilePaths(),
	}
	if err := loader.Load(); err != nil {
		return ctx, cfg, nil, nil, err
	}

	l, err := CreateLogger(&cfg, errWriter(c))
	if err != nil {
		return ctx, cfg, nil, nil, err
	}

	if loader.File != nil {
		l.Debug("Loaded config file %s", loader.File.Path)
	}
	return ctx, cfg, l, loader.File, nil
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

func outWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}
