// Package cliconfig loads command configuration from flags, environment
// variables and an optional config file into tagged structs.
package cliconfig

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/oleiade/reflections"
	"github.com/urfave/cli"

	"github.com/loomworks/loom/internal/osutil"
)

// Loader fills Config from a urfave/cli context and a config file.
//
// Fields of Config are matched by struct tags:
//
//	cli:"name"          flag name, or arg:N / arg:* for positional arguments
//	env:"NAME"          fallback for a missing positional argument
//	normalize:"filepath" expands ~ and environment variables, then makes the path absolute
//	validate:"..."       comma separated rules: required, file-exists
//	label:"..."          name used in validation errors
type Loader struct {
	CLI    *cli.Context
	Config any

	// DefaultConfigFilePaths are tried in order when --config isn't given.
	DefaultConfigFilePaths []string

	// File is the config file that was loaded, if any.
	File *File
}

var argCLINameRE = regexp.MustCompile(`^arg:(\d+|\*)$`)

// tags holds the loader tags of one field of Config.
type tags struct {
	field     string
	cli       string
	env       string
	normalize string
	validate  string
	label     string
}

func (l *Loader) tagsFor(field string) tags {
	get := func(key string) string {
		v, _ := reflections.GetFieldTag(l.Config, field, key)
		return v
	}
	t := tags{
		field:     field,
		cli:       get("cli"),
		env:       get("env"),
		normalize: get("normalize"),
		validate:  get("validate"),
		label:     get("label"),
	}
	if t.label == "" && !argCLINameRE.MatchString(t.cli) {
		t.label = t.cli
	}
	if t.label == "" {
		t.label = field
	}
	return t
}

// Load populates Config. Flags given on the command line or through their
// environment variables win over the config file, which wins over flag
// defaults.
func (l *Loader) Load() error {
	if err := l.findFile(); err != nil {
		return err
	}
	if l.File != nil {
		if err := l.File.Load(); err != nil {
			return fmt.Errorf("loading config file: %w", err)
		}
	}

	names, err := reflections.FieldsDeep(l.Config)
	if err != nil {
		return fmt.Errorf("listing config fields: %w", err)
	}

	for _, name := range names {
		t := l.tagsFor(name)

		if t.cli != "" {
			if err := l.assign(t); err != nil {
				return fmt.Errorf("setting config field %s: %w", name, err)
			}
		}
		if t.normalize != "" {
			if err := l.normalize(t); err != nil {
				return fmt.Errorf("normalizing config field %s: %w", name, err)
			}
		}
		if t.validate != "" {
			if err := l.check(t); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) findFile() error {
	if path := l.CLI.String("config"); path != "" {
		f := &File{Path: path}
		if !f.Exists() {
			abs, _ := f.AbsolutePath()
			return fmt.Errorf("a configuration file could not be found at: %q", abs)
		}
		l.File = f
		return nil
	}

	i := slices.IndexFunc(l.DefaultConfigFilePaths, func(p string) bool {
		return (&File{Path: p}).Exists()
	})
	if i >= 0 {
		l.File = &File{Path: l.DefaultConfigFilePaths[i]}
	}
	return nil
}

// assign sets a field from a positional argument, or from the config file
// and the flag of the same name.
func (l *Loader) assign(t tags) error {
	kind, err := reflections.GetFieldKind(l.Config, t.field)
	if err != nil {
		return fmt.Errorf("getting the kind of struct field %q: %w", t.field, err)
	}

	var value any
	if m := argCLINameRE.FindStringSubmatch(t.cli); m != nil {
		value = l.positional(t, m[1])
	} else {
		if raw, ok := l.fileValue(t.cli); ok {
			if value, err = parseValue(kind, raw); err != nil {
				return err
			}
		}
		if value == nil || l.flagIsSet(t.cli) {
			if value, err = l.flagValue(kind, t.cli); err != nil {
				return err
			}
		}
	}

	if value == nil {
		return nil
	}
	if err := reflections.SetField(l.Config, t.field, value); err != nil {
		return fmt.Errorf("setting value field %q to %q: %w", t.field, value, err)
	}
	return nil
}

func (l *Loader) positional(t tags, index string) any {
	args := l.CLI.Args()
	if index == "*" {
		return []string(args)
	}
	if i, _ := strconv.Atoi(index); i < len(args) {
		return args[i]
	}
	if t.env != "" {
		if v, ok := os.LookupEnv(t.env); ok {
			return v
		}
	}
	return nil
}

func (l *Loader) fileValue(name string) (string, bool) {
	if l.File == nil {
		return "", false
	}
	v, ok := l.File.Config[name]
	return v, ok
}

func (l *Loader) flagValue(kind reflect.Kind, name string) (any, error) {
	switch kind {
	case reflect.String:
		return l.CLI.String(name), nil
	case reflect.Slice:
		return l.CLI.StringSlice(name), nil
	case reflect.Bool:
		return l.CLI.Bool(name), nil
	case reflect.Int:
		return l.CLI.Int(name), nil
	}
	return nil, fmt.Errorf("unable to handle type: %s", kind)
}

// parseValue converts a config file value to the kind of its field. Lists
// are comma separated.
func parseValue(kind reflect.Kind, raw string) (any, error) {
	switch kind {
	case reflect.String:
		return raw, nil
	case reflect.Slice:
		return strings.Split(raw, ","), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as a boolean: %w", raw, err)
		}
		return b, nil
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %q as an integer: %w", raw, err)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unable to convert string to type %s", kind)
}

// Errorf returns an error pointing the user at the command's help.
func (l *Loader) Errorf(format string, v ...any) error {
	return fmt.Errorf(format+" See: `%s %s --help`", append(v, l.CLI.App.Name, l.CLI.Command.Name)...)
}

// flagIsSet reports whether the flag was given on the command line or
// through its environment variable. cli.Context.IsSet only knows about the
// command line.
func (l *Loader) flagIsSet(name string) bool {
	if l.CLI.IsSet(name) || l.CLI.GlobalIsSet(name) {
		return true
	}

	flags := l.CLI.Command.Flags
	if l.CLI.App != nil {
		flags = slices.Concat(flags, l.CLI.App.Flags)
	}
	for _, f := range flags {
		if n, _ := reflections.GetField(f, "Name"); n != name {
			continue
		}
		envVar, _ := reflections.GetField(f, "EnvVar")
		s, _ := envVar.(string)
		for env := range strings.SplitSeq(s, ",") {
			if env = strings.TrimSpace(env); env != "" && os.Getenv(env) != "" {
				return true
			}
		}
	}
	return false
}

func (l *Loader) isEmpty(field string) bool {
	value, _ := reflections.GetField(l.Config, field)
	v := reflect.ValueOf(value)
	switch {
	case !v.IsValid():
		return true
	case v.Kind() == reflect.Slice:
		return v.Len() == 0
	}
	return v.IsZero()
}

func (l *Loader) check(t tags) error {
	for rule := range strings.SplitSeq(t.validate, ",") {
		switch rule {
		case "required":
			if l.isEmpty(t.field) {
				return l.Errorf("Missing %s.", t.label)
			}

		case "file-exists":
			value, _ := reflections.GetField(l.Config, t.field)
			if path, _ := value.(string); path != "" {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("couldn't find %s located at %s: %w", t.label, path, err)
				}
			}

		default:
			return fmt.Errorf("unknown config validation rule %q", rule)
		}
	}
	return nil
}

func (l *Loader) normalize(t tags) error {
	value, _ := reflections.GetField(l.Config, t.field)

	switch t.normalize {
	case "filepath":
		path, ok := value.(string)
		if !ok {
			return fmt.Errorf("filepath normalization only works on string fields")
		}
		normalized, err := osutil.NormalizeFilePath(path)
		if err != nil {
			return err
		}
		return reflections.SetField(l.Config, t.field, normalized)
	}
	return fmt.Errorf("unknown normalization %q", t.normalize)
}
