package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	nocolor   = "0"
	red       = "31"
	green     = "38;5;48"
	yellow    = "33"
	gray      = "38;5;251"
	lightgray = "38;5;243"
	cyan      = "1;36"
)

const DateFormat = "2006-01-02 15:04:05"

var windowsColors bool

// Logger is the logging interface used throughout loom. Messages are
// formatted with fmt.Sprintf.
type Logger interface {
	Debug(format string, v ...any)
	Error(format string, v ...any)
	Fatal(format string, v ...any)
	Notice(format string, v ...any)
	Warn(format string, v ...any)
	Info(format string, v ...any)

	WithFields(fields ...Field) Logger
	SetLevel(level Level)
	Level() Level
}

// ConsoleLogger is a Logger that writes through a Printer, dropping messages
// below its level.
type ConsoleLogger struct {
	level   Level
	exitFn  func(int)
	fields  Fields
	printer Printer
}

// NewConsoleLogger returns a logger at NOTICE level. exitFn is called with
// status 1 after a Fatal message.
func NewConsoleLogger(printer Printer, exitFn func(int)) Logger {
	return &ConsoleLogger{
		level:   NOTICE,
		exitFn:  exitFn,
		printer: printer,
	}
}

// WithFields returns a copy of the logger that adds fields to every message.
func (l *ConsoleLogger) WithFields(fields ...Field) Logger {
	clone := *l
	clone.fields = append(append(Fields{}, l.fields...), fields...)
	return &clone
}

func (l *ConsoleLogger) SetLevel(level Level) { l.level = level }

func (l *ConsoleLogger) Level() Level { return l.level }

func (l *ConsoleLogger) Debug(format string, v ...any) { l.log(DEBUG, format, v...) }

func (l *ConsoleLogger) Info(format string, v ...any) { l.log(INFO, format, v...) }

func (l *ConsoleLogger) Notice(format string, v ...any) { l.log(NOTICE, format, v...) }

func (l *ConsoleLogger) Warn(format string, v ...any) { l.log(WARN, format, v...) }

func (l *ConsoleLogger) Error(format string, v ...any) { l.log(ERROR, format, v...) }

func (l *ConsoleLogger) Fatal(format string, v ...any) {
	l.log(FATAL, format, v...)
	l.exitFn(1)
}

func (l *ConsoleLogger) log(level Level, format string, v ...any) {
	if level < l.level {
		return
	}
	l.printer.Print(level, fmt.Sprintf(format, v...), l.fields)
}

// Printer formats and writes a single log message.
type Printer interface {
	Print(level Level, msg string, fields Fields)
}

// TextPrinter writes human-readable lines, coloured when Colors is set.
type TextPrinter struct {
	Colors bool

	mu     sync.Mutex
	writer io.Writer
}

// NewTextPrinter returns a TextPrinter writing to w, with colours enabled
// when stdout is a terminal.
func NewTextPrinter(w io.Writer) *TextPrinter {
	return &TextPrinter{
		Colors: ColorsAvailable(),
		writer: w,
	}
}

func (p *TextPrinter) Print(level Level, msg string, fields Fields) {
	now := time.Now().Format(DateFormat)

	var b strings.Builder
	if p.Colors {
		levelColor := green
		messageColor := nocolor

		switch level {
		case DEBUG:
			levelColor = gray
			messageColor = gray
		case NOTICE:
			levelColor = cyan
		case WARN:
			levelColor = yellow
		case ERROR:
			levelColor = red
		case FATAL:
			levelColor = red
			messageColor = red
		}

		fmt.Fprintf(&b, "\x1b[%sm%s %-6s\x1b[0m \x1b[%sm%s\x1b[0m", levelColor, now, level, messageColor, msg)
		for _, f := range fields {
			fmt.Fprintf(&b, " \x1b[%sm%s=\x1b[0m%s", lightgray, f.Key(), f.String())
		}
	} else {
		fmt.Fprintf(&b, "%s %-6s %s", now, level, msg)
		for _, f := range fields {
			fmt.Fprintf(&b, " %s=%s", f.Key(), f.String())
		}
	}
	b.WriteByte('\n')

	// One line at a time
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprint(p.writer, b.String())
}

// JSONPrinter writes one JSON object per message, with ts, level and msg
// keys alongside the fields.
type JSONPrinter struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

func (p *JSONPrinter) Print(level Level, msg string, fields Fields) {
	line := make(map[string]string, len(fields)+3)
	for _, f := range fields {
		line[f.Key()] = f.String()
	}
	line["ts"] = time.Now().UTC().Format(time.RFC3339)
	line["level"] = level.String()
	line["msg"] = msg

	b, err := json.Marshal(line)
	if err != nil {
		b = []byte(fmt.Sprintf(`{"level":"ERROR","msg":%q}`, "failed to encode log message: "+err.Error()))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.writer, "%s\n", b)
}

// ColorsAvailable reports whether stdout is a terminal that supports colour.
func ColorsAvailable() bool {
	// Color support for windows is set in init
	if runtime.GOOS == "windows" && !windowsColors {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Discard drops every message.
var Discard Logger = NewConsoleLogger(NewTextPrinter(io.Discard), os.Exit)
