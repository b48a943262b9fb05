package logger

import (
	"fmt"
	"strings"
)

// Level orders messages by severity. Loggers drop messages below their level.
type Level int

const (
	DEBUG Level = iota
	INFO
	NOTICE
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{"DEBUG", "INFO", "NOTICE", "WARN", "ERROR", "FATAL"}

func (l Level) String() string {
	if l < DEBUG || l > FATAL {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) lower() string { return strings.ToLower(l.String()) }

// LevelFromString parses a level name, ignoring case.
func LevelFromString(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return DEBUG, fmt.Errorf("invalid log level %q, expected one of: debug, info, notice, warn, error, fatal", s)
}
