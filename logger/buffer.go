package logger

import (
	"fmt"
	"sync"
)

// Buffer is a Logger for tests. Every message is kept in Messages as
// "[level] text", regardless of level. Fields are not recorded.
type Buffer struct {
	mu       sync.Mutex
	Messages []string
}

// NewBuffer returns a Buffer whose Messages is empty rather than nil.
func NewBuffer() *Buffer {
	return &Buffer{Messages: []string{}}
}

func (b *Buffer) record(level Level, format string, v []any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Messages = append(b.Messages, fmt.Sprintf("[%s] %s", level.lower(), fmt.Sprintf(format, v...)))
}

func (b *Buffer) Debug(format string, v ...any)  { b.record(DEBUG, format, v) }
func (b *Buffer) Info(format string, v ...any)   { b.record(INFO, format, v) }
func (b *Buffer) Notice(format string, v ...any) { b.record(NOTICE, format, v) }
func (b *Buffer) Warn(format string, v ...any)   { b.record(WARN, format, v) }
func (b *Buffer) Error(format string, v ...any)  { b.record(ERROR, format, v) }
func (b *Buffer) Fatal(format string, v ...any)  { b.record(FATAL, format, v) }

func (b *Buffer) WithFields(...Field) Logger { return b }
func (b *Buffer) SetLevel(Level)             {}
func (b *Buffer) Level() Level               { return DEBUG }
