package logger

import (
	"strconv"
	"time"
)

// Field is a key/value pair attached to a log message.
type Field interface {
	Key() string
	String() string
}

// Fields is the ordered set of fields a logger adds to each message.
type Fields []Field

// Add appends fields.
func (f *Fields) Add(fields ...Field) { *f = append(*f, fields...) }

// Get returns every field with the given key.
func (f Fields) Get(key string) []Field {
	var out []Field
	for _, field := range f {
		if field.Key() == key {
			out = append(out, field)
		}
	}
	return out
}

type field struct {
	key, value string
}

func (f field) Key() string    { return f.key }
func (f field) String() string { return f.value }

func StringField(key, value string) Field { return field{key, value} }

func IntField(key string, value int) Field { return field{key, strconv.Itoa(value)} }

func BoolField(key string, value bool) Field { return field{key, strconv.FormatBool(value)} }

// DurationField rounds to the millisecond.
func DurationField(key string, value time.Duration) Field {
	return field{key, value.Round(time.Millisecond).String()}
}
