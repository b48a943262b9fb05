package workflow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type cronKind uint8

const (
	cronAny cronKind = iota
	cronValues
	cronRange
	cronStep
)

// CronField is one field of a cron schedule. The zero CronField matches
// every value and renders as "*".
type CronField struct {
	kind   cronKind
	values []int
	lo, hi int
	step   int
	// anyStart renders a step as "*/n" instead of "start/n".
	anyStart bool
}

// Every matches every value of the field.
func Every() CronField { return CronField{} }

// At matches the given values.
func At(values ...int) CronField { return CronField{kind: cronValues, values: values} }

// Between matches the inclusive range lo-hi.
func Between(lo, hi int) CronField { return CronField{kind: cronRange, lo: lo, hi: hi} }

// EveryN matches every n-th value, starting from the field's minimum.
func EveryN(n int) CronField { return CronField{kind: cronStep, step: n, anyStart: true} }

// StartingAt matches every n-th value from start.
func StartingAt(start, n int) CronField { return CronField{kind: cronStep, lo: start, step: n} }

func (f CronField) String() string {
	switch f.kind {
	case cronValues:
		parts := make([]string, len(f.values))
		for i, v := range f.values {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, ",")
	case cronRange:
		return fmt.Sprintf("%d-%d", f.lo, f.hi)
	case cronStep:
		if f.anyStart {
			return fmt.Sprintf("*/%d", f.step)
		}
		return fmt.Sprintf("%d/%d", f.lo, f.step)
	}
	return "*"
}

func (f CronField) validate(name string, lo, hi int) error {
	in := func(v int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%s must be in the range %d-%d, got %d", name, lo, hi, v)
		}
		return nil
	}
	switch f.kind {
	case cronValues:
		if len(f.values) == 0 {
			return fmt.Errorf("%s must list at least one value", name)
		}
		for _, v := range f.values {
			if err := in(v); err != nil {
				return err
			}
		}
	case cronRange:
		if err := in(f.lo); err != nil {
			return err
		}
		if err := in(f.hi); err != nil {
			return err
		}
		if f.lo > f.hi {
			return fmt.Errorf("%s range %d-%d is empty", name, f.lo, f.hi)
		}
	case cronStep:
		if f.step < 1 {
			return fmt.Errorf("%s step must be at least 1, got %d", name, f.step)
		}
		if !f.anyStart {
			return in(f.lo)
		}
	}
	return nil
}

// Cron is a POSIX cron schedule, evaluated by GitHub in UTC.
type Cron struct {
	Minute  CronField
	Hour    CronField
	Day     CronField
	Month   CronField
	Weekday CronField
}

// String renders the schedule as "minute hour day month weekday".
func (c Cron) String() string {
	return strings.Join([]string{
		c.Minute.String(),
		c.Hour.String(),
		c.Day.String(),
		c.Month.String(),
		c.Weekday.String(),
	}, " ")
}

// Validate checks every field against its bounds.
func (c Cron) Validate() error {
	for _, f := range []struct {
		field  CronField
		name   string
		lo, hi int
	}{
		{c.Minute, "minute", 0, 59},
		{c.Hour, "hour", 0, 23},
		{c.Day, "day", 1, 31},
		{c.Month, "month", 1, 12},
		{c.Weekday, "weekday", 0, 6},
	} {
		if err := f.field.validate(f.name, f.lo, f.hi); err != nil {
			return err
		}
	}
	return nil
}

// ParseCron parses a five-field cron expression. Each field is "*", a value,
// a comma-separated list, a range "a-b", or a step "*/n" or "a/n".
func ParseCron(s string) (Cron, error) {
	parts := strings.Fields(s)
	if len(parts) != 5 {
		return Cron{}, fmt.Errorf("cron %q must have 5 fields, got %d", s, len(parts))
	}
	fields := make([]CronField, 5)
	for i, p := range parts {
		f, err := parseCronField(p)
		if err != nil {
			return Cron{}, fmt.Errorf("cron %q: %w", s, err)
		}
		fields[i] = f
	}
	c := Cron{fields[0], fields[1], fields[2], fields[3], fields[4]}
	if err := c.Validate(); err != nil {
		return Cron{}, fmt.Errorf("cron %q: %w", s, err)
	}
	return c, nil
}

func parseCronField(s string) (CronField, error) {
	if s == "*" {
		return Every(), nil
	}
	if start, step, ok := strings.Cut(s, "/"); ok {
		n, err := strconv.Atoi(step)
		if err != nil {
			return CronField{}, fmt.Errorf("invalid step %q", s)
		}
		if start == "*" {
			return EveryN(n), nil
		}
		lo, err := strconv.Atoi(start)
		if err != nil {
			return CronField{}, fmt.Errorf("invalid step start %q", s)
		}
		return StartingAt(lo, n), nil
	}
	if a, b, ok := strings.Cut(s, "-"); ok {
		lo, err1 := strconv.Atoi(a)
		hi, err2 := strconv.Atoi(b)
		if err := errors.Join(err1, err2); err != nil {
			return CronField{}, fmt.Errorf("invalid range %q", s)
		}
		return Between(lo, hi), nil
	}
	var values []int
	for _, v := range strings.Split(s, ",") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return CronField{}, fmt.Errorf("invalid value %q", v)
		}
		values = append(values, n)
	}
	return At(values...), nil
}
