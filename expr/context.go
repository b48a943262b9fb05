package expr

import "strings"

// Context is a set of workflow contexts an expression reads from.
type Context uint16

const (
	ContextGithub Context = 1 << iota
	ContextSecrets
	ContextEnv
	ContextVars
	ContextInputs
	ContextNeeds
	ContextStrategy
	ContextMatrix
	ContextJob
	ContextRunner
	ContextSteps
	ContextJobs

	AllContexts = ContextGithub | ContextSecrets | ContextEnv | ContextVars |
		ContextInputs | ContextNeeds | ContextStrategy | ContextMatrix |
		ContextJob | ContextRunner | ContextSteps | ContextJobs
)

// Names are listed in the order GitHub documents them, which is also the order
// used in error messages.
var contextNames = []struct {
	c    Context
	name string
}{
	{ContextGithub, "github"},
	{ContextNeeds, "needs"},
	{ContextStrategy, "strategy"},
	{ContextMatrix, "matrix"},
	{ContextJob, "job"},
	{ContextJobs, "jobs"},
	{ContextRunner, "runner"},
	{ContextSteps, "steps"},
	{ContextEnv, "env"},
	{ContextVars, "vars"},
	{ContextSecrets, "secrets"},
	{ContextInputs, "inputs"},
}

// Names returns the context names in c.
func (c Context) Names() []string {
	var names []string
	for _, cn := range contextNames {
		if c&cn.c != 0 {
			names = append(names, cn.name)
		}
	}
	return names
}

// Has reports whether every context in o is also in c.
func (c Context) Has(o Context) bool {
	return c&o == o
}

func (c Context) String() string {
	return "{" + strings.Join(c.Names(), ", ") + "}"
}

// Func is a set of functions whose use is restricted to particular keys.
type Func uint8

const (
	FuncHashFiles Func = 1 << iota
	FuncAlways
	FuncCancelled
	FuncSuccess
	FuncFailure

	// StatusFuncs are the job status check functions.
	StatusFuncs = FuncAlways | FuncCancelled | FuncSuccess | FuncFailure
)

var funcNames = []struct {
	f    Func
	name string
}{
	{FuncHashFiles, "hashFiles"},
	{FuncAlways, "always"},
	{FuncCancelled, "cancelled"},
	{FuncSuccess, "success"},
	{FuncFailure, "failure"},
}

// Names returns the function names in f.
func (f Func) Names() []string {
	var names []string
	for _, fn := range funcNames {
		if f&fn.f != 0 {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Func) String() string {
	return "{" + strings.Join(f.Names(), ", ") + "}"
}
