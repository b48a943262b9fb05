package expr

import (
	"fmt"
	"strings"
)

// Allowed describes which contexts and functions an expression may use at a
// particular key of a workflow document.
type Allowed struct {
	Label    string
	Contexts Context
	Funcs    Func
}

// Check returns a *ContextError if v uses a context or function that a is
// missing. Unset values and literals always pass.
func (a Allowed) Check(v Value) error {
	if v == nil || v.IsZero() {
		return nil
	}
	badCtx := v.Contexts() &^ a.Contexts
	badFn := v.Funcs() &^ a.Funcs
	if badCtx == 0 && badFn == 0 {
		return nil
	}
	expression, _ := v.Scalar().(string)
	return &ContextError{
		Allowed:    a,
		Expression: expression,
		Contexts:   badCtx,
		Funcs:      badFn,
	}
}

// ContextError reports an expression that reads a context, or calls a
// function, not available at the key it was used for.
type ContextError struct {
	Allowed    Allowed
	Expression string
	Contexts   Context
	Funcs      Func
}

func (e *ContextError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Key '%s' does not allow the context(s) %s", e.Allowed.Label, e.Contexts)
	if e.Funcs != 0 {
		fmt.Fprintf(&b, " or function(s) %s", e.Funcs)
	}
	fmt.Fprintf(&b, " used in this expression:\n%s\n\nAllowed contexts: %s", e.Expression, e.Allowed.Contexts)
	if e.Allowed.Funcs != 0 {
		fmt.Fprintf(&b, "\nAllowed functions: %s", e.Allowed.Funcs)
	}
	return b.String()
}

const (
	// Contexts available to most job-level keys.
	jobCtx = ContextGithub | ContextNeeds | ContextStrategy | ContextMatrix | ContextVars | ContextInputs

	// Contexts available once a job is running on a runner.
	runtimeCtx = jobCtx | ContextJob | ContextRunner | ContextEnv

	// Contexts available to step keys.
	stepCtx = AllContexts &^ ContextJobs
)

// Context availability per workflow key, following
// https://docs.github.com/en/actions/learn-github-actions/contexts#context-availability.
var (
	AllowedRunName     = Allowed{"run-name", ContextGithub | ContextInputs | ContextVars, 0}
	AllowedConcurrency = Allowed{"concurrency", ContextGithub | ContextInputs | ContextVars, 0}
	AllowedEnv         = Allowed{"env", ContextGithub | ContextSecrets | ContextInputs | ContextVars, 0}
	AllowedDefaultsRun = Allowed{"defaults.run", ContextGithub | ContextInputs | ContextVars, 0}

	AllowedCallInputDefault = Allowed{"on.workflow_call.inputs.<inputs_id>.default", ContextGithub | ContextInputs | ContextVars, 0}
	AllowedCallOutputValue  = Allowed{"on.workflow_call.outputs.<output_id>.value", ContextGithub | ContextJobs | ContextVars | ContextInputs, 0}

	AllowedJobName                 = Allowed{"jobs.<job_id>.name", jobCtx, 0}
	AllowedJobIf                   = Allowed{"jobs.<job_id>.if", ContextGithub | ContextNeeds | ContextVars | ContextInputs, StatusFuncs}
	AllowedJobRunsOn               = Allowed{"jobs.<job_id>.runs-on", jobCtx, 0}
	AllowedJobEnv                  = Allowed{"jobs.<job_id>.env", jobCtx | ContextSecrets, 0}
	AllowedJobEnvironment          = Allowed{"jobs.<job_id>.environment", jobCtx, 0}
	AllowedJobEnvironmentURL       = Allowed{"jobs.<job_id>.environment.url", runtimeCtx | ContextSteps, 0}
	AllowedJobConcurrency          = Allowed{"jobs.<job_id>.concurrency", jobCtx, 0}
	AllowedJobOutputs              = Allowed{"jobs.<job_id>.outputs.<output_id>", runtimeCtx | ContextSecrets | ContextSteps, 0}
	AllowedJobContinueOnError      = Allowed{"jobs.<job_id>.continue-on-error", jobCtx, 0}
	AllowedJobDefaultsRun          = Allowed{"jobs.<job_id>.defaults.run", jobCtx | ContextEnv, 0}
	AllowedJobStrategy             = Allowed{"jobs.<job_id>.strategy", ContextGithub | ContextNeeds | ContextVars | ContextInputs, 0}
	AllowedJobTimeoutMinutes       = Allowed{"jobs.<job_id>.timeout-minutes", jobCtx, 0}
	AllowedJobWith                 = Allowed{"jobs.<job_id>.with.<with_id>", jobCtx, 0}
	AllowedJobSecrets              = Allowed{"jobs.<job_id>.secrets.<secrets_id>", jobCtx | ContextSecrets, 0}
	AllowedJobContainer            = Allowed{"jobs.<job_id>.container", jobCtx, 0}
	AllowedJobContainerCredentials = Allowed{"jobs.<job_id>.container.credentials", jobCtx | ContextEnv | ContextSecrets, 0}
	AllowedJobContainerEnv         = Allowed{"jobs.<job_id>.container.env.<env_id>", runtimeCtx | ContextSecrets, 0}
	AllowedJobContainerImage       = Allowed{"jobs.<job_id>.container.image", jobCtx, 0}
	AllowedJobServices             = Allowed{"jobs.<job_id>.services", jobCtx, 0}
	AllowedJobServiceCredentials   = Allowed{"jobs.<job_id>.services.<service_id>.credentials", jobCtx | ContextEnv | ContextSecrets, 0}
	AllowedJobServiceEnv           = Allowed{"jobs.<job_id>.services.<service_id>.env.<env_id>", runtimeCtx | ContextSecrets, 0}

	AllowedStepIf               = Allowed{"jobs.<job_id>.steps.if", runtimeCtx | ContextSteps, StatusFuncs | FuncHashFiles}
	AllowedStepName             = Allowed{"jobs.<job_id>.steps.name", stepCtx, FuncHashFiles}
	AllowedStepRun              = Allowed{"jobs.<job_id>.steps.run", stepCtx, FuncHashFiles}
	AllowedStepEnv              = Allowed{"jobs.<job_id>.steps.env", stepCtx, FuncHashFiles}
	AllowedStepWith             = Allowed{"jobs.<job_id>.steps.with", stepCtx, FuncHashFiles}
	AllowedStepWorkingDirectory = Allowed{"jobs.<job_id>.steps.working-directory", stepCtx, FuncHashFiles}
	AllowedStepContinueOnError  = Allowed{"jobs.<job_id>.steps.continue-on-error", stepCtx, FuncHashFiles}
	AllowedStepTimeoutMinutes   = Allowed{"jobs.<job_id>.steps.timeout-minutes", stepCtx, FuncHashFiles}
)
