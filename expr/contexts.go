package expr

// Context roots. Properties are reached with Get, e.g.
// expr.Github.Get("event_name").AsStr().
var (
	Github   = root("github", ContextGithub)
	Env      = root("env", ContextEnv)
	Vars     = root("vars", ContextVars)
	Secrets  = root("secrets", ContextSecrets)
	Inputs   = root("inputs", ContextInputs)
	Needs    = root("needs", ContextNeeds)
	Steps    = root("steps", ContextSteps)
	Job      = root("job", ContextJob)
	Jobs     = root("jobs", ContextJobs)
	Runner   = root("runner", ContextRunner)
	Strategy = root("strategy", ContextStrategy)
	Matrix   = root("matrix", ContextMatrix)
)

// Frequently used github context properties.
var (
	GithubEventName  = Github.Get("event_name").AsStr()
	GithubRef        = Github.Get("ref").AsStr()
	GithubRefName    = Github.Get("ref_name").AsStr()
	GithubSHA        = Github.Get("sha").AsStr()
	GithubRepository = Github.Get("repository").AsStr()
	GithubWorkspace  = Github.Get("workspace").AsStr()
	GithubToken      = Github.Get("token").AsStr()
	RunnerOS         = Runner.Get("os").AsStr()
	RunnerTemp       = Runner.Get("temp").AsStr()
)

func root(name string, c Context) Object {
	return Object{Expr{n: contextRef{name: name}, ctx: c}}
}

// Secret is secrets.<name>.
func Secret(name string) String { return Secrets.Get(name).AsStr() }

// Var is vars.<name>.
func Var(name string) String { return Vars.Get(name).AsStr() }

// EnvVar is env.<name>.
func EnvVar(name string) String { return Env.Get(name).AsStr() }

// Input is inputs.<name>.
func Input(name string) Object { return Inputs.Get(name) }

// MatrixValue is matrix.<key>.
func MatrixValue(key string) Object { return Matrix.Get(key) }

// StepOutput is steps.<step>.outputs.<name>.
func StepOutput(step, name string) String {
	return Steps.Get(step).Get("outputs").Get(name).AsStr()
}

// StepOutcome is steps.<step>.outcome, before continue-on-error applies.
func StepOutcome(step string) String {
	return Steps.Get(step).Get("outcome").AsStr()
}

// StepConclusion is steps.<step>.conclusion.
func StepConclusion(step string) String {
	return Steps.Get(step).Get("conclusion").AsStr()
}

// NeedsOutput is needs.<job>.outputs.<name>.
func NeedsOutput(job, name string) String {
	return Needs.Get(job).Get("outputs").Get(name).AsStr()
}

// NeedsResult is needs.<job>.result.
func NeedsResult(job string) String {
	return Needs.Get(job).Get("result").AsStr()
}

// JobsOutput is jobs.<job>.outputs.<name>, available to reusable workflow
// outputs.
func JobsOutput(job, name string) String {
	return Jobs.Get(job).Get("outputs").Get(name).AsStr()
}
