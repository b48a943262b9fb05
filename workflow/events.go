package workflow

import (
	"errors"
	"strings"

	"github.com/loomworks/loom/internal/ordered"
	"github.com/loomworks/loom/option"
)

// Activity types accepted by each event, from
// https://docs.github.com/en/actions/writing-workflows/choosing-when-your-workflow-runs/events-that-trigger-workflows.
var (
	createdEditedDeleted = []string{"created", "edited", "deleted"}

	pullRequestTypes = []string{
		"assigned", "unassigned", "labeled", "unlabeled", "opened", "edited",
		"closed", "reopened", "synchronize", "converted_to_draft", "locked",
		"unlocked", "enqueued", "dequeued", "milestoned", "demilestoned",
		"ready_for_review", "review_requested", "review_request_removed",
		"auto_merge_enabled", "auto_merge_disabled",
	}

	activityTypes = map[string][]string{
		"branch_protection_rule": createdEditedDeleted,
		"check_run":              {"created", "rerequested", "completed", "requested_action"},
		"check_suite":            {"completed"},
		"discussion": {
			"created", "edited", "deleted", "transferred", "pinned", "unpinned",
			"labeled", "unlabeled", "locked", "unlocked", "category_changed",
			"answered", "unanswered",
		},
		"discussion_comment": createdEditedDeleted,
		"issue_comment":      createdEditedDeleted,
		"issues": {
			"opened", "edited", "deleted", "transferred", "pinned", "unpinned",
			"closed", "reopened", "assigned", "unassigned", "labeled", "unlabeled",
			"locked", "unlocked", "milestoned", "demilestoned", "typed", "untyped",
		},
		"label":                       createdEditedDeleted,
		"merge_group":                 {"checks_requested"},
		"milestone":                   {"created", "closed", "opened", "edited", "deleted"},
		"pull_request":                pullRequestTypes,
		"pull_request_review":         {"submitted", "edited", "dismissed"},
		"pull_request_review_comment": createdEditedDeleted,
		"pull_request_target":         pullRequestTypes,
		"registry_package":            {"published", "updated"},
		"release":                     {"published", "unpublished", "created", "edited", "deleted", "prereleased", "released"},
		"watch":                       {"started"},
		"workflow_run":                {"completed", "requested", "in_progress"},
	}
)

// ActivityEvent is an event filtered only by activity type. An empty
// ActivityEvent triggers on every activity type.
type ActivityEvent struct {
	Types []string
}

// PushEvent filters push triggers. A branch or tag filter cannot be combined
// with its -ignore counterpart, and neither can a path filter.
type PushEvent struct {
	Branches       []string
	BranchesIgnore []string
	Tags           []string
	TagsIgnore     []string
	Paths          []string
	PathsIgnore    []string
}

// PullRequestEvent filters pull_request and pull_request_target triggers.
type PullRequestEvent struct {
	Types          []string
	Branches       []string
	BranchesIgnore []string
	Paths          []string
	PathsIgnore    []string
}

// WorkflowRunEvent triggers when another workflow runs.
type WorkflowRunEvent struct {
	Workflows      []string
	Types          []string
	Branches       []string
	BranchesIgnore []string
}

// ImageVersionEvent triggers when a custom runner image version is ready.
type ImageVersionEvent struct {
	Names    []string
	Versions []string
}

// Events are the triggers of a workflow. A nil pointer or false leaves an
// event out. Events render in the order of this struct.
type Events struct {
	BranchProtectionRule     *ActivityEvent
	CheckRun                 *ActivityEvent
	CheckSuite               *ActivityEvent
	Discussion               *ActivityEvent
	DiscussionComment        *ActivityEvent
	ImageVersion             *ImageVersionEvent
	IssueComment             *ActivityEvent
	Issues                   *ActivityEvent
	Label                    *ActivityEvent
	MergeGroup               *ActivityEvent
	Milestone                *ActivityEvent
	PullRequest              *PullRequestEvent
	PullRequestReview        *ActivityEvent
	PullRequestReviewComment *ActivityEvent
	PullRequestTarget        *PullRequestEvent
	Push                     *PushEvent
	RegistryPackage          *ActivityEvent
	Release                  *ActivityEvent
	// RepositoryDispatch types are custom event names and are not checked.
	RepositoryDispatch *ActivityEvent
	Schedule           []Cron
	Watch              *ActivityEvent
	WorkflowCall       *WorkflowCall
	WorkflowDispatch   *WorkflowDispatch
	WorkflowRun        *WorkflowRunEvent

	Create           bool
	Delete           bool
	Deployment       bool
	DeploymentStatus bool
	Fork             bool
	Gollum           bool
	PageBuild        bool
	Public           bool
	Status           bool
}

// trigger is one enabled event and its rendered configuration, nil when the
// event has none.
type trigger struct {
	name   string
	config any
}

func (e *Events) triggers() ([]trigger, error) {
	var out []trigger
	activity := func(name string, ev *ActivityEvent) error {
		if ev == nil {
			return nil
		}
		t := trigger{name: name}
		if len(ev.Types) > 0 {
			types, err := checkTypes(name, ev.Types)
			if err != nil {
				return err
			}
			m := ordered.NewMap[string, any](1)
			m.Set("types", types)
			t.config = m
		}
		out = append(out, t)
		return nil
	}
	add := func(name string, config *ordered.MapSA, err error) error {
		if err != nil {
			return err
		}
		t := trigger{name: name}
		if config.Len() > 0 {
			t.config = config
		}
		out = append(out, t)
		return nil
	}

	steps := []func() error{
		func() error { return activity("branch_protection_rule", e.BranchProtectionRule) },
		func() error { return activity("check_run", e.CheckRun) },
		func() error { return activity("check_suite", e.CheckSuite) },
		func() error { return activity("discussion", e.Discussion) },
		func() error { return activity("discussion_comment", e.DiscussionComment) },
		func() error {
			if e.ImageVersion == nil {
				return nil
			}
			m := ordered.NewMap[string, any](2)
			setList(m, "names", e.ImageVersion.Names)
			setList(m, "versions", e.ImageVersion.Versions)
			return add("image_version", m, nil)
		},
		func() error { return activity("issue_comment", e.IssueComment) },
		func() error { return activity("issues", e.Issues) },
		func() error { return activity("label", e.Label) },
		func() error { return activity("merge_group", e.MergeGroup) },
		func() error { return activity("milestone", e.Milestone) },
		func() error {
			if e.PullRequest == nil {
				return nil
			}
			m, err := e.PullRequest.node("pull_request")
			return add("pull_request", m, err)
		},
		func() error { return activity("pull_request_review", e.PullRequestReview) },
		func() error { return activity("pull_request_review_comment", e.PullRequestReviewComment) },
		func() error {
			if e.PullRequestTarget == nil {
				return nil
			}
			m, err := e.PullRequestTarget.node("pull_request_target")
			return add("pull_request_target", m, err)
		},
		func() error {
			if e.Push == nil {
				return nil
			}
			m, err := e.Push.node()
			return add("push", m, err)
		},
		func() error { return activity("registry_package", e.RegistryPackage) },
		func() error { return activity("release", e.Release) },
		func() error {
			if e.RepositoryDispatch == nil {
				return nil
			}
			m := ordered.NewMap[string, any](1)
			setList(m, "types", e.RepositoryDispatch.Types)
			return add("repository_dispatch", m, nil)
		},
		func() error {
			if len(e.Schedule) == 0 {
				return nil
			}
			crons := make([]any, len(e.Schedule))
			for i, c := range e.Schedule {
				if err := c.Validate(); err != nil {
					return configErr("on.schedule", err)
				}
				m := ordered.NewMap[string, any](1)
				m.Set("cron", c.String())
				crons[i] = m
			}
			out = append(out, trigger{name: "schedule", config: crons})
			return nil
		},
		func() error { return activity("watch", e.Watch) },
		func() error {
			if e.WorkflowCall == nil {
				return nil
			}
			m, err := e.WorkflowCall.node()
			return add("workflow_call", m, err)
		},
		func() error {
			if e.WorkflowDispatch == nil {
				return nil
			}
			m, err := e.WorkflowDispatch.node()
			return add("workflow_dispatch", m, err)
		},
		func() error {
			if e.WorkflowRun == nil {
				return nil
			}
			m, err := e.WorkflowRun.node()
			return add("workflow_run", m, err)
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}

	for _, simple := range []struct {
		name string
		on   bool
	}{
		{"create", e.Create},
		{"delete", e.Delete},
		{"deployment", e.Deployment},
		{"deployment_status", e.DeploymentStatus},
		{"fork", e.Fork},
		{"gollum", e.Gollum},
		{"page_build", e.PageBuild},
		{"public", e.Public},
		{"status", e.Status},
	} {
		if simple.on {
			out = append(out, trigger{name: simple.name})
		}
	}
	return out, nil
}

// node renders the `on` key. Events without configuration render as a single
// name or a list of names; once any event is configured, every event is
// rendered as a mapping key, with null for unconfigured ones.
func (e *Events) node() (any, error) {
	triggers, err := e.triggers()
	if err != nil {
		return nil, err
	}
	if len(triggers) == 0 {
		return nil, configErr("on", errors.New("workflow must have at least one event"))
	}

	configured := false
	for _, t := range triggers {
		if t.config != nil {
			configured = true
			break
		}
	}
	if !configured {
		if len(triggers) == 1 {
			return triggers[0].name, nil
		}
		names := make([]any, len(triggers))
		for i, t := range triggers {
			names[i] = t.name
		}
		return names, nil
	}

	m := ordered.NewMap[string, any](len(triggers))
	for _, t := range triggers {
		m.Set(t.name, t.config)
	}
	return m, nil
}

// checkTypes validates activity types for event, normalizing their case.
func checkTypes(event string, types []string) ([]any, error) {
	allowed := activityTypes[event]
	out := make([]any, len(types))
	for i, typ := range types {
		match := ""
		for _, a := range allowed {
			if strings.EqualFold(typ, a) {
				match = a
				break
			}
		}
		if match == "" {
			return nil, &option.InvalidChoiceError{
				Field:   "on." + event + ".types",
				Value:   typ,
				Allowed: allowed,
			}
		}
		out[i] = match
	}
	return out, nil
}

// exclusive rejects a filter combined with its -ignore counterpart.
func exclusive(event, key string, a, b []string) error {
	if len(a) > 0 && len(b) > 0 {
		return configErrf("on."+event, "cannot set both '%[1]s' and '%[1]s-ignore'", key)
	}
	return nil
}

func (p *PushEvent) node() (*ordered.MapSA, error) {
	for _, pair := range []struct {
		key  string
		a, b []string
	}{
		{"branches", p.Branches, p.BranchesIgnore},
		{"tags", p.Tags, p.TagsIgnore},
		{"paths", p.Paths, p.PathsIgnore},
	} {
		if err := exclusive("push", pair.key, pair.a, pair.b); err != nil {
			return nil, err
		}
	}
	m := ordered.NewMap[string, any](6)
	setList(m, "branches", p.Branches)
	setList(m, "branches-ignore", p.BranchesIgnore)
	setList(m, "tags", p.Tags)
	setList(m, "tags-ignore", p.TagsIgnore)
	setList(m, "paths", p.Paths)
	setList(m, "paths-ignore", p.PathsIgnore)
	return m, nil
}

func (p *PullRequestEvent) node(event string) (*ordered.MapSA, error) {
	if err := exclusive(event, "branches", p.Branches, p.BranchesIgnore); err != nil {
		return nil, err
	}
	if err := exclusive(event, "paths", p.Paths, p.PathsIgnore); err != nil {
		return nil, err
	}
	m := ordered.NewMap[string, any](5)
	setList(m, "branches", p.Branches)
	setList(m, "branches-ignore", p.BranchesIgnore)
	setList(m, "paths", p.Paths)
	setList(m, "paths-ignore", p.PathsIgnore)
	if len(p.Types) > 0 {
		types, err := checkTypes(event, p.Types)
		if err != nil {
			return nil, err
		}
		m.Set("types", types)
	}
	return m, nil
}

func (w *WorkflowRunEvent) node() (*ordered.MapSA, error) {
	if len(w.Workflows) == 0 {
		return nil, configErr("on.workflow_run.workflows", errors.New("must name at least one workflow"))
	}
	if err := exclusive("workflow_run", "branches", w.Branches, w.BranchesIgnore); err != nil {
		return nil, err
	}
	m := ordered.NewMap[string, any](4)
	setList(m, "workflows", w.Workflows)
	if len(w.Types) > 0 {
		types, err := checkTypes("workflow_run", w.Types)
		if err != nil {
			return nil, err
		}
		m.Set("types", types)
	}
	setList(m, "branches", w.Branches)
	setList(m, "branches-ignore", w.BranchesIgnore)
	return m, nil
}

// setList adds ss under key unless it is empty.
func setList(m *ordered.MapSA, key string, ss []string) {
	if len(ss) > 0 {
		m.Set(key, stringList(ss))
	}
}
