package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Action is the pull request webhook action.
type Action string

const (
	ActionOpened      Action = "opened"
	ActionSynchronize Action = "synchronize"
	ActionOther       Action = "other"
)

// ParseAction maps a raw webhook action onto the actions the bot distinguishes.
func ParseAction(raw string) Action {
	switch Action(raw) {
	case ActionOpened, ActionSynchronize:
		return Action(raw)
	default:
		return ActionOther
	}
}

// IsActionable reports whether the action should trigger a sprite diff.
func (a Action) IsActionable() bool {
	return a == ActionOpened || a == ActionSynchronize
}

// RepoRef points at one side of a pull request.
type RepoRef struct {
	HTMLURL  string // e.g. https://github.com/owner/repo
	Ref      string // branch or sha
	FullName string // owner/repo; only populated for the base side
}

// InboundEvent is a parsed pull request event. It is never mutated after parsing.
type InboundEvent struct {
	Action   Action
	Number   int
	Author   string
	IssueURL string // API URL of the pull request's issue
	DiffURL  string
	Base     RepoRef
	Head     RepoRef
}

// SerialKey groups events that must be processed in delivery order.
func (e InboundEvent) SerialKey() string {
	if e.IssueURL != "" {
		return e.IssueURL
	}
	return fmt.Sprintf("%s#%d", e.Base.FullName, e.Number)
}

// IssueRef identifies a pull request's issue on the GitHub API.
type IssueRef struct {
	Owner  string
	Repo   string
	Number int
}

// FullName returns "owner/repo".
func (r IssueRef) FullName() string {
	return r.Owner + "/" + r.Repo
}

func (r IssueRef) String() string {
	return fmt.Sprintf("%s#%d", r.FullName(), r.Number)
}

// ParseIssueURL extracts the issue reference from an API URL of the form
// .../repos/{owner}/{repo}/issues/{number}.
func ParseIssueURL(raw string) (IssueRef, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return IssueRef{}, fmt.Errorf("parsing issue URL %q: %w", raw, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+4 < len(parts); i++ {
		if parts[i] != "repos" || parts[i+3] != "issues" || parts[i+1] == "" || parts[i+2] == "" {
			continue
		}
		number, err := strconv.Atoi(parts[i+4])
		if err != nil || number <= 0 {
			return IssueRef{}, fmt.Errorf("invalid issue number in %q", raw)
		}
		return IssueRef{Owner: parts[i+1], Repo: parts[i+2], Number: number}, nil
	}

	return IssueRef{}, fmt.Errorf("invalid issue URL %q: expected .../repos/{owner}/{repo}/issues/{number}", raw)
}
