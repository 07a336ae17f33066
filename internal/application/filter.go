package application

import (
	"strings"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// Verdict is the result of screening an event before any upstream call.
type Verdict int

const (
	VerdictActionable Verdict = iota
	VerdictNotActionable
	VerdictIgnoredAuthor
)

func (v Verdict) String() string {
	switch v {
	case VerdictActionable:
		return "actionable"
	case VerdictIgnoredAuthor:
		return "ignored author"
	default:
		return "not actionable"
	}
}

// IgnoreSet holds lowercase logins whose pull requests are never diffed.
type IgnoreSet map[string]struct{}

// NewIgnoreSet builds an IgnoreSet, lowercasing every login.
func NewIgnoreSet(logins []string) IgnoreSet {
	set := make(IgnoreSet, len(logins))
	for _, l := range logins {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			set[l] = struct{}{}
		}
	}
	return set
}

// Contains reports whether login is ignored, case-insensitively.
func (s IgnoreSet) Contains(login string) bool {
	_, ok := s[strings.ToLower(login)]
	return ok
}

// Screen decides whether ev should run through the pipeline.
func Screen(ev model.InboundEvent, ignore IgnoreSet) Verdict {
	if !ev.Action.IsActionable() {
		return VerdictNotActionable
	}
	if ignore.Contains(ev.Author) {
		return VerdictIgnoredAuthor
	}
	return VerdictActionable
}
