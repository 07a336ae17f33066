package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	assert.Equal(t, ActionOpened, ParseAction("opened"))
	assert.Equal(t, ActionSynchronize, ParseAction("synchronize"))
	assert.Equal(t, ActionOther, ParseAction("closed"))
	assert.Equal(t, ActionOther, ParseAction(""))

	assert.True(t, ActionOpened.IsActionable())
	assert.True(t, ActionSynchronize.IsActionable())
	assert.False(t, ActionOther.IsActionable())
}

func TestParseIssueURL(t *testing.T) {
	ref, err := ParseIssueURL("https://api.github.com/repos/tgstation/tgstation/issues/4521")
	require.NoError(t, err)
	assert.Equal(t, IssueRef{Owner: "tgstation", Repo: "tgstation", Number: 4521}, ref)
	assert.Equal(t, "tgstation/tgstation#4521", ref.String())
}

func TestParseIssueURL_EnterprisePrefix(t *testing.T) {
	ref, err := ParseIssueURL("https://ghe.example.com/api/v3/repos/org/icons/issues/7")
	require.NoError(t, err)
	assert.Equal(t, "org/icons", ref.FullName())
	assert.Equal(t, 7, ref.Number)
}

func TestParseIssueURL_Invalid(t *testing.T) {
	for _, raw := range []string{
		"",
		"https://api.github.com/repos/org/repo",
		"https://api.github.com/repos/org/repo/issues/abc",
		"https://api.github.com/repos/org/repo/pulls/3",
	} {
		_, err := ParseIssueURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestInboundEvent_SerialKey(t *testing.T) {
	ev := InboundEvent{IssueURL: "https://api.github.com/repos/o/r/issues/1", Number: 1}
	assert.Equal(t, "https://api.github.com/repos/o/r/issues/1", ev.SerialKey())

	ev = InboundEvent{Number: 2, Base: RepoRef{FullName: "o/r"}}
	assert.Equal(t, "o/r#2", ev.SerialKey())
}
