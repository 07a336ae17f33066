package httphandler

import (
	"encoding/json"
	"fmt"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
)

// parsePullRequestEvent decodes a pull_request webhook body into an InboundEvent.
func parsePullRequestEvent(body []byte) (model.InboundEvent, error) {
	var payload gh.PullRequestEvent
	if err := json.Unmarshal(body, &payload); err != nil {
		return model.InboundEvent{}, fmt.Errorf("decoding pull_request payload: %w", err)
	}

	pr := payload.GetPullRequest()
	if pr == nil {
		return model.InboundEvent{}, fmt.Errorf("pull_request payload has no pull_request object")
	}

	number := payload.GetNumber()
	if number == 0 {
		number = pr.GetNumber()
	}

	return model.InboundEvent{
		Action:   model.ParseAction(payload.GetAction()),
		Number:   number,
		Author:   pr.GetUser().GetLogin(),
		IssueURL: pr.GetIssueURL(),
		DiffURL:  pr.GetDiffURL(),
		Base: model.RepoRef{
			HTMLURL:  pr.GetBase().GetRepo().GetHTMLURL(),
			Ref:      pr.GetBase().GetRef(),
			FullName: pr.GetBase().GetRepo().GetFullName(),
		},
		Head: model.RepoRef{
			HTMLURL: pr.GetHead().GetRepo().GetHTMLURL(),
			Ref:     pr.GetHead().GetRef(),
		},
	}, nil
}
