package github

import (
	"encoding/json"
	"os"

	gh "github.com/google/go-github/v69/github"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
)

// PullRequest identifies the pull request that triggered the workflow, if any.
type PullRequest struct {
	Number  int
	HeadSHA string
}

// ReadPullRequest loads the webhook payload at path and returns its pull request.
// A payload without a pull_request object yields nil.
func ReadPullRequest(path string) (*PullRequest, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityWarning, "failed to read event payload").
			WithContext("path", path)
	}
	var ev gh.PullRequestEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, errors.SeverityWarning, "failed to decode event payload").
			WithContext("path", path)
	}
	if ev.PullRequest == nil {
		return nil, nil
	}
	number := ev.PullRequest.GetNumber()
	if number == 0 {
		number = ev.GetNumber()
	}
	return &PullRequest{Number: number, HeadSHA: ev.PullRequest.GetHead().GetSHA()}, nil
}
