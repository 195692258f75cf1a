package github

import (
	"github.com/google/go-github/v80/github"

	"github.com/g30r93g/PRereq/internal/models"
)

// PullRequestFromGitHub maps the fields evaluation needs. Ref is taken from
// the base repository.
func PullRequestFromGitHub(pr *github.PullRequest) models.PullRequest {
	labels := make([]string, 0, len(pr.Labels))
	for _, l := range pr.Labels {
		labels = append(labels, l.GetName())
	}

	base := pr.GetBase().GetRepo()
	return models.PullRequest{
		Ref:     models.NewPRRef(base.GetOwner().GetLogin(), base.GetName(), pr.GetNumber()),
		Title:   pr.GetTitle(),
		Body:    pr.GetBody(),
		Labels:  labels,
		HeadSHA: pr.GetHead().GetSHA(),
		State:   pr.GetState(),
		Draft:   pr.GetDraft(),
		Merged:  pr.GetMerged(),
	}
}
