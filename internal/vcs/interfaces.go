package vcs

import (
	"context"

	"github.com/g30r93g/PRereq/internal/models"
)

// StatusLookup resolves the state of a dependency pull request.
// A pull request that does not exist resolves to StatusUnknown without error.
type StatusLookup interface {
	DependencyStatus(ctx context.Context, ref models.PRRef) (models.DepStatus, error)
}

// NoticeClient reads and writes the comments left on dependency pull requests.
type NoticeClient interface {
	// ListNotices returns the raw bodies of every comment on ref.
	ListNotices(ctx context.Context, ref models.PRRef) ([]string, error)
	PostNotice(ctx context.Context, ref models.PRRef, body string) error
}

// CheckPublisher reports a verdict as a completed check run on the head commit.
type CheckPublisher interface {
	PublishCheck(ctx context.Context, run models.CheckRun) error
}

// PRFetcher loads a pull request by reference.
type PRFetcher interface {
	GetPullRequest(ctx context.Context, ref models.PRRef) (models.PullRequest, error)
}

// Client is everything the hosting provider offers to the dependency service.
type Client interface {
	StatusLookup
	NoticeClient
	CheckPublisher
	PRFetcher
}
