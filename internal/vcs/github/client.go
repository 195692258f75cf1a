package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	apperrors "github.com/g30r93g/PRereq/internal/errors"
	"github.com/g30r93g/PRereq/internal/logger"
	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/vcs"
)

var _ vcs.Client = (*GitHubClient)(nil)

const commentsPerPage = 100

type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	IsMerged(ctx context.Context, owner, repo string, number int) (bool, *github.Response, error)
}

type IssuesService interface {
	ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error)
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

type ChecksService interface {
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, *github.Response, error)
}

type GitHubClient struct {
	prService     PullRequestsService
	issuesService IssuesService
	checksService ChecksService
	now           func() time.Time
}

// NewGitHubClient wraps httpClient, which is expected to add authentication.
// baseURL selects a GitHub Enterprise server; empty means github.com.
func NewGitHubClient(httpClient *http.Client, baseURL string) (*GitHubClient, error) {
	client, err := newRESTClient(httpClient, baseURL)
	if err != nil {
		return nil, err
	}
	return NewGitHubClientWithServices(client.PullRequests, client.Issues, client.Checks), nil
}

func NewTokenClient(token, baseURL string) (*GitHubClient, error) {
	if token == "" {
		return nil, apperrors.ErrTokenMissing
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewGitHubClient(oauth2.NewClient(context.Background(), ts), baseURL)
}

func NewGitHubClientWithServices(prService PullRequestsService, issuesService IssuesService, checksService ChecksService) *GitHubClient {
	return &GitHubClient{
		prService:     prService,
		issuesService: issuesService,
		checksService: checksService,
		now:           time.Now,
	}
}

func newRESTClient(httpClient *http.Client, baseURL string) (*github.Client, error) {
	client := github.NewClient(httpClient)
	if baseURL == "" {
		return client, nil
	}
	client, err := client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, apperrors.ErrConfigInvalid.WithError(fmt.Errorf("github base url: %w", err))
	}
	return client, nil
}

// DependencyStatus checks the merge endpoint first and falls back to the pull
// request itself for open, closed and draft.
func (ghc *GitHubClient) DependencyStatus(ctx context.Context, ref models.PRRef) (models.DepStatus, error) {
	log := logger.FromContext(ctx)

	merged, resp, err := ghc.prService.IsMerged(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return models.StatusUnknown, mapError(err, resp, ref, apperrors.ErrPullRequestNotFound)
	}
	if merged {
		return models.StatusMerged, nil
	}

	pr, resp, err := ghc.prService.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			log.Debug("dependency not found", "dependency", ref.String())
			return models.StatusUnknown, nil
		}
		return models.StatusUnknown, mapError(err, resp, ref, apperrors.ErrPullRequestNotFound)
	}

	return statusOf(pr), nil
}

func statusOf(pr *github.PullRequest) models.DepStatus {
	switch {
	case pr.GetDraft():
		return models.StatusDraft
	case pr.GetMerged():
		return models.StatusMerged
	case pr.GetState() == "open":
		return models.StatusOpen
	default:
		return models.StatusClosed
	}
}

func (ghc *GitHubClient) ListNotices(ctx context.Context, ref models.PRRef) ([]string, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: commentsPerPage},
	}

	var bodies []string
	for {
		comments, resp, err := ghc.issuesService.ListComments(ctx, ref.Owner, ref.Repo, ref.Number, opts)
		if err != nil {
			return nil, mapError(err, resp, ref, apperrors.ErrPullRequestNotFound)
		}
		for _, c := range comments {
			bodies = append(bodies, c.GetBody())
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return bodies, nil
}

func (ghc *GitHubClient) PostNotice(ctx context.Context, ref models.PRRef, body string) error {
	_, resp, err := ghc.issuesService.CreateComment(ctx, ref.Owner, ref.Repo, ref.Number, &github.IssueComment{
		Body: github.Ptr(body),
	})
	if err != nil {
		return mapError(err, resp, ref, apperrors.ErrPostNotice)
	}
	return nil
}

func (ghc *GitHubClient) PublishCheck(ctx context.Context, run models.CheckRun) error {
	if run.HeadSHA == "" {
		return apperrors.ErrPublishCheck.
			WithError(errors.New("head sha is empty")).
			WithContext("ref", run.Ref.String())
	}

	_, resp, err := ghc.checksService.CreateCheckRun(ctx, run.Ref.Owner, run.Ref.Repo, github.CreateCheckRunOptions{
		Name:        run.Name,
		HeadSHA:     run.HeadSHA,
		Status:      github.Ptr("completed"),
		Conclusion:  github.Ptr(string(run.Verdict.Conclusion)),
		CompletedAt: &github.Timestamp{Time: ghc.now()},
		Output: &github.CheckRunOutput{
			Title:   github.Ptr(run.Verdict.Title),
			Summary: github.Ptr(run.Verdict.Summary),
		},
	})
	if err != nil {
		return mapError(err, resp, run.Ref, apperrors.ErrPublishCheck)
	}

	logger.Debug(ctx, "check run published", "pr", run.Ref.String(), "conclusion", string(run.Verdict.Conclusion))
	return nil
}

func (ghc *GitHubClient) GetPullRequest(ctx context.Context, ref models.PRRef) (models.PullRequest, error) {
	pr, resp, err := ghc.prService.Get(ctx, ref.Owner, ref.Repo, ref.Number)
	if err != nil {
		return models.PullRequest{}, mapError(err, resp, ref, apperrors.ErrPullRequestNotFound)
	}

	out := PullRequestFromGitHub(pr)
	out.Ref = ref
	return out, nil
}

// mapError turns a go-github failure into an AppError; fallback is used when
// the status code says nothing more specific.
func mapError(err error, resp *github.Response, ref models.PRRef, fallback *apperrors.AppError) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return apperrors.ErrGitHubRateLimit.WithError(err).WithContext("ref", ref.String())
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return apperrors.ErrGitHubTokenInvalid.WithError(err).WithContext("ref", ref.String())
		case http.StatusForbidden:
			return apperrors.ErrGitHubInsufficientPerms.WithError(err).WithContext("ref", ref.String())
		case http.StatusNotFound:
			return apperrors.ErrPullRequestNotFound.WithError(err).WithContext("ref", ref.String())
		case http.StatusTooManyRequests:
			return apperrors.ErrGitHubRateLimit.WithError(err).WithContext("ref", ref.String())
		}
		return fallback.WithError(err).
			WithContext("ref", ref.String()).
			WithContext("status_code", resp.StatusCode)
	}

	return fallback.WithError(err).WithContext("ref", ref.String())
}
