package github

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/g30r93g/PRereq/internal/errors"
	"github.com/g30r93g/PRereq/internal/models"
)

var dep = models.NewPRRef("acme", "widgets", 3)

func newTestClient() (*GitHubClient, *MockPRService, *MockIssuesService, *MockChecksService) {
	pr := &MockPRService{}
	issues := &MockIssuesService{}
	checks := &MockChecksService{}
	return NewGitHubClientWithServices(pr, issues, checks), pr, issues, checks
}

func response(status int) *github.Response {
	return &github.Response{Response: &http.Response{StatusCode: status}}
}

func TestGitHubClient_DependencyStatus(t *testing.T) {
	t.Run("merged short-circuits", func(t *testing.T) {
		client, mockPR, _, _ := newTestClient()
		mockPR.On("IsMerged", mock.Anything, "acme", "widgets", 3).Return(true, response(204), nil).Once()

		status, err := client.DependencyStatus(context.Background(), dep)

		require.NoError(t, err)
		assert.Equal(t, models.StatusMerged, status)
		mockPR.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	tests := []struct {
		name string
		pr   *github.PullRequest
		want models.DepStatus
	}{
		{name: "open", pr: &github.PullRequest{State: github.Ptr("open")}, want: models.StatusOpen},
		{name: "closed", pr: &github.PullRequest{State: github.Ptr("closed")}, want: models.StatusClosed},
		{name: "draft wins over state", pr: &github.PullRequest{State: github.Ptr("open"), Draft: github.Ptr(true)}, want: models.StatusDraft},
		{name: "merged between calls", pr: &github.PullRequest{State: github.Ptr("closed"), Merged: github.Ptr(true)}, want: models.StatusMerged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, mockPR, _, _ := newTestClient()
			mockPR.On("IsMerged", mock.Anything, "acme", "widgets", 3).Return(false, response(404), nil)
			mockPR.On("Get", mock.Anything, "acme", "widgets", 3).Return(tt.pr, response(200), nil)

			status, err := client.DependencyStatus(context.Background(), dep)

			require.NoError(t, err)
			assert.Equal(t, tt.want, status)
			mockPR.AssertExpectations(t)
		})
	}

	t.Run("not found is unknown without error", func(t *testing.T) {
		client, mockPR, _, _ := newTestClient()
		mockPR.On("IsMerged", mock.Anything, "acme", "widgets", 3).Return(false, response(404), nil)
		mockPR.On("Get", mock.Anything, "acme", "widgets", 3).Return(nil, response(404), errors.New("404 Not Found"))

		status, err := client.DependencyStatus(context.Background(), dep)

		require.NoError(t, err)
		assert.Equal(t, models.StatusUnknown, status)
	})

	t.Run("unauthorized maps to token error", func(t *testing.T) {
		client, mockPR, _, _ := newTestClient()
		mockPR.On("IsMerged", mock.Anything, "acme", "widgets", 3).Return(false, response(401), errors.New("401 Bad credentials"))

		status, err := client.DependencyStatus(context.Background(), dep)

		assert.Equal(t, models.StatusUnknown, status)
		assert.ErrorIs(t, err, apperrors.ErrGitHubTokenInvalid)
	})
}

func TestGitHubClient_ListNotices(t *testing.T) {
	t.Run("follows pagination", func(t *testing.T) {
		client, _, mockIssues, _ := newTestClient()

		page1 := &github.Response{Response: &http.Response{StatusCode: 200}, NextPage: 2}
		mockIssues.On("ListComments", mock.Anything, "acme", "widgets", 3, mock.MatchedBy(func(o *github.IssueListCommentsOptions) bool {
			return o.PerPage == 100 && o.Page == 0
		})).Return([]*github.IssueComment{{Body: github.Ptr("first")}}, page1, nil).Once()
		mockIssues.On("ListComments", mock.Anything, "acme", "widgets", 3, mock.MatchedBy(func(o *github.IssueListCommentsOptions) bool {
			return o.Page == 2
		})).Return([]*github.IssueComment{{Body: github.Ptr("second")}, {}}, response(200), nil).Once()

		bodies, err := client.ListNotices(context.Background(), dep)

		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", ""}, bodies)
		mockIssues.AssertExpectations(t)
	})

	t.Run("maps forbidden", func(t *testing.T) {
		client, _, mockIssues, _ := newTestClient()
		mockIssues.On("ListComments", mock.Anything, "acme", "widgets", 3, mock.Anything).
			Return([]*github.IssueComment(nil), response(403), errors.New("403"))

		_, err := client.ListNotices(context.Background(), dep)

		assert.ErrorIs(t, err, apperrors.ErrGitHubInsufficientPerms)
	})
}

func TestGitHubClient_PostNotice(t *testing.T) {
	client, _, mockIssues, _ := newTestClient()
	mockIssues.On("CreateComment", mock.Anything, "acme", "widgets", 3, mock.MatchedBy(func(c *github.IssueComment) bool {
		return c.GetBody() == "This PR is blocking acme/widgets#1"
	})).Return(&github.IssueComment{}, response(201), nil).Once()

	err := client.PostNotice(context.Background(), dep, "This PR is blocking acme/widgets#1")

	require.NoError(t, err)
	mockIssues.AssertExpectations(t)
}

func TestGitHubClient_PostNotice_RateLimited(t *testing.T) {
	client, _, mockIssues, _ := newTestClient()
	mockIssues.On("CreateComment", mock.Anything, "acme", "widgets", 3, mock.Anything).
		Return((*github.IssueComment)(nil), response(429), errors.New("429"))

	err := client.PostNotice(context.Background(), dep, "x")

	assert.ErrorIs(t, err, apperrors.ErrGitHubRateLimit)
}

func TestGitHubClient_PublishCheck(t *testing.T) {
	t.Run("creates completed check run", func(t *testing.T) {
		client, _, _, mockChecks := newTestClient()
		fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		client.now = func() time.Time { return fixed }

		run := models.CheckRun{
			Ref:     models.NewPRRef("acme", "widgets", 1),
			HeadSHA: "abc123",
			Name:    "PRereq Checks",
			Verdict: models.Verdict{
				Conclusion: models.ConclusionFailure,
				Title:      "Unmet PR Dependencies",
				Summary:    "summary",
			},
		}

		mockChecks.On("CreateCheckRun", mock.Anything, "acme", "widgets", mock.MatchedBy(func(o github.CreateCheckRunOptions) bool {
			return o.Name == "PRereq Checks" &&
				o.HeadSHA == "abc123" &&
				o.GetStatus() == "completed" &&
				o.GetConclusion() == "failure" &&
				o.CompletedAt.Time.Equal(fixed) &&
				o.Output.GetTitle() == "Unmet PR Dependencies" &&
				o.Output.GetSummary() == "summary"
		})).Return(&github.CheckRun{}, response(201), nil).Once()

		err := client.PublishCheck(context.Background(), run)

		require.NoError(t, err)
		mockChecks.AssertExpectations(t)
	})

	t.Run("requires head sha", func(t *testing.T) {
		client, _, _, mockChecks := newTestClient()

		err := client.PublishCheck(context.Background(), models.CheckRun{Ref: dep})

		assert.ErrorIs(t, err, apperrors.ErrPublishCheck)
		mockChecks.AssertNotCalled(t, "CreateCheckRun")
	})

	t.Run("wraps unexpected failures", func(t *testing.T) {
		client, _, _, mockChecks := newTestClient()
		mockChecks.On("CreateCheckRun", mock.Anything, "acme", "widgets", mock.Anything).
			Return((*github.CheckRun)(nil), response(500), errors.New("boom"))

		err := client.PublishCheck(context.Background(), models.CheckRun{Ref: dep, HeadSHA: "sha"})

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrPublishCheck.Message, appErr.Message)
		assert.Equal(t, 500, appErr.Context["status_code"])
	})
}

func TestGitHubClient_GetPullRequest(t *testing.T) {
	client, mockPR, _, _ := newTestClient()
	mockPR.On("Get", mock.Anything, "acme", "widgets", 3).Return(&github.PullRequest{
		Number: github.Ptr(3),
		Title:  github.Ptr("Add gears"),
		Body:   github.Ptr("depends on #2"),
		State:  github.Ptr("open"),
		Labels: []*github.Label{{Name: github.Ptr("skip-prereq")}},
		Head:   &github.PullRequestBranch{SHA: github.Ptr("deadbeef")},
	}, response(200), nil)

	pr, err := client.GetPullRequest(context.Background(), dep)

	require.NoError(t, err)
	assert.Equal(t, dep, pr.Ref)
	assert.Equal(t, "Add gears\ndepends on #2", pr.Text())
	assert.Equal(t, []string{"skip-prereq"}, pr.Labels)
	assert.Equal(t, "deadbeef", pr.HeadSHA)
}

func TestGitHubClient_GetPullRequest_NotFound(t *testing.T) {
	client, mockPR, _, _ := newTestClient()
	mockPR.On("Get", mock.Anything, "acme", "widgets", 3).Return(nil, response(404), errors.New("404"))

	_, err := client.GetPullRequest(context.Background(), dep)

	assert.ErrorIs(t, err, apperrors.ErrPullRequestNotFound)
}

func TestMapError_RateLimitError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "https://api.github.com/repos/acme/widgets/pulls/3", nil)
	rateErr := &github.RateLimitError{
		Response: &http.Response{StatusCode: 403, Request: req},
		Message:  "API rate limit exceeded",
	}

	err := mapError(rateErr, response(403), dep, apperrors.ErrPublishCheck)

	assert.ErrorIs(t, err, apperrors.ErrGitHubRateLimit)
}

func TestPullRequestFromGitHub(t *testing.T) {
	pr := PullRequestFromGitHub(&github.PullRequest{
		Number: github.Ptr(12),
		Title:  github.Ptr("t"),
		Draft:  github.Ptr(true),
		Base: &github.PullRequestBranch{Repo: &github.Repository{
			Name:  github.Ptr("widgets"),
			Owner: &github.User{Login: github.Ptr("acme")},
		}},
	})

	assert.Equal(t, models.NewPRRef("acme", "widgets", 12), pr.Ref)
	assert.True(t, pr.Draft)
	assert.Empty(t, pr.Labels)
	assert.Equal(t, "t\n", pr.Text())
}
