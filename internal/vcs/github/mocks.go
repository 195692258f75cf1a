package github

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockPRService struct {
	mock.Mock
}

func (m *MockPRService) Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number)
	var pr *github.PullRequest
	if v := args.Get(0); v != nil {
		pr = v.(*github.PullRequest)
	}
	var resp *github.Response
	if v := args.Get(1); v != nil {
		resp = v.(*github.Response)
	}
	return pr, resp, args.Error(2)
}

func (m *MockPRService) IsMerged(ctx context.Context, owner, repo string, number int) (bool, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number)
	var resp *github.Response
	if v := args.Get(1); v != nil {
		resp = v.(*github.Response)
	}
	return args.Bool(0), resp, args.Error(2)
}

type MockIssuesService struct {
	mock.Mock
}

func (m *MockIssuesService) ListComments(ctx context.Context, owner, repo string, number int, opts *github.IssueListCommentsOptions) ([]*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	var resp *github.Response
	if v := args.Get(1); v != nil {
		resp = v.(*github.Response)
	}
	return args.Get(0).([]*github.IssueComment), resp, args.Error(2)
}

func (m *MockIssuesService) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, comment)
	var resp *github.Response
	if v := args.Get(1); v != nil {
		resp = v.(*github.Response)
	}
	return args.Get(0).(*github.IssueComment), resp, args.Error(2)
}

type MockChecksService struct {
	mock.Mock
}

func (m *MockChecksService) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, *github.Response, error) {
	args := m.Called(ctx, owner, repo, opts)
	var resp *github.Response
	if v := args.Get(1); v != nil {
		resp = v.(*github.Response)
	}
	return args.Get(0).(*github.CheckRun), resp, args.Error(2)
}

type MockAppsService struct {
	mock.Mock
}

func (m *MockAppsService) CreateInstallationToken(ctx context.Context, id int64, opts *github.InstallationTokenOptions) (*github.InstallationToken, *github.Response, error) {
	args := m.Called(ctx, id, opts)
	var tok *github.InstallationToken
	if v := args.Get(0); v != nil {
		tok = v.(*github.InstallationToken)
	}
	return tok, nil, args.Error(2)
}
