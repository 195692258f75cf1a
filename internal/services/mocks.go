package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/g30r93g/PRereq/internal/models"
)

type (
	MockStatusLookup struct {
		mock.Mock
	}

	MockNoticeClient struct {
		mock.Mock
	}

	MockCheckPublisher struct {
		mock.Mock
	}

	MockPRFetcher struct {
		mock.Mock
	}

	// MockVCSClient satisfies vcs.Client with a single set of expectations.
	MockVCSClient struct {
		mock.Mock
	}
)

func (m *MockStatusLookup) DependencyStatus(ctx context.Context, ref models.PRRef) (models.DepStatus, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(models.DepStatus), args.Error(1)
}

func (m *MockNoticeClient) ListNotices(ctx context.Context, ref models.PRRef) ([]string, error) {
	args := m.Called(ctx, ref)
	var bodies []string
	if v := args.Get(0); v != nil {
		bodies = v.([]string)
	}
	return bodies, args.Error(1)
}

func (m *MockNoticeClient) PostNotice(ctx context.Context, ref models.PRRef, body string) error {
	args := m.Called(ctx, ref, body)
	return args.Error(0)
}

func (m *MockCheckPublisher) PublishCheck(ctx context.Context, run models.CheckRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockPRFetcher) GetPullRequest(ctx context.Context, ref models.PRRef) (models.PullRequest, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(models.PullRequest), args.Error(1)
}

func (m *MockVCSClient) DependencyStatus(ctx context.Context, ref models.PRRef) (models.DepStatus, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(models.DepStatus), args.Error(1)
}

func (m *MockVCSClient) ListNotices(ctx context.Context, ref models.PRRef) ([]string, error) {
	args := m.Called(ctx, ref)
	var bodies []string
	if v := args.Get(0); v != nil {
		bodies = v.([]string)
	}
	return bodies, args.Error(1)
}

func (m *MockVCSClient) PostNotice(ctx context.Context, ref models.PRRef, body string) error {
	args := m.Called(ctx, ref, body)
	return args.Error(0)
}

func (m *MockVCSClient) PublishCheck(ctx context.Context, run models.CheckRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockVCSClient) GetPullRequest(ctx context.Context, ref models.PRRef) (models.PullRequest, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(models.PullRequest), args.Error(1)
}
