package github

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of APIClient for testing
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) GetLabel(ctx context.Context, repo, name string) (*Label, error) {
	args := m.Called(ctx, repo, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Label), args.Error(1)
}

func (m *MockAPIClient) ListLabels(ctx context.Context, repo string) ([]Label, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Label), args.Error(1)
}

func (m *MockAPIClient) CreateLabel(ctx context.Context, repo string, label LabelSpec) (*Label, error) {
	args := m.Called(ctx, repo, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Label), args.Error(1)
}

func (m *MockAPIClient) UpdateLabel(ctx context.Context, repo, name string, label LabelSpec) (*Label, error) {
	args := m.Called(ctx, repo, name, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Label), args.Error(1)
}

func (m *MockAPIClient) DeleteLabel(ctx context.Context, repo, name string) error {
	args := m.Called(ctx, repo, name)
	return args.Error(0)
}

func (m *MockAPIClient) ListMilestones(ctx context.Context, repo string) ([]Milestone, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Milestone), args.Error(1)
}

func (m *MockAPIClient) CreateMilestone(ctx context.Context, repo string, milestone MilestoneSpec, dueOn *time.Time) (*Milestone, error) {
	args := m.Called(ctx, repo, milestone, dueOn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Milestone), args.Error(1)
}

func (m *MockAPIClient) UpdateMilestone(ctx context.Context, repo string, number int, milestone MilestoneSpec, dueOn *time.Time) (*Milestone, error) {
	args := m.Called(ctx, repo, number, milestone, dueOn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Milestone), args.Error(1)
}

func (m *MockAPIClient) DeleteMilestone(ctx context.Context, repo string, number int) error {
	args := m.Called(ctx, repo, number)
	return args.Error(0)
}

func (m *MockAPIClient) GetSecretPublicKey(ctx context.Context, repo string) (*SecretKey, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SecretKey), args.Error(1)
}

func (m *MockAPIClient) PutSecret(ctx context.Context, repo, name, keyID, encryptedValue string) error {
	args := m.Called(ctx, repo, name, keyID, encryptedValue)
	return args.Error(0)
}

func (m *MockAPIClient) ListRepositories(ctx context.Context, org string) ([]string, error) {
	args := m.Called(ctx, org)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAPIClient) CheckRateLimit(ctx context.Context) (*RateInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RateInfo), args.Error(1)
}

// Ensure the mock stays in step with the interface
var _ APIClient = (*MockAPIClient)(nil)

func notFoundErr(resource string) *GitHubError {
	return &GitHubError{Type: ErrorTypeNotFound, Message: "resource not found", Resource: resource}
}

func validationErr(message string) *GitHubError {
	return &GitHubError{Type: ErrorTypeValidation, Message: message}
}
