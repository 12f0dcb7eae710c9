package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockGitClient is a mock implementation of GitClient for testing.
type MockGitClient struct {
	mock.Mock
}

var _ GitClient = &MockGitClient{} // Compile-time check

// Run implements the GitClient interface. The variadic args are flattened
// into the call record, so expectations list them individually.
func (m *MockGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	called := []any{ctx, repoPath}
	for _, arg := range args {
		called = append(called, arg)
	}
	callArgs := m.Called(called...)
	out, _ := callArgs.Get(0).([]byte)
	return out, callArgs.Error(1)
}

// ResolveRef implements the GitClient interface.
func (m *MockGitClient) ResolveRef(ctx context.Context, repoPath string, ref string) (string, error) {
	args := m.Called(ctx, repoPath, ref)
	return args.String(0), args.Error(1)
}

// GetRepoRoot implements the GitClient interface.
func (m *MockGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	args := m.Called(ctx, contextPath)
	return args.String(0), args.Error(1)
}

// GetHistoryLog implements the GitClient interface.
func (m *MockGitClient) GetHistoryLog(ctx context.Context, repoPath, branch string, maxEntries int, since time.Time) ([]byte, error) {
	args := m.Called(ctx, repoPath, branch, maxEntries, since)
	out, _ := args.Get(0).([]byte)
	return out, args.Error(1)
}
