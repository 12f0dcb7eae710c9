package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// LocalGitClient implements the GitClient interface by executing the
// local 'git' binary installed on the machine.
type LocalGitClient struct{}

var _ GitClient = &LocalGitClient{} // Compile-time check

// NewLocalGitClient creates a new instance of the local Git client.
func NewLocalGitClient() *LocalGitClient {
	return &LocalGitClient{}
}

// Run executes a git command and returns its stdout output.
func (c *LocalGitClient) Run(ctx context.Context, repoPath string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git command failed in %q: %s", repoPath, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// ResolveRef implements the GitClient interface.
func (c *LocalGitClient) ResolveRef(ctx context.Context, repoPath string, ref string) (string, error) {
	out, err := c.Run(ctx, repoPath, "rev-parse", "--verify", ref)
	if err != nil {
		return "", fmt.Errorf("branch %q not found in %q: %w", ref, repoPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetRepoRoot implements the GitClient interface.
func (c *LocalGitClient) GetRepoRoot(ctx context.Context, contextPath string) (string, error) {
	out, err := c.Run(ctx, contextPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%q is not a Git working copy: %w", contextPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// GetHistoryLog implements the GitClient interface. The output interleaves
// commit headers ("--author|unixtime|subject") with numstat lines
// ("added\tremoved\tpath"), one commit block at a time.
func (c *LocalGitClient) GetHistoryLog(ctx context.Context, repoPath, branch string, maxEntries int, since time.Time) ([]byte, error) {
	args := []string{
		"log", branch,
		"--numstat",
		"--pretty=format:--%an|%at|%s",
	}
	if maxEntries > 0 {
		args = append(args, fmt.Sprintf("-n%d", maxEntries))
	}
	if !since.IsZero() {
		args = append(args, "--since="+since.Format(time.RFC3339))
	}
	return c.Run(ctx, repoPath, args...)
}

// ValidateRepo fails fast when the repository path does not exist, is not a
// valid Git working copy, or the requested branch cannot be resolved. Each
// condition surfaces a distinct error naming the offending input.
func ValidateRepo(ctx context.Context, client GitClient, repoPath, branch string) error {
	if _, err := os.Stat(repoPath); err != nil {
		return fmt.Errorf("repository path %q does not exist", repoPath)
	}
	if _, err := client.GetRepoRoot(ctx, repoPath); err != nil {
		return err
	}
	if _, err := client.ResolveRef(ctx, repoPath, branch); err != nil {
		return err
	}
	return nil
}
