// pattern: Imperative Shell

package gitstate

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes a version-control command in dir and returns its output.
type Runner func(ctx context.Context, dir string, args ...string) (string, error)

// Client wraps the narrow set of git commands the engine needs: repo-root
// discovery, porcelain status, numstat summaries, and unified diffs. Any
// backend that answers these four questions can stand in via the Runner.
type Client struct {
	run Runner
}

// NewClient creates a Client that shells out to the git binary.
func NewClient() *Client {
	return &Client{run: gitRunner}
}

// NewClientWithRunner creates a Client with the given runner (for testing).
func NewClientWithRunner(run Runner) *Client {
	return &Client{run: run}
}

// RepoRoot returns the top-level directory of the repository containing dir.
func (c *Client) RepoRoot(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	root := strings.TrimSpace(out)
	if root == "" {
		return "", fmt.Errorf("empty repo root for %s", dir)
	}
	return root, nil
}

// Status returns porcelain status output for the working tree at root.
func (c *Client) Status(ctx context.Context, root string) (string, error) {
	return c.run(ctx, root, "status", "--porcelain")
}

// DiffSummary returns numstat output for staged or unstaged changes.
func (c *Client) DiffSummary(ctx context.Context, root string, staged bool) (string, error) {
	args := []string{"diff", "--numstat"}
	if staged {
		args = append(args, "--cached")
	}
	return c.run(ctx, root, args...)
}

// Diff returns unified-diff text for staged or unstaged changes, optionally
// restricted to a single repo-relative path.
func (c *Client) Diff(ctx context.Context, root string, staged bool, path string) (string, error) {
	args := []string{"diff"}
	if staged {
		args = append(args, "--cached")
	}
	if path != "" {
		args = append(args, "--", path)
	}
	return c.run(ctx, root, args...)
}

// gitRunner executes git in dir and returns combined output.
func gitRunner(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(output)), err)
	}
	return string(output), nil
}
