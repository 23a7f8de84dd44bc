package gitstate_test

import (
	"context"
	"slices"
	"testing"

	"agentdesk/internal/gitstate"
)

func TestClientRepoRootTrimsOutput(t *testing.T) {
	client := gitstate.NewClientWithRunner(func(_ context.Context, _ string, args ...string) (string, error) {
		want := []string{"rev-parse", "--show-toplevel"}
		if !slices.Equal(args, want) {
			t.Errorf("args = %v, want %v", args, want)
		}
		return "/home/user/project\n", nil
	})

	root, err := client.RepoRoot(context.Background(), "/home/user/project/sub")
	if err != nil {
		t.Fatalf("RepoRoot error = %v", err)
	}
	if root != "/home/user/project" {
		t.Errorf("root = %q, want /home/user/project", root)
	}
}

func TestClientRepoRootEmptyOutput(t *testing.T) {
	client := gitstate.NewClientWithRunner(func(_ context.Context, _ string, _ ...string) (string, error) {
		return "\n", nil
	})

	if _, err := client.RepoRoot(context.Background(), "/tmp"); err == nil {
		t.Error("RepoRoot error = nil, want error for empty output")
	}
}

func TestClientDiffArgs(t *testing.T) {
	tests := []struct {
		name   string
		staged bool
		path   string
		want   []string
	}{
		{"unstaged whole tree", false, "", []string{"diff"}},
		{"staged whole tree", true, "", []string{"diff", "--cached"}},
		{"unstaged scoped", false, "a.go", []string{"diff", "--", "a.go"}},
		{"staged scoped", true, "a.go", []string{"diff", "--cached", "--", "a.go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			client := gitstate.NewClientWithRunner(func(_ context.Context, _ string, args ...string) (string, error) {
				got = args
				return "", nil
			})

			if _, err := client.Diff(context.Background(), "/repo", tt.staged, tt.path); err != nil {
				t.Fatalf("Diff error = %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("args = %v, want %v", got, tt.want)
			}
		})
	}
}
