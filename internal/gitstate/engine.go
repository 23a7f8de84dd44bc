// pattern: Imperative Shell

package gitstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"agentdesk/internal/logging"
)

// ErrAbsolutePath is returned when a caller-supplied diff path is absolute.
// This is the only caller-visible error the engine produces; every tool
// failure degrades to an empty result instead.
var ErrAbsolutePath = errors.New("path must be relative to the project root")

// Engine aggregates working-tree change state for a project. The repository
// root is discovered lazily on first use and cached for the process lifetime;
// a project outside any repository degrades every operation to an empty
// result rather than an error.
type Engine struct {
	projectRoot string
	client      *Client
	logger      *logging.ScopedLogger

	discover sync.Once
	repo     *RepoHandle // nil when not inside a repository
}

// NewEngine creates an Engine rooted at projectRoot.
func NewEngine(projectRoot string, client *Client, logger *logging.ScopedLogger) *Engine {
	return &Engine{
		projectRoot: projectRoot,
		client:      client,
		logger:      logger,
	}
}

// repoHandle resolves the repository containing the project root on first
// use. Discovery is idempotent given the same directory, so the result is
// cached; failure caches "no repository".
func (e *Engine) repoHandle(ctx context.Context) *RepoHandle {
	e.discover.Do(func() {
		root, err := e.client.RepoRoot(ctx, e.projectRoot)
		if err != nil {
			e.logger.Debug("no repository for project", "dir", e.projectRoot, "error", err)
			return
		}
		e.repo = &RepoHandle{Root: root}
	})
	return e.repo
}

// Status returns the unioned list of changed files with per-file line counts.
// Statistics failures degrade to zeroed counts; the listing itself only comes
// up empty if status cannot be read at all. Never returns an error.
func (e *Engine) Status(ctx context.Context) Summary {
	summary := Summary{Files: []ChangedFile{}}

	repo := e.repoHandle(ctx)
	if repo == nil {
		return summary
	}
	summary.Git = true

	out, err := e.client.Status(ctx, repo.Root)
	if err != nil {
		e.logger.Warn("git status failed", "error", err)
		return summary
	}

	entries := parseStatus(out)
	stats := e.collectStats(ctx, repo.Root, entries)

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if seen[entry.Path] {
			continue
		}
		seen[entry.Path] = true

		file := ChangedFile{Path: entry.Path, Status: entry.Status}
		if counts, ok := stats[entry.Path]; ok {
			file.Insertions = counts.insertions
			file.Deletions = counts.deletions
		}
		summary.Files = append(summary.Files, file)
	}

	sort.Slice(summary.Files, func(i, j int) bool {
		return summary.Files[i].Path < summary.Files[j].Path
	})

	for _, file := range summary.Files {
		summary.Insertions += file.Insertions
		summary.Deletions += file.Deletions
	}

	return summary
}

// collectStats merges staged and unstaged numstat summaries, fetched
// concurrently since they are independent commands, then counts lines for
// untracked paths, which numstat never reports. Any failure leaves the
// affected paths without counts.
func (e *Engine) collectStats(ctx context.Context, root string, entries []statusEntry) map[string]lineStats {
	stats := make(map[string]lineStats)

	outputs := make([]string, 2)
	var wg sync.WaitGroup
	for i, staged := range []bool{true, false} {
		wg.Add(1)
		go func(i int, staged bool) {
			defer wg.Done()
			out, err := e.client.DiffSummary(ctx, root, staged)
			if err != nil {
				e.logger.Debug("diff summary failed", "staged", staged, "error", err)
				return
			}
			outputs[i] = out
		}(i, staged)
	}
	wg.Wait()

	for _, out := range outputs {
		accumulateNumstat(out, stats)
	}

	for _, entry := range entries {
		if entry.Status != StatusUntracked {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(entry.Path)))
		if err != nil {
			// The file still appears in the listing, just without counts.
			continue
		}
		stats[entry.Path] = lineStats{insertions: countLines(data)}
	}

	return stats
}

// Diff returns unified-diff text. With a path it concatenates the staged and
// unstaged diffs restricted to that path (staged first), synthesizing an
// all-added diff when the file is untracked. Without a path it returns the
// whole-tree staged+unstaged concatenation, with no untracked synthesis.
// Only an absolute caller-supplied path produces an error.
func (e *Engine) Diff(ctx context.Context, path string) (DiffResult, error) {
	if path != "" && (strings.HasPrefix(path, "/") || filepath.IsAbs(path)) {
		return DiffResult{}, ErrAbsolutePath
	}

	repo := e.repoHandle(ctx)
	if repo == nil {
		return DiffResult{}, nil
	}
	result := DiffResult{Git: true}

	if path == "" {
		staged, unstaged := e.diffPair(ctx, repo.Root, "")
		result.Diff = staged + unstaged
		return result, nil
	}

	abs := filepath.Join(repo.Root, filepath.FromSlash(path))
	if abs != repo.Root && !strings.HasPrefix(abs, repo.Root+string(filepath.Separator)) {
		// Resolved outside the repository; return nothing rather than leak.
		return result, nil
	}
	rel, err := filepath.Rel(repo.Root, abs)
	if err != nil {
		return result, nil
	}
	rel = filepath.ToSlash(rel)

	staged, unstaged := e.diffPair(ctx, repo.Root, rel)
	if staged == "" && unstaged == "" {
		data, err := os.ReadFile(abs)
		if err != nil {
			return result, nil
		}
		result.Diff = synthesizeUntrackedDiff(rel, data)
		return result, nil
	}

	result.Diff = staged + unstaged
	return result, nil
}

// diffPair fetches the staged and unstaged diffs, degrading each to empty on
// failure.
func (e *Engine) diffPair(ctx context.Context, root, path string) (string, string) {
	staged, err := e.client.Diff(ctx, root, true, path)
	if err != nil {
		e.logger.Debug("staged diff failed", "path", path, "error", err)
		staged = ""
	}
	unstaged, err := e.client.Diff(ctx, root, false, path)
	if err != nil {
		e.logger.Debug("unstaged diff failed", "path", path, "error", err)
		unstaged = ""
	}
	return staged, unstaged
}
