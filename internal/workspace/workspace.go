// pattern: Imperative Shell

package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// skipDirs are subtree names never enumerated at any depth: dependency
// caches and version-control metadata.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// SkipDir reports whether a directory name is excluded from enumeration
// and watching.
func SkipDir(name string) bool {
	return skipDirs[name]
}

// Resolver decides which files under a project root an external agent may
// read or write, from a configured list of editable patterns. Patterns name
// files or directories relative to the project root and are resolved once;
// file listings are recomputed on every call since the tree changes between
// requests.
type Resolver struct {
	root     string
	patterns []string
	extra    *gitignore.GitIgnore // optional extra listing excludes
}

// NewResolver creates a Resolver for projectRoot. ignoreRules are optional
// gitignore-syntax lines excluded from listings on top of skipDirs; they do
// not affect the allow-list check.
func NewResolver(projectRoot string, patterns []string, ignoreRules []string) *Resolver {
	r := &Resolver{
		root:     projectRoot,
		patterns: ResolvePatterns(patterns, projectRoot),
	}
	if len(ignoreRules) > 0 {
		r.extra = gitignore.CompileIgnoreLines(ignoreRules...)
	}
	return r
}

// ResolvePatterns joins each configured pattern onto the project root. Pure
// path arithmetic: malformed patterns resolve to paths that simply fail
// later existence checks.
func ResolvePatterns(patterns []string, projectRoot string) []string {
	resolved := make([]string, 0, len(patterns))
	for _, p := range patterns {
		resolved = append(resolved, filepath.Join(projectRoot, filepath.FromSlash(p)))
	}
	return resolved
}

// Root returns the project root.
func (r *Resolver) Root() string {
	return r.root
}

// Patterns returns the resolved absolute pattern paths.
func (r *Resolver) Patterns() []string {
	return r.patterns
}

// ListFiles expands every pattern into root-relative file paths: a file
// pattern contributes itself, a directory pattern contributes every file
// under it except skipDirs subtrees. Absent patterns and unreadable subtrees
// contribute nothing; partial results beat total failure. The result is
// deduplicated and sorted.
func (r *Resolver) ListFiles() []string {
	seen := make(map[string]bool)

	for _, pattern := range r.patterns {
		info, err := os.Stat(pattern)
		if err != nil {
			continue
		}

		if !info.IsDir() {
			r.collect(seen, pattern)
			continue
		}

		_ = filepath.WalkDir(pattern, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtree: drop it, keep the rest.
				return nil
			}
			if d.IsDir() {
				if skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			r.collect(seen, path)
			return nil
		})
	}

	files := make([]string, 0, len(seen))
	for path := range seen {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// collect records an absolute file path as root-relative, honoring the
// optional extra ignore rules.
func (r *Resolver) collect(seen map[string]bool, abs string) {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if r.extra != nil && r.extra.MatchesPath(rel) {
		return
	}
	seen[rel] = true
}

// IsAllowed reports whether a root-relative query path is covered by some
// pattern. Absolute paths are rejected outright. A directory pattern covers
// everything strictly below it; a file pattern covers exactly itself. A
// pattern absent from disk is still honored structurally, since files created
// under it later must remain writable.
func (r *Resolver) IsAllowed(query string) bool {
	if query == "" {
		return false
	}
	if strings.HasPrefix(query, "/") || filepath.IsAbs(query) {
		return false
	}

	abs := filepath.Join(r.root, filepath.FromSlash(query))
	sep := string(filepath.Separator)

	for _, pattern := range r.patterns {
		info, err := os.Stat(pattern)
		switch {
		case err == nil && info.IsDir():
			if strings.HasPrefix(abs, pattern+sep) {
				return true
			}
		case err == nil:
			if abs == pattern {
				return true
			}
		default:
			if abs == pattern || strings.HasPrefix(abs, pattern+sep) {
				return true
			}
		}
	}

	return false
}

// ReadFile reads a root-relative path. Callers must check IsAllowed first.
func (r *Resolver) ReadFile(rel string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.root, filepath.FromSlash(rel)))
}

// WriteFile writes a root-relative path, creating parent directories so new
// files under an allowed directory pattern can come into existence. Callers
// must check IsAllowed first. No serialization of concurrent writers here;
// the layer assumes a single editor at a time.
func (r *Resolver) WriteFile(rel string, content []byte) error {
	abs := filepath.Join(r.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return err
	}
	return os.WriteFile(abs, content, 0644)
}
