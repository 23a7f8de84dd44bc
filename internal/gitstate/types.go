// pattern: Functional Core

package gitstate

// File statuses reported in a Summary. Renamed files are recorded under
// their destination path; untracked files carry StatusUntracked.
const (
	StatusModified  = "M"
	StatusAdded     = "A"
	StatusDeleted   = "D"
	StatusRenamed   = "R"
	StatusUntracked = "?"
)

// ChangedFile is one working-tree change with its per-file line counts.
type ChangedFile struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	Insertions int    `json:"insertions"`
	Deletions  int    `json:"deletions"`
}

// Summary is the aggregated change state of a working tree.
// Git is false when the project is not inside a repository; in that case
// Files is empty and all counts are zero.
type Summary struct {
	Files      []ChangedFile `json:"files"`
	Git        bool          `json:"git"`
	Insertions int           `json:"insertions"`
	Deletions  int           `json:"deletions"`
}

// DiffResult is unified-diff text for a path or for the whole tree.
// Git is false when the project is not inside a repository.
type DiffResult struct {
	Diff string
	Git  bool
}

// RepoHandle identifies a discovered repository. The root may differ from
// the project root when the project lives in a subdirectory of the repo.
type RepoHandle struct {
	Root string
}

// lineStats accumulates insertion/deletion counts for a single path.
// Staged and unstaged summaries both contribute, so values add.
type lineStats struct {
	insertions int
	deletions  int
}
