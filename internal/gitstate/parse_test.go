package gitstate

import (
	"strings"
	"testing"
)

func TestParseStatus(t *testing.T) {
	output := strings.Join([]string{
		" M modified.go",
		"A  added.go",
		" D deleted.go",
		"R  old.go -> renamed.go",
		"?? untracked.txt",
		"MM both.go",
		`?? "spaced name.txt"`,
	}, "\n") + "\n"

	entries := parseStatus(output)
	if len(entries) != 7 {
		t.Fatalf("len(entries) = %d, want 7", len(entries))
	}

	want := map[string]string{
		"modified.go":     StatusModified,
		"added.go":        StatusAdded,
		"deleted.go":      StatusDeleted,
		"renamed.go":      StatusRenamed,
		"untracked.txt":   StatusUntracked,
		"both.go":         StatusModified,
		"spaced name.txt": StatusUntracked,
	}

	got := make(map[string]string, len(entries))
	for _, e := range entries {
		got[e.Path] = e.Status
	}
	for path, status := range want {
		if got[path] != status {
			t.Errorf("status[%q] = %q, want %q", path, got[path], status)
		}
	}
}

func TestParseStatusSkipsMalformedLines(t *testing.T) {
	entries := parseStatus("x\n\n M ok.go\n")
	if len(entries) != 1 || entries[0].Path != "ok.go" {
		t.Errorf("entries = %v, want single ok.go", entries)
	}
}

func TestAccumulateNumstat(t *testing.T) {
	accum := make(map[string]lineStats)

	// Staged summary
	accumulateNumstat("3\t1\tmain.go\n-\t-\timage.png\n", accum)
	// Unstaged summary adds on top
	accumulateNumstat("2\t4\tmain.go\n5\t0\tother.go\n", accum)

	if got := accum["main.go"]; got.insertions != 5 || got.deletions != 5 {
		t.Errorf("main.go = %+v, want {5 5}", got)
	}
	if got := accum["other.go"]; got.insertions != 5 || got.deletions != 0 {
		t.Errorf("other.go = %+v, want {5 0}", got)
	}
	if _, ok := accum["image.png"]; ok {
		t.Error("binary file should not contribute counts")
	}
}

func TestRenameDestination(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"plain", "readme.md", "readme.md"},
		{"full rename", "old.go => new.go", "new.go"},
		{"shared prefix", "dir/{a.go => b.go}", "dir/b.go"},
		{"shared affixes", "src/{old => new}/util.go", "src/new/util.go"},
		{"segment added", "src/{ => sub}/util.go", "src/sub/util.go"},
		{"segment removed", "src/{sub => }/util.go", "src/util.go"},
		{"braces without rename", "weird{name}.go", "weird{name}.go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renameDestination(tt.path); got != tt.want {
				t.Errorf("renameDestination(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestAccumulateNumstatRenames(t *testing.T) {
	accum := make(map[string]lineStats)

	accumulateNumstat("3\t1\tdir/{a.go => b.go}\n2\t0\told.txt => new.txt\n", accum)

	if got := accum["dir/b.go"]; got.insertions != 3 || got.deletions != 1 {
		t.Errorf("dir/b.go = %+v, want {3 1}", got)
	}
	if got := accum["new.txt"]; got.insertions != 2 || got.deletions != 0 {
		t.Errorf("new.txt = %+v, want {2 0}", got)
	}
	if _, ok := accum["dir/{a.go => b.go}"]; ok {
		t.Error("brace form should not be keyed verbatim")
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"empty", "", 0},
		{"single terminated", "a\n", 1},
		{"single unterminated", "a", 1},
		{"multi", "a\nb\nc\n", 3},
		{"multi unterminated", "a\nb\nc", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := countLines([]byte(tt.data)); got != tt.want {
				t.Errorf("countLines(%q) = %d, want %d", tt.data, got, tt.want)
			}
		})
	}
}

func TestSynthesizeUntrackedDiff(t *testing.T) {
	diff := synthesizeUntrackedDiff("notes.txt", []byte("first\nsecond\n"))

	for _, want := range []string{
		"diff --git a/notes.txt b/notes.txt\n",
		"new file mode 100644\n",
		"--- /dev/null\n",
		"+++ b/notes.txt\n",
		"@@ -0,0 +1,2 @@\n",
		"+first\n",
		"+second\n",
	} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}

	// Every content line is prefixed with +.
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git"),
			strings.HasPrefix(line, "new file mode"),
			strings.HasPrefix(line, "---"),
			strings.HasPrefix(line, "+++"),
			strings.HasPrefix(line, "@@"),
			strings.HasPrefix(line, "\\"):
		default:
			if !strings.HasPrefix(line, "+") {
				t.Errorf("content line %q not prefixed with +", line)
			}
		}
	}
}

func TestSynthesizeUntrackedDiffEmptyFile(t *testing.T) {
	diff := synthesizeUntrackedDiff("empty.txt", nil)
	if strings.Contains(diff, "@@") {
		t.Errorf("empty file should produce no hunk:\n%s", diff)
	}
	if !strings.Contains(diff, "--- /dev/null\n") {
		t.Errorf("diff missing /dev/null header:\n%s", diff)
	}
}

func TestSynthesizeUntrackedDiffNoTrailingNewline(t *testing.T) {
	diff := synthesizeUntrackedDiff("x.txt", []byte("only"))
	if !strings.Contains(diff, "+only\n\\ No newline at end of file\n") {
		t.Errorf("missing no-newline marker:\n%s", diff)
	}
}
