// pattern: Functional Core

package gitstate

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// statusEntry is one parsed line of porcelain status output.
type statusEntry struct {
	Path   string
	Status string
}

// parseStatus parses `git status --porcelain` output into categorized
// entries, preserving line order. Renamed files are recorded under their
// destination path.
func parseStatus(output string) []statusEntry {
	var entries []statusEntry

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 4 {
			continue
		}

		code := line[:2]
		path := strings.TrimSpace(line[3:])
		if path == "" {
			continue
		}

		// Renames appear as "old -> new"; the change lives at the destination.
		if idx := strings.LastIndex(path, " -> "); idx >= 0 {
			path = path[idx+len(" -> "):]
		}

		// Git quotes paths containing special characters.
		if strings.HasPrefix(path, `"`) {
			if decoded, err := strconv.Unquote(path); err == nil {
				path = decoded
			}
		}

		entries = append(entries, statusEntry{Path: path, Status: classifyStatus(code)})
	}

	return entries
}

// classifyStatus collapses a two-letter porcelain XY code into one of the
// five reported statuses. The staged and unstaged columns are considered
// together; rename and delete win over add, everything else is a modify.
func classifyStatus(code string) string {
	switch {
	case code == "??":
		return StatusUntracked
	case strings.Contains(code, "R"):
		return StatusRenamed
	case strings.Contains(code, "D"):
		return StatusDeleted
	case strings.Contains(code, "A"):
		return StatusAdded
	default:
		return StatusModified
	}
}

// accumulateNumstat folds `git diff --numstat` output into accum, adding to
// any counts already present. Binary files report "-" and contribute nothing.
func accumulateNumstat(output string, accum map[string]lineStats) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		parts := strings.SplitN(scanner.Text(), "\t", 3)
		if len(parts) < 3 {
			continue
		}

		insertions, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		deletions, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}

		path := strings.TrimSpace(parts[2])
		if path == "" {
			continue
		}
		path = renameDestination(path)

		stats := accum[path]
		stats.insertions += insertions
		stats.deletions += deletions
		accum[path] = stats
	}
}

// renameDestination resolves a numstat rename path to its destination so
// counts merge with the destination paths parseStatus reports. Renames appear
// as "old => new", or as "prefix{old => new}suffix" when the two paths share
// affixes; either side inside the braces may be empty.
func renameDestination(path string) string {
	if open := strings.Index(path, "{"); open >= 0 {
		if end := strings.Index(path[open:], "}"); end >= 0 {
			inner := path[open+1 : open+end]
			if idx := strings.Index(inner, " => "); idx >= 0 {
				dest := path[:open] + inner[idx+len(" => "):] + path[open+end+1:]
				return strings.ReplaceAll(dest, "//", "/")
			}
		}
	}
	if idx := strings.LastIndex(path, " => "); idx >= 0 {
		return path[idx+len(" => "):]
	}
	return path
}

// countLines reports how many lines data contains. A trailing newline does
// not start an extra line; an unterminated final line still counts.
func countLines(data []byte) int {
	if len(data) == 0 {
		return 0
	}
	n := strings.Count(string(data), "\n")
	if data[len(data)-1] != '\n' {
		n++
	}
	return n
}

// synthesizeUntrackedDiff renders an untracked file as a unified diff of its
// entire content against /dev/null, the same shape `git diff` produces for a
// newly added file.
func synthesizeUntrackedDiff(path string, content []byte) string {
	var sb strings.Builder

	lines := countLines(content)

	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", path, path)
	sb.WriteString("new file mode 100644\n")
	sb.WriteString("--- /dev/null\n")
	fmt.Fprintf(&sb, "+++ b/%s\n", path)

	if lines == 0 {
		return sb.String()
	}

	fmt.Fprintf(&sb, "@@ -0,0 +1,%d @@\n", lines)

	text := string(content)
	trailingNewline := strings.HasSuffix(text, "\n")
	text = strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(text, "\n") {
		sb.WriteString("+")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	if !trailingNewline {
		sb.WriteString("\\ No newline at end of file\n")
	}

	return sb.String()
}
