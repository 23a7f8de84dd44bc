// pattern: Imperative Shell

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"agentdesk/internal/gitstate"
)

// FilesResponse is the JSON representation of the editable file listing.
type FilesResponse struct {
	Files []string `json:"files"`
}

// FileResponse is the JSON representation of a single file's content.
type FileResponse struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// WriteFileRequest is the JSON body for writing a file.
type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// writeJSON writes v as JSON with the given HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response with the given status code and
// message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// isAbsolutePath reports whether a caller-supplied path carries a path-root
// marker. Such paths are a client error, checked before any allow-list or
// filesystem work.
func isAbsolutePath(path string) bool {
	return strings.HasPrefix(path, "/") || filepath.IsAbs(path)
}

// handleListFiles handles GET /api/workspace/files.
// Returns the sorted, root-relative editable file listing, recomputed on
// every call.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, FilesResponse{Files: s.resolver.ListFiles()})
}

// handleReadFile handles GET /api/workspace/file?path=.
// Returns 400 for missing or absolute paths, 403 when the path is outside
// every editable pattern, 404 when allowed but absent. The 403/404 split is
// deliberate: content never reveals whether a forbidden path exists.
func (s *Server) handleReadFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if isAbsolutePath(path) {
		writeError(w, http.StatusBadRequest, "path must be relative")
		return
	}
	if !s.resolver.IsAllowed(path) {
		writeError(w, http.StatusForbidden, "path is not editable")
		return
	}

	content, err := s.resolver.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		s.logger.Error("read file failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, FileResponse{Path: path, Content: string(content)})
}

// handleWriteFile handles POST /api/workspace/file.
// Same 400/403 tiers as read; write failures surface as 500 with the
// underlying message since there is no safe default to degrade to.
func (s *Server) handleWriteFile(w http.ResponseWriter, r *http.Request) {
	var req WriteFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if isAbsolutePath(req.Path) {
		writeError(w, http.StatusBadRequest, "path must be relative")
		return
	}
	if !s.resolver.IsAllowed(req.Path) {
		writeError(w, http.StatusForbidden, "path is not editable")
		return
	}

	if err := s.resolver.WriteFile(req.Path, []byte(req.Content)); err != nil {
		s.logger.Error("write file failed", "path", req.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("file written", "path", req.Path)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": req.Path})
}

// handleGitStatus handles GET /api/git/status.
// Always 200: a project outside any repository reports git:false with empty
// collections rather than an error.
func (s *Server) handleGitStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Status(r.Context()))
}

// handleGitDiff handles GET /api/git/diff[?path=].
// With a path the response echoes it back; without one the whole-tree diff
// is returned. Only an absolute path is a client error; every tool failure
// degrades to an empty diff.
func (s *Server) handleGitDiff(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")

	result, err := s.engine.Diff(r.Context(), path)
	if err != nil {
		if errors.Is(err, gitstate.ErrAbsolutePath) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("diff failed", "path", path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !result.Git {
		writeJSON(w, http.StatusOK, map[string]any{"diff": "", "git": false})
		return
	}

	if path != "" {
		writeJSON(w, http.StatusOK, map[string]any{"diff": result.Diff, "path": path})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"diff": result.Diff})
}
