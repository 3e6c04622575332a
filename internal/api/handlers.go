package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ternarybob/storyloop/internal/loop"
	"github.com/ternarybob/storyloop/internal/story"
)

// version is set via -ldflags at build time
var version = "dev"

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
}

// HealthResponse is the response for /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// VersionResponse is the response for /version.
type VersionResponse struct {
	Version string `json:"version"`
	Service string `json:"service"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StoryResponse represents a story in API responses.
type StoryResponse struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
	Priority           int      `json:"priority"`
	Passes             bool     `json:"passes"`
	Notes              string   `json:"notes,omitempty"`
}

// StoriesResponse wraps the story list.
type StoriesResponse struct {
	Project string          `json:"project"`
	Branch  string          `json:"branch"`
	Stories []StoryResponse `json:"stories"`
	Total   int             `json:"total"`
}

// PromptResponse wraps a rendered work prompt.
type PromptResponse struct {
	StoryID string `json:"story_id"`
	Prompt  string `json:"prompt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{
		Version: version,
		Service: "storyloop-service",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.loop.Status()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	store, err := s.loop.Stories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := StoriesResponse{
		Project: store.Project,
		Branch:  store.Branch,
		Stories: make([]StoryResponse, 0, len(store.Stories)),
		Total:   len(store.Stories),
	}
	for _, st := range store.Stories {
		response.Stories = append(response.Stories, toStoryResponse(st))
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	store, err := s.loop.Stories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	st := store.Find(id)
	if st == nil {
		writeError(w, http.StatusNotFound, "story not found: "+id)
		return
	}

	writeJSON(w, http.StatusOK, toStoryResponse(*st))
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	status, err := s.loop.Status()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rendered, err := s.loop.NextPrompt()
	if err != nil {
		// All complete is a normal condition, not a server failure.
		if errors.Is(err, loop.ErrNoIncompleteStory) {
			writeError(w, http.StatusConflict, "all stories complete")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, PromptResponse{
		StoryID: status.NextID,
		Prompt:  rendered,
	})
}

func toStoryResponse(st story.Story) StoryResponse {
	return StoryResponse{
		ID:                 st.ID,
		Title:              st.Title,
		Description:        st.Description,
		AcceptanceCriteria: st.AcceptanceCriteria,
		Priority:           st.Priority,
		Passes:             st.Passes,
		Notes:              st.Notes,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
