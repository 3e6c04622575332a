// Package prompt materializes work instructions from a plain-text template
// by substituting bracket-delimited placeholders with story and store values.
package prompt

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ternarybob/storyloop/internal/story"
)

// Placeholders recognized by the renderer. Templates may contain other
// bracketed text; anything the renderer does not recognize is left untouched
// so templates can be extended without breaking older binaries.
const (
	PlaceholderStoryID            = "[STORY_ID]"
	PlaceholderStoryTitle         = "[STORY_TITLE]"
	PlaceholderStoryPriority      = "[STORY_PRIORITY]"
	PlaceholderStoryDescription   = "[STORY_DESCRIPTION]"
	PlaceholderAcceptanceCriteria = "[ACCEPTANCE_CRITERIA]"
	PlaceholderProjectName        = "[PROJECT_NAME]"
	PlaceholderBranchName         = "[BRANCH_NAME]"
	PlaceholderFeatureDescription = "[FEATURE_DESCRIPTION]"
)

// Meta carries the store-level values available to templates.
type Meta struct {
	Project     string
	Branch      string
	Description string
}

// MissingTemplateError reports a template source that could not be read.
type MissingTemplateError struct {
	Path string
	Err  error
}

func (e *MissingTemplateError) Error() string {
	return fmt.Sprintf("prompt template %s: %v", e.Path, e.Err)
}

func (e *MissingTemplateError) Unwrap() error {
	return e.Err
}

// Render substitutes every recognized placeholder in template with its value.
// The acceptance-criteria placeholder expands to one "- " bullet line per
// criterion in authored order. Render is a pure function of its inputs.
func Render(template string, st *story.Story, meta Meta) string {
	criteria := make([]string, len(st.AcceptanceCriteria))
	for i, c := range st.AcceptanceCriteria {
		criteria[i] = "- " + c
	}

	// Replacer substitutes each placeholder exactly, left to right, without
	// rescanning replaced text.
	r := strings.NewReplacer(
		PlaceholderStoryID, st.ID,
		PlaceholderStoryTitle, st.Title,
		PlaceholderStoryPriority, strconv.Itoa(st.Priority),
		PlaceholderStoryDescription, st.Description,
		PlaceholderAcceptanceCriteria, strings.Join(criteria, "\n"),
		PlaceholderProjectName, meta.Project,
		PlaceholderBranchName, meta.Branch,
		PlaceholderFeatureDescription, meta.Description,
	)
	return r.Replace(template)
}

// RenderFile reads the template at path and renders it.
func RenderFile(path string, st *story.Story, meta Meta) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &MissingTemplateError{Path: path, Err: err}
	}
	return Render(string(data), st, meta), nil
}
