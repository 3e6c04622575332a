package story

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ternarybob/storyloop/internal/fileutil"
)

// Shadow types with pointer fields so validation can tell an absent required
// field apart from its zero value.
type storeFile struct {
	Project     string       `json:"project"`
	Branch      *string      `json:"branch"`
	Description string       `json:"description"`
	Stories     *[]storyFile `json:"stories"`
}

type storyFile struct {
	ID                 *string  `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	Priority           *int     `json:"priority"`
	Passes             *bool    `json:"passes"`
	Notes              string   `json:"notes"`
}

// Load reads and validates the persisted store at path.
// Missing required fields surface as a MalformedStoreError naming the field.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var raw storeFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse store %s: %w", path, err)
	}

	if raw.Branch == nil {
		return nil, &MalformedStoreError{Path: path, Field: "branch", StoryIndex: -1}
	}
	if raw.Stories == nil {
		return nil, &MalformedStoreError{Path: path, Field: "stories", StoryIndex: -1}
	}

	store := &Store{
		Project:     raw.Project,
		Branch:      *raw.Branch,
		Description: raw.Description,
		Stories:     make([]Story, 0, len(*raw.Stories)),
	}

	for i, sf := range *raw.Stories {
		switch {
		case sf.ID == nil:
			return nil, &MalformedStoreError{Path: path, Field: "id", StoryIndex: i}
		case sf.Priority == nil:
			return nil, &MalformedStoreError{Path: path, Field: "priority", StoryIndex: i}
		case sf.Passes == nil:
			return nil, &MalformedStoreError{Path: path, Field: "passes", StoryIndex: i}
		}
		store.Stories = append(store.Stories, Story{
			ID:                 *sf.ID,
			Title:              sf.Title,
			Description:        sf.Description,
			AcceptanceCriteria: sf.AcceptanceCriteria,
			Priority:           *sf.Priority,
			Passes:             *sf.Passes,
			Notes:              sf.Notes,
		})
	}

	return store, nil
}

// Save serializes the full store to path. The write is
// temp-file-then-rename; there is never a moment where path holds a
// partially written store.
func Save(store *Store, path string) error {
	out := *store
	if out.Stories == nil {
		// A nil slice would serialize as null, which Load rightly rejects.
		out.Stories = []Story{}
	}
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	data = append(data, '\n')

	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	return nil
}

// MarkComplete sets passes=true on the story with the given id, touching
// nothing else. Marking an already-complete story is a no-op success.
// An unknown id returns UnknownStoryError and leaves the store unchanged.
func MarkComplete(store *Store, id string) error {
	st := store.Find(id)
	if st == nil {
		return &UnknownStoryError{ID: id}
	}
	st.Passes = true
	return nil
}
