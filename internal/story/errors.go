package story

import "fmt"

// MalformedStoreError reports a persisted store that fails schema
// expectations. StoryIndex is -1 when the problem is a top-level field.
type MalformedStoreError struct {
	Path       string
	Field      string
	StoryIndex int
}

func (e *MalformedStoreError) Error() string {
	if e.StoryIndex >= 0 {
		return fmt.Sprintf("malformed store %s: story %d missing required field %q", e.Path, e.StoryIndex, e.Field)
	}
	return fmt.Sprintf("malformed store %s: missing required field %q", e.Path, e.Field)
}

// UnknownStoryError reports a lookup or mutation that referenced an id
// absent from the store. The store is left unmodified.
type UnknownStoryError struct {
	ID string
}

func (e *UnknownStoryError) Error() string {
	return fmt.Sprintf("unknown story id %q", e.ID)
}
