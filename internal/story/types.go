// Package story provides the typed story store: the persisted requirements
// document that drives the work loop. The store is read and rewritten
// wholesale on every mutation; writes go through an atomic replace so a
// concurrent reader never sees a half-written record.
package story

// Store is the root persisted record for one unit of work (one branch).
type Store struct {
	Project     string  `json:"project"`
	Branch      string  `json:"branch"`
	Description string  `json:"description"`
	Stories     []Story `json:"stories"`
}

// Story is a single work item. Passes is the only field mutated in normal
// operation; everything else is authored content the core never interprets.
type Story struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptanceCriteria"`
	Priority           int      `json:"priority"`
	Passes             bool     `json:"passes"`
	Notes              string   `json:"notes,omitempty"`
}

// Find returns the story with the given id, or nil if no story matches.
// IDs are unique within a store, so the first match is the only match.
func (s *Store) Find(id string) *Story {
	for i := range s.Stories {
		if s.Stories[i].ID == id {
			return &s.Stories[i]
		}
	}
	return nil
}

// Remaining returns the number of incomplete stories.
func (s *Store) Remaining() int {
	n := 0
	for i := range s.Stories {
		if !s.Stories[i].Passes {
			n++
		}
	}
	return n
}
