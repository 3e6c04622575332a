// Package loop sequences one iteration of the work loop: archive rotation,
// completion check, story selection, and prompt materialization. Every
// operation loads fresh state from disk, so each one can run as its own
// process invocation with nothing shared in memory.
package loop

import (
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/storyloop/internal/archive"
	"github.com/ternarybob/storyloop/internal/config"
	"github.com/ternarybob/storyloop/internal/logger"
	"github.com/ternarybob/storyloop/internal/progress"
	"github.com/ternarybob/storyloop/internal/prompt"
	"github.com/ternarybob/storyloop/internal/story"
)

// ErrNoIncompleteStory signals that every story passes. It marks the normal
// loop-exit condition for the driver, never a failure.
var ErrNoIncompleteStory = errors.New("no incomplete story remains")

// Loop exposes the driver operations. It holds no state between calls beyond
// the configuration paths; the story store, marker, and progress log are
// read and rewritten per call.
type Loop struct {
	cfg *config.Config
	log arbor.ILogger
}

// New creates a loop over the configured project.
func New(cfg *config.Config) *Loop {
	return &Loop{
		cfg: cfg,
		log: logger.GetLogger(),
	}
}

// Config returns the configuration the loop operates over.
func (l *Loop) Config() *config.Config {
	return l.cfg
}

// Status is a point-in-time summary of the store for display surfaces.
type Status struct {
	Project   string `json:"project"`
	Branch    string `json:"branch"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
	Done      bool   `json:"done"`
	NextID    string `json:"next_id,omitempty"`
}

// Initialize runs archive rotation against the current store branch and
// ensures the progress log exists. Safe to call at the start of every loop
// iteration; with no branch change it settles into a no-op.
func (l *Loop) Initialize() error {
	store, err := l.load()
	if err != nil {
		return err
	}

	mgr := archive.NewManager(l.cfg.MarkerPath(), l.cfg.StorePath(), l.cfg.ProgressPath(), l.cfg.ArchiveDir())
	archived, err := mgr.Rotate(store.Branch, store.Project)
	if err != nil {
		return fmt.Errorf("rotate archive: %w", err)
	}
	if archived != "" {
		l.log.Info().Str("folder", archived).Msg("Previous unit of work archived")
	}

	if err := progress.Ensure(l.cfg.ProgressPath(), store.Project); err != nil {
		return fmt.Errorf("ensure progress log: %w", err)
	}
	return nil
}

// IsDone reports whether every story in the store passes.
func (l *Loop) IsDone() (bool, error) {
	store, err := l.load()
	if err != nil {
		return false, err
	}
	return story.Done(store), nil
}

// NextPrompt selects the next story and renders the work prompt for it.
// Returns ErrNoIncompleteStory when the terminal state has been reached;
// callers should check IsDone first and treat the sentinel as loop exit.
func (l *Loop) NextPrompt() (string, error) {
	store, err := l.load()
	if err != nil {
		return "", err
	}

	next := story.Next(store)
	if next == nil {
		return "", ErrNoIncompleteStory
	}

	meta := prompt.Meta{
		Project:     store.Project,
		Branch:      store.Branch,
		Description: store.Description,
	}
	return prompt.RenderFile(l.cfg.TemplatePath(), next, meta)
}

// Complete marks the story with the given id as passing and persists the
// full store atomically. Unknown ids fail with no effect on disk; completing
// an already-complete story succeeds.
func (l *Loop) Complete(id string) error {
	store, err := l.load()
	if err != nil {
		return err
	}

	if err := story.MarkComplete(store, id); err != nil {
		return err
	}
	if err := story.Save(store, l.cfg.StorePath()); err != nil {
		return err
	}

	l.log.Info().Str("story", id).Int("remaining", store.Remaining()).Msg("Story marked complete")
	return nil
}

// Status summarizes the current store.
func (l *Loop) Status() (*Status, error) {
	store, err := l.load()
	if err != nil {
		return nil, err
	}

	st := &Status{
		Project:   store.Project,
		Branch:    store.Branch,
		Total:     len(store.Stories),
		Remaining: store.Remaining(),
		Done:      story.Done(store),
	}
	if next := story.Next(store); next != nil {
		st.NextID = next.ID
	}
	return st, nil
}

// Stories returns a copy of the stories in the current store.
func (l *Loop) Stories() (*story.Store, error) {
	return l.load()
}

// LogProgress appends an entry to the progress log.
func (l *Loop) LogProgress(entry string) error {
	return progress.Append(l.cfg.ProgressPath(), entry)
}

func (l *Loop) load() (*story.Store, error) {
	return story.Load(l.cfg.StorePath())
}
