package loop

import (
	"github.com/ternarybob/storyloop/internal/fileutil"
	"github.com/ternarybob/storyloop/internal/story"
)

// DefaultTemplate is the starter work-prompt template written by Scaffold.
// Every recognized placeholder appears once so authors can see the full set.
const DefaultTemplate = `# Work Item: [STORY_TITLE]

Project: [PROJECT_NAME]
Branch: [BRANCH_NAME]
Story: [STORY_ID] (priority [STORY_PRIORITY])

## Feature

[FEATURE_DESCRIPTION]

## Story

[STORY_DESCRIPTION]

## Acceptance Criteria

[ACCEPTANCE_CRITERIA]

Implement exactly one story, run the project's quality gates, then report
completion with: storyloop complete [STORY_ID]
`

// Scaffold writes a starter story store and prompt template for a new
// project. Existing files are left untouched, so running init twice is safe.
func (l *Loop) Scaffold(project, branch string) error {
	if !fileutil.Exists(l.cfg.StorePath()) {
		store := &story.Store{
			Project:     project,
			Branch:      branch,
			Description: "",
			Stories:     []story.Story{},
		}
		if err := story.Save(store, l.cfg.StorePath()); err != nil {
			return err
		}
	}

	if !fileutil.Exists(l.cfg.TemplatePath()) {
		if err := fileutil.WriteFileAtomic(l.cfg.TemplatePath(), []byte(DefaultTemplate)); err != nil {
			return err
		}
	}

	return nil
}
