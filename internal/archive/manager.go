// Package archive preserves a finished unit of work before its state is
// reset for the next one. A branch change between runs triggers a snapshot
// of the story store and progress log into a dated archive folder.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/storyloop/internal/fileutil"
	"github.com/ternarybob/storyloop/internal/logger"
	"github.com/ternarybob/storyloop/internal/progress"
)

// Manager detects branch changes via a persisted marker and snapshots the
// previous branch's final state. All paths are explicit so the manager is
// testable against a temp directory with no ambient state.
type Manager struct {
	MarkerPath   string
	StorePath    string
	ProgressPath string
	ArchiveDir   string

	// Now is the clock used for archive folder names and log headers.
	// Defaults to time.Now.
	Now func() time.Time

	log arbor.ILogger
}

// NewManager creates a manager over the given persisted records.
func NewManager(markerPath, storePath, progressPath, archiveDir string) *Manager {
	return &Manager{
		MarkerPath:   markerPath,
		StorePath:    storePath,
		ProgressPath: progressPath,
		ArchiveDir:   archiveDir,
		Now:          time.Now,
		log:          logger.GetLogger(),
	}
}

// Rotate compares the current branch against the last-seen marker and, on a
// change, archives the previous branch's store and progress log and resets
// the log. The marker is always rewritten to the current branch. Returns the
// archive folder path when a snapshot was taken, or "" otherwise.
//
// Rotate is idempotent: a second call with the same branch is a no-op.
func (m *Manager) Rotate(currentBranch, project string) (string, error) {
	last, hasMarker, err := m.readMarker()
	if err != nil {
		return "", err
	}

	// First run: record the branch, nothing to archive.
	if !hasMarker {
		return "", m.writeMarker(currentBranch)
	}

	if last == currentBranch {
		return "", m.writeMarker(currentBranch)
	}

	archived := ""
	if last != "" && currentBranch != "" {
		archived = m.snapshot(last)
		if err := progress.Reset(m.ProgressPath, project); err != nil {
			return archived, fmt.Errorf("reset progress log: %w", err)
		}
	}

	if err := m.writeMarker(currentBranch); err != nil {
		return archived, err
	}
	return archived, nil
}

// snapshot copies the store and progress log into a dated folder named after
// the previous branch. Copy failures are logged and skipped; losing a
// snapshot never blocks the new unit of work.
func (m *Manager) snapshot(prevBranch string) string {
	folder := fmt.Sprintf("%s-%s", m.Now().Format("2006-01-02"), FolderName(prevBranch))
	dest := filepath.Join(m.ArchiveDir, folder)

	if err := fileutil.EnsureDir(dest); err != nil {
		m.log.Warn().Err(err).Str("dest", dest).Msg("Cannot create archive folder, skipping snapshot")
		return ""
	}

	for _, src := range []string{m.StorePath, m.ProgressPath} {
		if !fileutil.IsFile(src) {
			m.log.Warn().Str("src", src).Msg("Archive source missing, skipping")
			continue
		}
		if err := fileutil.CopyFile(src, filepath.Join(dest, filepath.Base(src))); err != nil {
			m.log.Warn().Err(err).Str("src", src).Msg("Archive copy failed, skipping")
		}
	}

	m.log.Info().Str("branch", prevBranch).Str("folder", dest).Msg("Archived previous unit of work")
	return dest
}

// FolderName derives the archive folder suffix from a branch identifier,
// stripping a single leading namespace segment (e.g. "ralph/feature-x"
// becomes "feature-x").
func FolderName(branch string) string {
	if i := strings.Index(branch, "/"); i >= 0 && i+1 < len(branch) {
		return branch[i+1:]
	}
	return strings.TrimSuffix(branch, "/")
}

func (m *Manager) readMarker() (string, bool, error) {
	data, err := os.ReadFile(m.MarkerPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read branch marker: %w", err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func (m *Manager) writeMarker(branch string) error {
	if err := fileutil.WriteFileAtomic(m.MarkerPath, []byte(branch+"\n")); err != nil {
		return fmt.Errorf("write branch marker: %w", err)
	}
	return nil
}
