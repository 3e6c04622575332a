package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mgr          *Manager
	markerPath   string
	storePath    string
	progressPath string
	archiveDir   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	f := &fixture{
		markerPath:   filepath.Join(dir, ".storyloop-branch"),
		storePath:    filepath.Join(dir, "prd.json"),
		progressPath: filepath.Join(dir, "progress.txt"),
		archiveDir:   filepath.Join(dir, "archive"),
	}
	f.mgr = NewManager(f.markerPath, f.storePath, f.progressPath, f.archiveDir)
	f.mgr.Now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *fixture) writeSources(t *testing.T) {
	t.Helper()
	require.NoError(t, os.WriteFile(f.storePath, []byte(`{"branch":"ralph/a","stories":[]}`), 0644))
	require.NoError(t, os.WriteFile(f.progressPath, []byte("old progress\n"), 0644))
}

func TestFolderName(t *testing.T) {
	assert.Equal(t, "a", FolderName("ralph/a"))
	assert.Equal(t, "feature-x", FolderName("ralph/feature-x"))
	assert.Equal(t, "deep/path", FolderName("ns/deep/path"), "only the first segment is a namespace")
	assert.Equal(t, "plain", FolderName("plain"))
}

func TestRotate_FirstRunRecordsMarkerOnly(t *testing.T) {
	f := newFixture(t)
	f.writeSources(t)

	archived, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)
	assert.Empty(t, archived, "first run should not archive")

	data, err := os.ReadFile(f.markerPath)
	require.NoError(t, err)
	assert.Equal(t, "ralph/a\n", string(data))

	assert.NoDirExists(t, f.archiveDir, "no archive folder on first run")
}

func TestRotate_SameBranchNoOp(t *testing.T) {
	f := newFixture(t)
	f.writeSources(t)

	_, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)

	archived, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)
	assert.Empty(t, archived, "unchanged branch should be a no-op")
	assert.NoDirExists(t, f.archiveDir)
}

func TestRotate_BranchChangeArchives(t *testing.T) {
	f := newFixture(t)
	f.writeSources(t)

	_, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)

	archived, err := f.mgr.Rotate("ralph/b", "proj")
	require.NoError(t, err)

	expected := filepath.Join(f.archiveDir, "2026-03-14-a")
	assert.Equal(t, expected, archived, "archive folder is named for the previous branch")

	// Snapshot holds the files as they stood before the call.
	storeCopy, err := os.ReadFile(filepath.Join(expected, "prd.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"branch":"ralph/a","stories":[]}`, string(storeCopy))

	progressCopy, err := os.ReadFile(filepath.Join(expected, "progress.txt"))
	require.NoError(t, err)
	assert.Equal(t, "old progress\n", string(progressCopy))

	// Live progress log was reset to a fresh header.
	live, err := os.ReadFile(f.progressPath)
	require.NoError(t, err)
	assert.NotContains(t, string(live), "old progress")
	assert.Contains(t, string(live), "# Progress Log - proj")

	// Marker now records the new branch.
	marker, err := os.ReadFile(f.markerPath)
	require.NoError(t, err)
	assert.Equal(t, "ralph/b\n", string(marker))
}

func TestRotate_SecondCallAfterArchiveIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.writeSources(t)

	_, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)
	_, err = f.mgr.Rotate("ralph/b", "proj")
	require.NoError(t, err)

	archived, err := f.mgr.Rotate("ralph/b", "proj")
	require.NoError(t, err)
	assert.Empty(t, archived, "repeated rotate with the new branch should not archive again")

	entries, err := os.ReadDir(f.archiveDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "exactly one archive folder")
}

func TestRotate_EmptyBranchesSkipArchive(t *testing.T) {
	f := newFixture(t)
	f.writeSources(t)

	_, err := f.mgr.Rotate("", "proj")
	require.NoError(t, err)

	archived, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)
	assert.Empty(t, archived, "empty previous branch means nothing to archive")
}

func TestRotate_MissingSourcesNotFatal(t *testing.T) {
	f := newFixture(t)
	// No store or progress files on disk at all.

	_, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)

	archived, err := f.mgr.Rotate("ralph/b", "proj")
	require.NoError(t, err, "missing snapshot sources must not block the new unit of work")
	assert.NotEmpty(t, archived)

	entries, err := os.ReadDir(archived)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing to copy leaves an empty snapshot folder")
}

func TestRotate_SameDayCollisionOverwrites(t *testing.T) {
	f := newFixture(t)
	f.writeSources(t)

	_, err := f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)
	first, err := f.mgr.Rotate("ralph/b", "proj")
	require.NoError(t, err)

	// Go back to the old branch and change the store, then flip again on the
	// same date. Last writer wins for the dated folder.
	require.NoError(t, os.WriteFile(f.storePath, []byte(`{"branch":"ralph/a","stories":[],"description":"v2"}`), 0644))
	_, err = f.mgr.Rotate("ralph/a", "proj")
	require.NoError(t, err)
	second, err := f.mgr.Rotate("ralph/b", "proj")
	require.NoError(t, err)
	require.Equal(t, first, second, "same date and branch produce the same folder")

	data, err := os.ReadFile(filepath.Join(second, "prd.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "v2", "collision overwrites with the latest snapshot")
}
