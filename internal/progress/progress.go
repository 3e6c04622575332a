// Package progress maintains the append-only progress log: a plain-text
// record of what the external agent did, reset to a fresh header whenever a
// new unit of work begins.
package progress

import (
	"fmt"
	"time"

	"github.com/ternarybob/storyloop/internal/fileutil"
)

const separator = "---"

// Header renders the fresh log header: title line, start timestamp, separator.
func Header(project string, started time.Time) string {
	title := "# Progress Log"
	if project != "" {
		title = fmt.Sprintf("# Progress Log - %s", project)
	}
	return fmt.Sprintf("%s\nStarted: %s\n%s\n", title, started.Format(time.RFC3339), separator)
}

// Ensure creates the log with a fresh header if it does not exist yet.
// An existing log is left untouched.
func Ensure(path, project string) error {
	if fileutil.Exists(path) {
		return nil
	}
	return Reset(path, project)
}

// Reset truncates the log to a fresh header. Called exactly when an archive
// event fires, and on first-time setup.
func Reset(path, project string) error {
	return fileutil.WriteFileAtomic(path, []byte(Header(project, time.Now())))
}

// Append adds a timestamped entry to the end of the log. Existing entries
// are never rewritten.
func Append(path, entry string) error {
	line := fmt.Sprintf("\n[%s] %s\n", time.Now().Format(time.RFC3339), entry)
	return fileutil.AppendFile(path, []byte(line))
}
