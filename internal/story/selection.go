package story

// Next returns the next story to work on: the incomplete story with the
// lowest priority value, ties broken by stored order. Returns nil when every
// story passes (or the store is empty), which is the terminal state for the
// caller's loop, not an error.
//
// Selection is pure; repeated calls without an intervening mutation return
// the same story.
func Next(store *Store) *Story {
	var best *Story
	for i := range store.Stories {
		st := &store.Stories[i]
		if st.Passes {
			continue
		}
		// Strictly-less keeps the earliest story on priority ties.
		if best == nil || st.Priority < best.Priority {
			best = st
		}
	}
	return best
}

// Done reports whether every story in the store passes.
func Done(store *Store) bool {
	return Next(store) == nil
}
