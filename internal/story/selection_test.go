package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_LowestPriorityAmongIncomplete(t *testing.T) {
	store := &Store{
		Branch: "b",
		Stories: []Story{
			{ID: "a", Priority: 2, Passes: false},
			{ID: "b", Priority: 1, Passes: false},
			{ID: "c", Priority: 1, Passes: true},
		},
	}

	next := Next(store)
	require.NotNil(t, next)
	assert.Equal(t, "b", next.ID, "should pick lowest priority among incomplete, excluding completed ties")
}

func TestNext_TiesBrokenByStoredOrder(t *testing.T) {
	store := &Store{
		Branch: "b",
		Stories: []Story{
			{ID: "first", Priority: 3, Passes: false},
			{ID: "second", Priority: 3, Passes: false},
		},
	}

	next := Next(store)
	require.NotNil(t, next)
	assert.Equal(t, "first", next.ID, "equal priorities should resolve to stored order")
}

func TestNext_Deterministic(t *testing.T) {
	store := &Store{
		Branch: "b",
		Stories: []Story{
			{ID: "a", Priority: 5, Passes: false},
			{ID: "b", Priority: 1, Passes: false},
			{ID: "c", Priority: 3, Passes: false},
		},
	}

	first := Next(store)
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		assert.Same(t, first, Next(store), "repeated selection without mutation should return the identical story")
	}
}

func TestNext_AllComplete(t *testing.T) {
	store := &Store{
		Branch: "b",
		Stories: []Story{
			{ID: "a", Priority: 1, Passes: true},
			{ID: "b", Priority: 2, Passes: true},
		},
	}

	assert.Nil(t, Next(store), "all-complete store should select nothing")
	assert.True(t, Done(store))
}

func TestNext_EmptyStore(t *testing.T) {
	store := &Store{Branch: "b", Stories: []Story{}}

	assert.Nil(t, Next(store))
	assert.True(t, Done(store), "empty story list counts as done")
}

func TestNext_NegativePriorityWins(t *testing.T) {
	store := &Store{
		Branch: "b",
		Stories: []Story{
			{ID: "a", Priority: 0, Passes: false},
			{ID: "b", Priority: -1, Passes: false},
		},
	}

	next := Next(store)
	require.NotNil(t, next)
	assert.Equal(t, "b", next.ID, "priority has no required range")
}

func TestDone_TransitionsViaMarkComplete(t *testing.T) {
	store := &Store{
		Branch: "b",
		Stories: []Story{
			{ID: "a", Priority: 1, Passes: true},
			{ID: "b", Priority: 2, Passes: false},
		},
	}

	require.False(t, Done(store))
	require.NoError(t, MarkComplete(store, "b"))
	assert.True(t, Done(store), "flipping the last incomplete story should reach the terminal state")
}
