package posting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindDrift(t *testing.T) {
	previous := []Posting{
		{Title: "Build a Discord bot for my server", Author: "alice", Price: "$100"},
		{Title: "Fix CSS layout", Author: "bob", Price: "$20"},
	}
	fresh := []Posting{
		// price edited, title untouched
		{Title: "Build a Discord bot for my server", Author: "alice", Price: "$120"},
		{Title: "Fix CSS layout", Author: "carol", Price: "$20"},
		{Title: "Write a compiler", Author: "bob", Price: "$900"},
	}

	drifts := FindDrift(fresh, previous, 0.9)
	require.Len(t, drifts, 1)
	require.Equal(t, "$120", drifts[0].Fresh.Price)
	require.Equal(t, "$100", drifts[0].Previous.Price)
	require.InDelta(t, 1.0, drifts[0].Similarity, 0.0001)
}
