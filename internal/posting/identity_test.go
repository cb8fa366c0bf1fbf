package posting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFieldHashToken(t *testing.T) {
	hasher := FieldHash{}
	a := Posting{Title: "Build a bot", Price: "$50", Author: "bob"}

	require.Equal(t, hasher.Token(a), hasher.Token(a))
	require.Len(t, hasher.Token(a), 64)

	// fields other than title, price and author do not matter
	b := a
	b.Description = "different"
	b.Link = "https://replit.com/bounties/@bob/other"
	require.Equal(t, hasher.Token(a), hasher.Token(b))

	// field boundaries are part of the hash
	c := Posting{Title: "ab", Price: "c"}
	d := Posting{Title: "a", Price: "bc"}
	require.NotEqual(t, hasher.Token(c), hasher.Token(d))
}

func TestFieldHashKeyPrefersStoredID(t *testing.T) {
	hasher := FieldHash{}
	p := Posting{ID: "legacy-id", Title: "t", Price: "p"}
	require.Equal(t, "legacy-id", hasher.Key(p))

	p.ID = ""
	require.Equal(t, hasher.Token(p), hasher.Key(p))
}

func TestStamp(t *testing.T) {
	ps := []Posting{
		{Title: "a", Price: "1"},
		{ID: "kept", Title: "b", Price: "2"},
	}

	Stamp(ContentEquality{}, ps)
	require.Empty(t, ps[0].ID)

	Stamp(FieldHash{}, ps)
	require.Equal(t, FieldHash{}.Token(Posting{Title: "a", Price: "1"}), ps[0].ID)
	require.Equal(t, "kept", ps[1].ID)
}

func TestParseResolver(t *testing.T) {
	r, err := ParseResolver("")
	require.NoError(t, err)
	require.Equal(t, PolicyFieldHash, r.Name())

	r, err = ParseResolver(PolicyContentEquality)
	require.NoError(t, err)
	require.Equal(t, PolicyContentEquality, r.Name())

	_, err = ParseResolver("by-vibes")
	require.Error(t, err)
}
