package posting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncateDescription(t *testing.T) {
	testCases := []struct {
		in       string
		max      int
		expected string
	}{
		{in: "short", max: 10, expected: "short"},
		{in: "exactly10!", max: 10, expected: "exactly10!"},
		{in: "this is too long", max: 7, expected: "this is..."},
		{in: "日本語のテキスト", max: 3, expected: "日本語..."},
		{in: "unbounded", max: 0, expected: "unbounded"},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, TruncateDescription(test.in, test.max))
	}
}

func TestValidate(t *testing.T) {
	valid := Posting{Title: "t", Price: "$1", Link: "https://replit.com/bounties/@a/b"}
	require.NoError(t, valid.Validate(FieldHash{}))

	noTitle := valid
	noTitle.Title = ""
	require.Error(t, noTitle.Validate(FieldHash{}))

	noPrice := valid
	noPrice.Price = ""
	require.Error(t, noPrice.Validate(ContentEquality{}))

	badLink := valid
	badLink.Link = "not a url"
	require.Error(t, badLink.Validate(FieldHash{}))
}

type neverIdentifiable struct{ ContentEquality }

func (neverIdentifiable) Identifiable(Posting) bool { return false }

func TestValidateRequiresIdentity(t *testing.T) {
	p := Posting{Title: "t", Price: "$1"}
	err := p.Validate(neverIdentifiable{})
	require.True(t, errors.Is(err, ErrNoIdentity))
}

func TestLimit(t *testing.T) {
	ps := withID("1", "2", "3")
	require.Len(t, Limit(ps, 2), 2)
	require.Equal(t, "1", Limit(ps, 2)[0].ID)
	require.Len(t, Limit(ps, 5), 3)
	require.Len(t, Limit(ps, 0), 0)
}
