package notify

import (
	"bountywatch/internal/posting"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var bounty = posting.Posting{
	ID:          "abc",
	Title:       "Build a *fast* web_scraper",
	Price:       "$120",
	Description: "Use [goquery] please",
	Author:      "alice",
	Link:        "https://replit.com/bounties/@alice/web_scraper",
	Status:      "Open",
	ObservedAt:  time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC),
}

type fakeNotifier struct {
	err  error
	seen []string
}

func (f *fakeNotifier) Notify(_ context.Context, p posting.Posting) error {
	f.seen = append(f.seen, p.ID)
	return f.err
}

func TestMulti(t *testing.T) {
	boom := errors.New("boom")
	first := &fakeNotifier{err: boom}
	second := &fakeNotifier{}

	err := Multi{first, second}.Notify(context.Background(), bounty)
	require.True(t, errors.Is(err, boom))
	require.Equal(t, []string{"abc"}, first.seen)
	require.Equal(t, []string{"abc"}, second.seen)

	require.NoError(t, Multi{second}.Notify(context.Background(), bounty))
	require.NoError(t, Multi{}.Notify(context.Background(), bounty))
}

func TestWriter(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, NewWriter(&out).Notify(context.Background(), bounty))
	require.Contains(t, out.String(), "New bounty: Build a *fast* web_scraper ($120)")
	require.Contains(t, out.String(), "Author: alice\n")
}

func TestPlainText(t *testing.T) {
	text := PlainText(bounty)
	require.Equal(t, `Title: Build a *fast* web_scraper
Price: $120
Author: alice
Description: Use [goquery] please
Status: Open
Link: https://replit.com/bounties/@alice/web_scraper
Observed: Sat, 04 May 2024 10:00:00 UTC
`, text)
}

func TestMarkdown(t *testing.T) {
	require.Equal(t, `*Build a \*fast\* web\_scraper*
*Price:* $120
*Author:* alice
*Description:* Use \[goquery] please
*Status:* Open
*Observed:* Sat, 04 May 2024 10:00:00 UTC
https://replit.com/bounties/@alice/web\_scraper`, Markdown(bounty))
}
