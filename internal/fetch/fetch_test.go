package fetch

import (
	"bountywatch/internal/chrono"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	page string
	err  error
	urls []string
}

func (f *fakeSource) Render(_ context.Context, url string) (string, error) {
	f.urls = append(f.urls, url)
	return f.page, f.err
}

func newTestScraper(t *testing.T, source Source, tel telemetry.API) Scraper {
	scraper, err := NewScraper(Options{
		Url:            "https://replit.com/bounties",
		Source:         source,
		Resolver:       posting.FieldHash{},
		MaxDescription: 200,
		Time:           chrono.FixedTime{At: observed},
		Tel:            tel,
	})
	require.NoError(t, err)
	return scraper
}

func TestScraperFetch(t *testing.T) {
	noPrice := scraperCard
	noPrice.price = ""
	source := &fakeSource{page: page(botCard.html("li"), noPrice.html("li"), scraperCard.html("li"))}
	rec := telemetry.NewRecorder()

	postings, err := newTestScraper(t, source, rec).Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, []string{"https://replit.com/bounties"}, source.urls)
	require.Len(t, postings, 2)

	for _, p := range postings {
		require.Equal(t, posting.FieldHash{}.Token(p), p.ID)
		require.Equal(t, observed, p.ObservedAt)
	}
	require.Len(t, rec.Find(telemetry.KindWarning, report_scraper_dropped), 1)
	cards, ok := rec.LastCount(report_scraper_cards)
	require.True(t, ok)
	require.EqualValues(t, 3, cards)
}

func TestScraperFetchMaxCount(t *testing.T) {
	source := &fakeSource{page: page(botCard.html("li"), scraperCard.html("li"))}
	postings, err := newTestScraper(t, source, telemetry.NewRecorder()).Fetch(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, postings, 1)
	require.Equal(t, "Build a Discord bot", postings[0].Title)
}

func TestScraperFetchErrors(t *testing.T) {
	renderErr := errors.New("net::ERR_NAME_NOT_RESOLVED")
	rec := telemetry.NewRecorder()
	_, err := newTestScraper(t, &fakeSource{err: renderErr}, rec).Fetch(context.Background(), 10)
	require.True(t, errors.Is(err, renderErr))
	require.Len(t, rec.Find(telemetry.KindBroken, report_scraper_fetch), 1)

	_, err = newTestScraper(t, &fakeSource{page: "<html></html>"}, rec).Fetch(context.Background(), 10)
	require.True(t, errors.Is(err, ErrNoPostings))
}

func TestNewScraperRejectsRelativeUrl(t *testing.T) {
	_, err := NewScraper(Options{
		Url:      "/bounties",
		Source:   &fakeSource{},
		Resolver: posting.FieldHash{},
		Time:     chrono.FixedTime{At: observed},
		Tel:      telemetry.NewRecorder(),
	})
	require.Error(t, err)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("User-Agent") != DefaultUserAgent {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(page(botCard.html("li"))))
	}))
	defer srv.Close()

	source := NewHTTPSource(5*time.Second, "", telemetry.NewRecorder())

	body, err := source.Render(context.Background(), srv.URL+"/bounties")
	require.NoError(t, err)
	require.Contains(t, body, "discord-bot")

	_, err = source.Render(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
}
