// Package fetch scrapes the current postings from the bounties page.
package fetch

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/chrono"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"net/url"
)

const (
	report_scraper_fetch   = "scraper.fetch"
	report_scraper_dropped = "scraper.dropped"
	report_scraper_cards   = "scraper.cards"
)

// Fetcher returns the postings currently listed, most recent first.
type Fetcher interface {
	Fetch(ctx context.Context, maxCount int) ([]posting.Posting, error)
}

// Source renders a page to HTML.
type Source interface {
	Render(ctx context.Context, url string) (string, error)
}

type Options struct {
	Url            string
	Source         Source
	Profiles       []Profile
	Resolver       posting.Resolver
	MaxDescription int
	Time           chrono.TimeAPI
	Tel            telemetry.API
}

// Scraper is the Fetcher for the bounties page.
type Scraper struct {
	url      *url.URL
	source   Source
	profiles []Profile
	resolver posting.Resolver
	maxDesc  int
	time     chrono.TimeAPI
	tel      telemetry.API
}

func NewScraper(opts Options) (Scraper, error) {
	assert.NotNil(opts.Source)
	assert.NotNil(opts.Resolver)
	assert.NotNil(opts.Time)
	assert.NotNil(opts.Tel)

	link, err := url.Parse(opts.Url)
	if err != nil {
		return Scraper{}, err
	}
	if !link.IsAbs() {
		return Scraper{}, fmt.Errorf("scrape url must be absolute: %q", opts.Url)
	}

	profiles := opts.Profiles
	if len(profiles) == 0 {
		profiles = DefaultProfiles
	}

	return Scraper{
		url:      link,
		source:   opts.Source,
		profiles: profiles,
		resolver: opts.Resolver,
		maxDesc:  opts.MaxDescription,
		time:     opts.Time,
		tel:      telemetry.NewScopedAPI("fetch", opts.Tel),
	}, nil
}

func (s Scraper) Fetch(ctx context.Context, maxCount int) ([]posting.Posting, error) {
	page, err := s.source.Render(ctx, s.url.String())
	if err != nil {
		s.tel.ReportBroken(report_scraper_fetch, err, s.url.String())
		return nil, fmt.Errorf("render %s: %w", s.url, err)
	}

	result, err := Extract(page, ExtractOptions{
		Base:           s.url,
		Profiles:       s.profiles,
		Limit:          maxCount,
		MaxDescription: s.maxDesc,
		ObservedAt:     s.time.Now(),
		Resolver:       s.resolver,
	})
	if err != nil {
		s.tel.ReportBroken(report_scraper_fetch, err, telemetry.KV{Key: "page_bytes", Value: len(page)})
		return nil, err
	}

	s.tel.ReportCount(report_scraper_cards, int64(result.Cards))
	if result.Dropped > 0 {
		s.tel.ReportWarning(
			report_scraper_dropped,
			telemetry.KV{Key: "profile", Value: result.Profile},
			telemetry.KV{Key: "dropped", Value: result.Dropped},
		)
	}
	s.tel.ReportDebug(
		"extracted postings",
		telemetry.KV{Key: "profile", Value: result.Profile},
		telemetry.KV{Key: "count", Value: len(result.Postings)},
	)

	posting.Stamp(s.resolver, result.Postings)
	return result.Postings, nil
}
