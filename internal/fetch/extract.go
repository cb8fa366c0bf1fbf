package fetch

import (
	"bountywatch/internal/posting"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoPostings means no profile produced a single valid posting, the page
// either failed to render or its markup changed.
var ErrNoPostings = errors.New("no postings found on page")

type ExtractOptions struct {
	// Base resolves relative links.
	Base     *url.URL
	Profiles []Profile
	// Limit caps the number of postings returned, 0 means no cap.
	Limit          int
	MaxDescription int
	ObservedAt     time.Time
	Resolver       posting.Resolver
}

type ExtractResult struct {
	Profile  string
	Cards    int
	Dropped  int
	Postings []posting.Posting
}

// Extract walks the profiles in order and returns the postings of the first
// profile that yields any valid posting. Cards missing a required field are
// dropped, never returned with placeholder values.
func Extract(page string, opts ExtractOptions) (ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return ExtractResult{}, err
	}

	for _, profile := range opts.Profiles {
		cards := doc.Find(profile.Card)
		if cards.Length() == 0 {
			continue
		}

		result := ExtractResult{
			Profile: profile.Version,
			Cards:   cards.Length(),
		}
		cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
			p := extractCard(card, profile, opts)
			if p.Validate(opts.Resolver) != nil {
				result.Dropped++
				return true
			}
			result.Postings = append(result.Postings, p)
			return opts.Limit <= 0 || len(result.Postings) < opts.Limit
		})
		if len(result.Postings) > 0 {
			return result, nil
		}
	}

	return ExtractResult{}, ErrNoPostings
}

func field(card *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return selectionText(card.Find(selector).First())
}

func extractCard(card *goquery.Selection, profile Profile, opts ExtractOptions) posting.Posting {
	p := posting.Posting{
		Title:       field(card, profile.Title),
		Price:       field(card, profile.Price),
		Description: posting.TruncateDescription(field(card, profile.Description), opts.MaxDescription),
		Author:      field(card, profile.Author),
		TimeInfo:    field(card, profile.TimeInfo),
		Status:      field(card, profile.Status),
		Cycles:      field(card, profile.Cycles),
		ObservedAt:  opts.ObservedAt,
	}
	if profile.Link != "" {
		href, ok := card.Find(profile.Link).First().Attr("href")
		if ok {
			p.Link = resolveLink(opts.Base, href)
		}
	}
	return p
}

func resolveLink(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base == nil {
		if ref.IsAbs() {
			return ref.String()
		}
		return ""
	}
	return base.ResolveReference(ref).String()
}
