// Package posting holds the scraped bounty record and the logic that decides
// whether two postings seen on different runs are the same one.
package posting

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Posting is one scraped bounty listing. Every text field is taken as-is from
// the source and is not validated beyond presence.
type Posting struct {
	// ID is the identity token, see Resolver for how it is derived.
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required"`
	Price       string    `json:"price" validate:"required"`
	Description string    `json:"description"`
	Author      string    `json:"author"`
	Link        string    `json:"link,omitempty" validate:"omitempty,url"`
	Status      string    `json:"status,omitempty"`
	Cycles      string    `json:"cycles,omitempty"`
	TimeInfo    string    `json:"time_info,omitempty"`
	ObservedAt  time.Time `json:"observed_at"`
}

var ErrNoIdentity = errors.New("posting has no identity")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports whether p can be stored: title and price must be present and
// the resolver must be able to identify it.
func (p Posting) Validate(r Resolver) error {
	err := validate.Struct(p)
	if err != nil {
		return fmt.Errorf("invalid posting %q: %w", p.Title, err)
	}
	if !r.Identifiable(p) {
		return fmt.Errorf("%w: %q", ErrNoIdentity, p.Title)
	}
	return nil
}

const ellipsis = "..."

// TruncateDescription cuts s down to max runes and appends an ellipsis when it
// was longer. A max of 0 or less disables truncation.
func TruncateDescription(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + ellipsis
}

// Limit returns at most n postings from the front of ps, ps is assumed to be
// ordered most-recent-first.
func Limit(ps []Posting, n int) []Posting {
	if n < 0 || len(ps) <= n {
		return ps
	}
	return ps[:n]
}
