package fetch

// Profile is one version of the selectors used to pull postings out of the
// bounties page. The page markup drifts over time, so profiles are tried in
// order and the first one that yields at least one valid posting wins.
type Profile struct {
	Version string
	// Card selects one element per posting, every other selector is
	// evaluated inside a card. An empty field selector skips the field.
	Card        string
	Title       string
	Price       string
	Description string
	Author      string
	Link        string
	TimeInfo    string
	Status      string
	Cycles      string
}

var cardFieldsV3 = Profile{
	Title:       "h3 a",
	Price:       ".css-4qqdjk",
	Description: "h3 + span.Text_text__T_hn_",
	Author:      ".css-1yzry6v span.Text_text__T_hn_",
	Link:        "h3 a",
	TimeInfo:    ".css-149xez1 span",
	Status:      ".Surface_surfaceDefault__TcNI5 span",
	Cycles:      ".css-pvu419 span",
}

func withCard(version, card string, fields Profile) Profile {
	fields.Version = version
	fields.Card = card
	return fields
}

// DefaultProfiles is the fallback chain for replit.com/bounties, newest markup first.
var DefaultProfiles = []Profile{
	withCard("v3", ".Surface_surfaceRoot__TeA2u.css-r1hogs", cardFieldsV3),
	withCard("v3-surface", `li[class*="Surface_surfaceRoot"]`, cardFieldsV3),
	withCard("v3-view", `li[class*="useView_view"]`, cardFieldsV3),
	{
		Version:     "v1",
		Card:        ".css-e1ns7d",
		Title:       ".css-1om7s53",
		Price:       ".css-19oru95",
		Description: ".css-10z1dta",
	},
	withCard("v3-li", "li", cardFieldsV3),
}
