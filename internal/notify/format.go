package notify

import (
	"bountywatch/internal/posting"
	"fmt"
	"strings"
	"time"
)

func Subject(p posting.Posting) string {
	return fmt.Sprintf("New bounty: %s (%s)", p.Title, p.Price)
}

type line struct {
	label string
	value string
}

func lines(p posting.Posting) []line {
	out := []line{
		{"Title", p.Title},
		{"Price", p.Price},
		{"Author", p.Author},
		{"Description", p.Description},
		{"Status", p.Status},
		{"Cycles", p.Cycles},
		{"Time", p.TimeInfo},
		{"Link", p.Link},
	}
	if !p.ObservedAt.IsZero() {
		out = append(out, line{"Observed", p.ObservedAt.Format(time.RFC1123)})
	}
	return out
}

// PlainText renders every non-empty field of p, one per line.
func PlainText(p posting.Posting) string {
	var b strings.Builder
	for _, l := range lines(p) {
		if l.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", l.label, l.value)
	}
	return b.String()
}

// telegram's legacy Markdown only treats these as entities.
var markdownEscaper = strings.NewReplacer(
	"_", `\_`,
	"*", `\*`,
	"`", "\\`",
	"[", `\[`,
)

func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Markdown renders p for a chat message, the title in bold and the link as
// a trailing line.
func Markdown(p posting.Posting) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", EscapeMarkdown(p.Title))
	for _, l := range lines(p) {
		if l.value == "" || l.label == "Title" || l.label == "Link" {
			continue
		}
		fmt.Fprintf(&b, "*%s:* %s\n", l.label, EscapeMarkdown(l.value))
	}
	if p.Link != "" {
		fmt.Fprintf(&b, "%s\n", EscapeMarkdown(p.Link))
	}
	return strings.TrimRight(b.String(), "\n")
}
