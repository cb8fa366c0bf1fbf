package posting

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// Drift pairs a posting the diff considers new with a previously stored
// posting that looks almost identical. A drift usually means the source
// re-rendered an identifying field and the posting will be notified twice.
type Drift struct {
	Fresh      Posting
	Previous   Posting
	Similarity float64
}

// FindDrift returns, for every fresh posting, the most similar previous
// posting by the same author when their titles are at least threshold similar
// (Jaro-Winkler, 0..1).
func FindDrift(fresh, previous []Posting, threshold float64) []Drift {
	var out []Drift
	for _, f := range fresh {
		best := Drift{Similarity: -1}
		for _, p := range previous {
			if !strings.EqualFold(f.Author, p.Author) {
				continue
			}
			similarity := matchr.JaroWinkler(
				strings.ToLower(f.Title),
				strings.ToLower(p.Title),
				false,
			)
			if similarity > best.Similarity {
				best = Drift{Fresh: f, Previous: p, Similarity: similarity}
			}
		}
		if best.Similarity >= threshold {
			out = append(out, best)
		}
	}
	return out
}
