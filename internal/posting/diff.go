package posting

// FindNew returns every posting of current that has no match in previous,
// keeping the order of current.
//
// Keyed resolvers run in O(|current| + |previous|). Other resolvers compare
// pairwise, which is quadratic; batches are small (tens of postings) so this
// is acceptable.
//
// Duplicates within current are not collapsed, only novelty relative to
// previous is computed. An empty previous makes every posting new.
func FindNew(current, previous []Posting, r Resolver) []Posting {
	fresh := make([]Posting, 0, len(current))

	if keyed, ok := r.(Keyed); ok {
		seen := make(map[string]struct{}, len(previous))
		for _, p := range previous {
			seen[keyed.Key(p)] = struct{}{}
		}
		for _, p := range current {
			if _, found := seen[keyed.Key(p)]; !found {
				fresh = append(fresh, p)
			}
		}
		return fresh
	}

	for _, p := range current {
		if !containsSame(previous, p, r) {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

func containsSame(ps []Posting, target Posting, r Resolver) bool {
	for _, p := range ps {
		if r.Same(p, target) {
			return true
		}
	}
	return false
}
