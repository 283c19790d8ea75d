package extract

// Candidate is a scored price proposal produced while scanning a page.
// Candidates are ephemeral: they feed Resolve and are never persisted.
type Candidate struct {
	Score int
	Value int
}

// TiePolicy selects among candidates that share the maximum score.
type TiePolicy int

const (
	// PreferMin picks the smallest value among the top-scored candidates.
	// Marketplace pages routinely show a crossed-out reference price next
	// to the discounted price with identical emphasis; the smaller number
	// is, empirically, the one to report.
	PreferMin TiePolicy = iota
	// PreferMax picks the largest value instead. Used where equally-scored
	// candidates are more often promotional floors (rakuten buy box).
	PreferMax
)

// Resolve returns the winning value: the PreferMin/PreferMax extreme among
// candidates holding the maximum score. False when cands is empty.
func Resolve(cands []Candidate, policy TiePolicy) (int, bool) {
	if len(cands) == 0 {
		return 0, false
	}
	best := cands[0].Score
	for _, c := range cands[1:] {
		if c.Score > best {
			best = c.Score
		}
	}
	var picked int
	found := false
	for _, c := range cands {
		if c.Score != best {
			continue
		}
		if !found {
			picked = c.Value
			found = true
			continue
		}
		if policy == PreferMax {
			if c.Value > picked {
				picked = c.Value
			}
		} else if c.Value < picked {
			picked = c.Value
		}
	}
	return picked, found
}

// addCandidate appends (score, v) when v passes the yen bound.
func addCandidate(cands []Candidate, v int, ok bool, score int) []Candidate {
	if !ok {
		return cands
	}
	return append(cands, Candidate{Score: score, Value: v})
}
