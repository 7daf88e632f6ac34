// Package archetype picks a representative deck archetype for a card from
// per-event usage statistics. Pure computation; the data layer fetches, this
// package only ranks.
package archetype

import (
	"math"
	"sort"
)

// Candidate is one archetype's observed usage for a card in one event.
// Pointer fields mirror the JSON, where any of the stats may be null.
type Candidate struct {
	// Base identifies the archetype (its normalized deck title).
	Base string `json:"base"`
	// Pct is the share of event decks that played the card, 0-100.
	Pct *float64 `json:"pct"`
	// Found is the absolute number of decks that played the card.
	Found *int `json:"found"`
	// Total is the number of decks of this archetype in the event.
	Total *int `json:"total"`
}

// score ranks by absolute deck count when reported, falling back to an
// estimate derived from the percentage.
func score(c Candidate) int {
	if c.Found != nil {
		return *c.Found
	}
	if c.Pct != nil && c.Total != nil {
		return int(math.Round(*c.Pct * float64(*c.Total) / 100))
	}
	return 0
}

func pct(c Candidate) float64 {
	if c.Pct == nil {
		return -1
	}
	return *c.Pct
}

func total(c Candidate) int {
	if c.Total == nil {
		return 0
	}
	return *c.Total
}

// Pick selects the representative archetype from candidates. When restrictTo
// is non-empty and intersects the candidate bases, the pool narrows to that
// intersection first: an archetype from the published Top-8 list wins over a
// better-scoring one that did not make the cut, but an empty intersection
// never empties the result. Candidates below minTotal decks are filtered out
// unless that would leave nothing, since a small-sample answer beats none.
// Returns nil only when no candidate carries a base identifier.
func Pick(candidates []Candidate, restrictTo []string, minTotal int) *Candidate {
	pool := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Base != "" {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		return nil
	}

	if len(restrictTo) > 0 {
		allowed := make(map[string]bool, len(restrictTo))
		for _, base := range restrictTo {
			allowed[base] = true
		}
		narrowed := make([]Candidate, 0, len(pool))
		for _, c := range pool {
			if allowed[c.Base] {
				narrowed = append(narrowed, c)
			}
		}
		if len(narrowed) > 0 {
			pool = narrowed
		}
	}

	sized := make([]Candidate, 0, len(pool))
	for _, c := range pool {
		if total(c) >= minTotal {
			sized = append(sized, c)
		}
	}
	if len(sized) > 0 {
		pool = sized
	}

	sort.SliceStable(pool, func(i, j int) bool {
		si, sj := score(pool[i]), score(pool[j])
		if si != sj {
			return si > sj
		}
		pi, pj := pct(pool[i]), pct(pool[j])
		if pi != pj {
			return pi > pj
		}
		return pool[i].Base < pool[j].Base
	})
	winner := pool[0]
	return &winner
}
