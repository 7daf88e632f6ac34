package reports

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/deckmeta/go-data/archetype"
)

// Top8 returns the archetypes of the event's top finishers, deduplicated in
// rank order.
func (c *Client) Top8(ctx context.Context, tournament string) ([]string, error) {
	decks, err := c.Decks(ctx, tournament)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var bases []string
	for _, d := range decks {
		if d.Rank > 8 || d.Archetype == "" || seen[d.Archetype] {
			continue
		}
		seen[d.Archetype] = true
		bases = append(bases, d.Archetype)
	}
	return bases, nil
}

// CardUsage aggregates one card's usage per archetype in one event: for each
// archetype, how many of its decks played the card and what share that is.
func (c *Client) CardUsage(ctx context.Context, tournament, card string) ([]archetype.Candidate, error) {
	decks, err := c.Decks(ctx, tournament)
	if err != nil {
		return nil, err
	}
	totals := make(map[string]int)
	founds := make(map[string]int)
	var order []string
	for _, d := range decks {
		if d.Archetype == "" {
			continue
		}
		if totals[d.Archetype] == 0 {
			order = append(order, d.Archetype)
		}
		totals[d.Archetype]++
		for _, dc := range d.Cards {
			if dc.Name == card {
				founds[d.Archetype]++
				break
			}
		}
	}
	candidates := make([]archetype.Candidate, 0, len(order))
	for _, base := range order {
		found, total := founds[base], totals[base]
		pct := math.Round(float64(found)/float64(total)*10000) / 100
		f, t, p := found, total, pct
		candidates = append(candidates, archetype.Candidate{Base: base, Found: &f, Total: &t, Pct: &p})
	}
	return candidates, nil
}

// RepresentativeArchetype picks the archetype that best represents a card in
// one event, preferring archetypes that made the published Top 8.
func (c *Client) RepresentativeArchetype(ctx context.Context, tournament, card string, minTotal int) (*archetype.Candidate, error) {
	candidates, err := c.CardUsage(ctx, tournament, card)
	if err != nil {
		return nil, err
	}
	top8, err := c.Top8(ctx, tournament)
	if err != nil {
		return nil, err
	}
	return archetype.Pick(candidates, top8, minTotal), nil
}

// Prefetch warms the cache for a set of tournaments. Fetches run
// concurrently; coalescing in the cache keeps each resource to one request
// even if callers race with the warm-up.
func (c *Client) Prefetch(ctx context.Context, tournaments []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, t := range tournaments {
		t := t
		g.Go(func() error {
			if _, err := c.Master(ctx, t); err != nil {
				return err
			}
			_, err := c.Decks(ctx, t)
			return err
		})
	}
	return g.Wait()
}
