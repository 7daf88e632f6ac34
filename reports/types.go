package reports

import (
	"encoding/json"
	"fmt"

	"github.com/deckmeta/go-data/errs"
)

// Master is one tournament's card-usage report.
type Master struct {
	// DeckTotal is the number of decks the report aggregates.
	DeckTotal int        `json:"deckTotal"`
	Items     []CardStat `json:"items"`
}

// CardStat is one card's aggregate usage across the event.
type CardStat struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Found int     `json:"found"`
	Total int     `json:"total"`
	Pct   float64 `json:"pct"`
}

// Deck is one published deck list entry.
type Deck struct {
	Archetype string     `json:"archetype"`
	Rank      int        `json:"rank"`
	Cards     []DeckCard `json:"cards"`
}

type DeckCard struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Suggestions is the curated card-suggestion feed.
type Suggestions struct {
	GeneratedAt string               `json:"generatedAt"`
	Categories  []SuggestionCategory `json:"categories"`
}

type SuggestionCategory struct {
	ID    string           `json:"id"`
	Title string           `json:"title"`
	Items []SuggestionItem `json:"items"`
}

type SuggestionItem struct {
	Name      string  `json:"name"`
	Archetype string  `json:"archetype,omitempty"`
	Pct       float64 `json:"pct,omitempty"`
}

// shape converts a decoded JSON value into T. The conversion is the one
// schema check for the resource: anything that does not fit fails with a
// DataFormat error here, so downstream code never re-checks optional fields.
func shape[T any](val any, url string) (T, error) {
	var out T
	raw, err := json.Marshal(val)
	if err != nil {
		return out, errs.Wrap(err, errs.DataFormat, "cannot re-encode response", errs.Context{URL: url})
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, errs.Wrap(err, errs.DataFormat,
			fmt.Sprintf("response does not match %T: %s", out, err),
			errs.Context{URL: url, Preview: errs.Preview(string(raw))})
	}
	return out, nil
}

func (m *Master) validate(url string) error {
	if m.DeckTotal <= 0 {
		return errs.New(errs.DataFormat, "master report missing deckTotal", errs.Context{URL: url})
	}
	if m.Items == nil {
		return errs.New(errs.DataFormat, "master report missing items", errs.Context{URL: url})
	}
	return nil
}
