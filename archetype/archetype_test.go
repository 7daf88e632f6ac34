package archetype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func candidates() []Candidate {
	return []Candidate{
		{Base: "A", Found: intp(5), Total: intp(10), Pct: floatp(50)},
		{Base: "B", Found: intp(5), Total: intp(20), Pct: floatp(25)},
		{Base: "C", Found: intp(3), Total: intp(10), Pct: floatp(30)},
	}
}

func TestPickTieBreakByPct(t *testing.T) {
	// A and B tie on score 5; A's higher pct wins
	got := Pick(candidates(), nil, 0)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Base)
}

func TestPickTop8Narrowing(t *testing.T) {
	// C scores lower, but the restriction narrows the pool to {C} first
	got := Pick(candidates(), []string{"C"}, 0)
	require.NotNil(t, got)
	assert.Equal(t, "C", got.Base)
}

func TestPickRestrictionWithNoOverlapIsIgnored(t *testing.T) {
	got := Pick(candidates(), []string{"Z"}, 0)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Base)
}

func TestPickEmptyAndBaselessCandidates(t *testing.T) {
	assert.Nil(t, Pick(nil, nil, 0))
	assert.Nil(t, Pick([]Candidate{{Found: intp(9)}, {Pct: floatp(90)}}, nil, 0))
}

func TestPickSkipsBaselessButKeepsRest(t *testing.T) {
	pool := append(candidates(), Candidate{Found: intp(100), Total: intp(100), Pct: floatp(100)})
	got := Pick(pool, nil, 0)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Base)
}

func TestPickMinTotalFilter(t *testing.T) {
	// B is the only candidate with total >= 15
	got := Pick(candidates(), nil, 15)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Base)
}

func TestPickMinTotalFallback(t *testing.T) {
	// nothing reaches total 100; the unfiltered pool is used instead of
	// returning nil
	got := Pick(candidates(), nil, 100)
	require.NotNil(t, got)
	assert.Equal(t, "A", got.Base)
}

func TestPickMinTotalAppliesAfterNarrowing(t *testing.T) {
	// narrowing to {B, C} first, then the size filter keeps only B
	got := Pick(candidates(), []string{"B", "C"}, 15)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Base)
}

func TestScoreDerivedFromPct(t *testing.T) {
	// no found count: score falls back to round(pct*total/100)
	pool := []Candidate{
		{Base: "derived", Pct: floatp(33), Total: intp(10)}, // score 3
		{Base: "counted", Found: intp(2), Total: intp(10), Pct: floatp(20)},
	}
	got := Pick(pool, nil, 0)
	require.NotNil(t, got)
	assert.Equal(t, "derived", got.Base)
}

func TestScoreDefaultsToZero(t *testing.T) {
	pool := []Candidate{
		{Base: "nostats"},
		{Base: "tiny", Found: intp(1), Total: intp(1), Pct: floatp(100)},
	}
	got := Pick(pool, nil, 0)
	require.NotNil(t, got)
	assert.Equal(t, "tiny", got.Base)
}

func TestPickNilPctSortsLast(t *testing.T) {
	// equal scores: a nil pct counts as -1 and loses to any real pct
	pool := []Candidate{
		{Base: "nopct", Found: intp(4), Total: intp(10)},
		{Base: "withpct", Found: intp(4), Total: intp(10), Pct: floatp(1)},
	}
	got := Pick(pool, nil, 0)
	require.NotNil(t, got)
	assert.Equal(t, "withpct", got.Base)
}

func TestPickLexicographicFinalTieBreak(t *testing.T) {
	pool := []Candidate{
		{Base: "zeta", Found: intp(5), Total: intp(10), Pct: floatp(50)},
		{Base: "alpha", Found: intp(5), Total: intp(10), Pct: floatp(50)},
	}
	got := Pick(pool, nil, 0)
	require.NotNil(t, got)
	assert.Equal(t, "alpha", got.Base)
}

func TestPickDoesNotMutateInput(t *testing.T) {
	pool := candidates()
	Pick(pool, nil, 0)
	assert.Equal(t, "A", pool[0].Base)
	assert.Equal(t, "B", pool[1].Base)
	assert.Equal(t, "C", pool[2].Base)
}
