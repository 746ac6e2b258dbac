package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loungewatch/loungewatch/pkg/types"
)

func names(recs []types.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Name
	}
	return out
}

func TestRank_WomenThenMen(t *testing.T) {
	recs := []types.Record{
		{Name: "A", Men: 10, Women: 5},
		{Name: "B", Men: 3, Women: 9},
		{Name: "C", Men: 7, Women: 5},
		{Name: "D", Men: 0, Women: 0},
	}
	Rank(recs)
	assert.Equal(t, []string{"B", "A", "C", "D"}, names(recs))
}

func TestRank_StableOnFullTie(t *testing.T) {
	recs := []types.Record{
		{Name: "first", Men: 2, Women: 2},
		{Name: "second", Men: 2, Women: 2},
		{Name: "third", Men: 2, Women: 2},
	}
	Rank(recs)
	assert.Equal(t, []string{"first", "second", "third"}, names(recs))
}

func TestRank_ReRankingKeepsOrder(t *testing.T) {
	recs := []types.Record{
		{Name: "a", Men: 1, Women: 4}, {Name: "b", Men: 9, Women: 4},
		{Name: "c", Men: 0, Women: 12}, {Name: "d", Men: 5, Women: 0},
		{Name: "e", Men: 3, Women: 7},
	}
	Rank(recs)
	for i := 0; i+1 < len(recs); i++ {
		a, b := recs[i], recs[i+1]
		assert.True(t, a.Women > b.Women || (a.Women == b.Women && a.Men >= b.Men),
			"%s before %s", a.Name, b.Name)
	}
}

func TestTag(t *testing.T) {
	recs := []types.Record{{Name: "JIS UMEDA"}, {Name: "Somewhere"}}
	Tag(recs)
	assert.Equal(t, "Kansai", recs[0].Region)
	assert.Equal(t, RegionOther, recs[1].Region)
}
