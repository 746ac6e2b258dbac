package compute

import (
	"sort"

	"github.com/loungewatch/loungewatch/pkg/types"
)

// Rank orders records in place by women descending, then men descending.
// Ties keep their input order.
func Rank(records []types.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Women != b.Women {
			return a.Women > b.Women
		}
		return a.Men > b.Men
	})
}

// Tag sets Region on every record.
func Tag(records []types.Record) {
	for i := range records {
		records[i].Region = Classify(records[i].Name)
	}
}
