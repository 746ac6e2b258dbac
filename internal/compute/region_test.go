package compute

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Oriental Umeda", "Kansai"},
		{"Oriental 梅田", "Kansai"},
		{"JIS UMEDA", "Kansai"},
		{"YATAKOI UMEDA", "Kansai"},
		{"JIS CHAYAMACHI", "Kansai"},
		{"JIS SAPPORO", "Hokkaido"},
		{"Oriental 渋谷", "Kanto"},
		{"JIS NISHISHINJUKU", "Kanto"},
		{"Oriental 名古屋", "Tokai"},
		{"XIX OKAYAMA", "Chugoku"},
		{"ALFA HIROSHIMA", "Chugoku"},
		{"JIS MATSUYAMA", "Shikoku"},
		{"JIS KUMAMOTO", "Kyushu"},
		{"Oriental 福岡", "Kyushu"},
		{"Mystery Bar", RegionOther},
		{"oriental umeda", RegionOther}, // matching is case-sensitive
		{"", RegionOther},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.name))
		})
	}
}

func TestClassify_FirstRegionWins(t *testing.T) {
	// A name carrying keywords of two regions resolves to the earlier one.
	assert.Equal(t, "Kanto", Classify("Shinjuku x Umeda collab"))
	assert.Equal(t, "Hokkaido", Classify("Umeda Sapporo"))
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, "Kansai", Classify("JIS NAMBA"))
	}
}
