package adapter

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// countOf coerces a JSON value into a non-negative guest count. Missing,
// null and non-numeric values count as zero.
func countOf(v gjson.Result) int {
	var n int64
	switch v.Type {
	case gjson.Number:
		n = v.Int()
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return 0
		}
		n = int64(parsed)
	default:
		return 0
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// countText is countOf for text scraped out of HTML.
func countText(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
