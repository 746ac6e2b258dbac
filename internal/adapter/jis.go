package adapter

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/loungewatch/loungewatch/pkg/types"
)

const jisAnchor = "var datas ="

var jisDataPattern = regexp.MustCompile(`(?s)var datas\s*=\s*(\{.*?\});`)

// jisNames maps store codes to display names. Unlisted codes are uppercased.
var jisNames = map[string]string{
	"sapporo_b1":    "SAPPORO",
	"omiya":         "OMIYA",
	"shinjuku":      "SHINJUKU",
	"nishishinjuku": "NISHISHINJUKU",
	"umeda":         "UMEDA",
	"namba":         "NAMBA",
	"chayamachi":    "CHAYAMACHI",
	"fukuoka":       "FUKUOKA",
	"kumamoto":      "KUMAMOTO",
	"matsuyama":     "MATSUYAMA",
}

func jisName(code string) string {
	if name, ok := jisNames[code]; ok {
		return name
	}
	return strings.ToUpper(code)
}

// parseJIS extracts the store table embedded as a JavaScript object literal
// in an inline script. Records keep the document's key order.
func parseJIS(body []byte) ([]types.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := s.Text(); strings.Contains(text, jisAnchor) {
			script = text
			return false
		}
		return true
	})
	if script == "" {
		return nil, ErrAnchorNotFound
	}

	m := jisDataPattern.FindStringSubmatch(script)
	if m == nil {
		return nil, errors.New("store table pattern not matched")
	}
	if !gjson.Valid(m[1]) {
		return nil, errors.New("store table is not valid json")
	}

	var out []types.Record
	gjson.Parse(m[1]).ForEach(func(key, store gjson.Result) bool {
		shared := store.Get("shared")
		if !store.IsObject() || !shared.Exists() {
			return true
		}
		out = append(out, types.Record{
			Name:  "JIS " + jisName(key.String()),
			Men:   countOf(shared.Get("mens_customer_num")),
			Women: countOf(shared.Get("ladys_customer_num")),
		})
		return true
	})
	return out, nil
}
