package adapter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/loungewatch/loungewatch/pkg/types"
)

// parseOriental reads one record per venue card on the chain's landing page.
// Cards without a heading are not venues and are skipped.
func parseOriental(body []byte) ([]types.Record, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []types.Record
	doc.Find("a.card.wave-anime-wrap").Each(func(_ int, card *goquery.Selection) {
		h4 := card.Find("h4").First()
		if h4.Length() == 0 {
			return
		}
		out = append(out, types.Record{
			Name:  "Oriental " + strings.TrimSpace(h4.Text()),
			Men:   countText(card.Find(".num-male").First().Text()),
			Women: countText(card.Find(".num-female").First().Text()),
		})
	})
	return out, nil
}
