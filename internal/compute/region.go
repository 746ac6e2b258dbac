package compute

import "strings"

// RegionOther is assigned to venues whose name matches no keyword.
const RegionOther = "Other"

// Region is a named area with the keywords that identify it in venue names.
// Keywords cover every script a feed may use (romanized, kanji/kana, and the
// all-caps form some feeds emit).
type Region struct {
	Name     string
	Keywords []string
}

// Regions is evaluated in order; the first region with a keyword contained
// in the venue name wins. Keep more specific regions ahead of broader ones.
var Regions = []Region{
	{Name: "Hokkaido", Keywords: []string{"Sapporo", "札幌", "SAPPORO"}},
	{Name: "Kanto", Keywords: []string{
		"Shinjuku", "新宿", "SHINJUKU",
		"Shibuya", "渋谷", "SHIBUYA",
		"Ebisu", "恵比寿",
		"Ueno", "上野",
		"Ginza", "銀座",
		"Machida", "町田",
		"Omiya", "大宮", "OMIYA",
		"Yokohama", "横浜",
		"Chiba", "千葉",
		"Utsunomiya", "宇都宮",
	}},
	{Name: "Tokai", Keywords: []string{
		"Nagoya", "名古屋", "NAGOYA",
		"Shizuoka", "静岡",
		"Hamamatsu", "浜松",
	}},
	{Name: "Kansai", Keywords: []string{
		"Umeda", "梅田", "UMEDA",
		"Namba", "難波", "なんば", "NAMBA",
		"Chayamachi", "茶屋町", "CHAYAMACHI",
		"Shinsaibashi", "心斎橋",
		"Kyoto", "京都",
		"Kobe", "神戸",
		"Sannomiya", "三宮",
	}},
	{Name: "Chugoku", Keywords: []string{
		"Okayama", "岡山", "OKAYAMA",
		"Hiroshima", "広島", "HIROSHIMA",
	}},
	{Name: "Shikoku", Keywords: []string{
		"Matsuyama", "松山", "MATSUYAMA",
		"Takamatsu", "高松",
	}},
	{Name: "Kyushu", Keywords: []string{
		"Fukuoka", "福岡", "FUKUOKA",
		"Tenjin", "天神",
		"Kokura", "小倉",
		"Kumamoto", "熊本", "KUMAMOTO",
		"Kagoshima", "鹿児島",
		"Miyazaki", "宮崎",
		"Okinawa", "沖縄",
	}},
}

// Classify returns the region of a venue name, or RegionOther. Matching is a
// case-sensitive substring test.
func Classify(name string) string {
	for _, r := range Regions {
		for _, kw := range r.Keywords {
			if strings.Contains(name, kw) {
				return r.Name
			}
		}
	}
	return RegionOther
}
