package adapter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/loungewatch/loungewatch/pkg/types"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseJSON validates body and returns its root value.
func parseJSON(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errors.New("invalid json")
	}
	return gjson.ParseBytes(body), nil
}

// parseXIX reads the first element of the single-venue status array.
func parseXIX(body []byte) ([]types.Record, error) {
	root, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("expected array, got %s", root.Type)
	}
	items := root.Array()
	if len(items) == 0 {
		return nil, nil
	}
	info := items[0]
	if !info.IsObject() {
		return nil, fmt.Errorf("expected object element, got %s", info.Type)
	}
	return []types.Record{{
		Name:  "XIX OKAYAMA",
		Men:   countOf(info.Get("m_cnt")),
		Women: countOf(info.Get("w_cnt")),
	}}, nil
}

// parseAlfa reads the venue counter object. The feed sometimes prefixes its
// body with a UTF-8 byte order mark.
func parseAlfa(body []byte) ([]types.Record, error) {
	root, err := parseJSON(body)
	if err != nil {
		root, err = parseJSON(bytes.TrimPrefix(body, utf8BOM))
		if err != nil {
			return nil, err
		}
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", root.Type)
	}
	return []types.Record{{
		Name:  "ALFA HIROSHIMA",
		Men:   countOf(root.Get("man_num")),
		Women: countOf(root.Get("woman_num")),
	}}, nil
}

// parseYatakoi merges the regular and ykMales/ykFemales counters. A null or
// empty document means the venue published nothing.
func parseYatakoi(body []byte) ([]types.Record, error) {
	root, err := parseJSON(body)
	if err != nil {
		return nil, err
	}
	if root.Type == gjson.Null {
		return nil, nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("expected object, got %s", root.Type)
	}
	if len(root.Map()) == 0 {
		return nil, nil
	}
	return []types.Record{{
		Name:  "YATAKOI UMEDA",
		Men:   countOf(root.Get("males")) + countOf(root.Get("ykMales")),
		Women: countOf(root.Get("females")) + countOf(root.Get("ykFemales")),
	}}, nil
}
