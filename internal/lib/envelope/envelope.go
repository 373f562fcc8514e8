// Package envelope reconciles the inconsistent JSON envelopes returned by the
// cinema backend into canonical lists and records.
//
// Every function here is pure: equivalent payloads give equivalent results no
// matter where they are called from.
package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KnownListFields are the domain-specific list fields the backend nests its
// collections under.
var KnownListFields = []string{
	"cumRapChieu",
	"lstCumRap",
	"danhSachRap",
	"danhSachPhim",
	"lstLichChieuTheoPhim",
	"heThongRapChieu",
}

// maxDepth bounds how far List descends into content/items wrappers.
const maxDepth = 3

// List returns the records of a payload believed to represent a list. It
// accepts the list itself, {content: [...]}, {items: [...]}, {content: {items:
// [...]}} and objects carrying one of KnownListFields or the extra field names
// given by the caller. Unknown shapes and malformed JSON give an empty list.
func List(raw []byte, nested ...string) []json.RawMessage {
	fields := KnownListFields
	if len(nested) > 0 {
		fields = append(append([]string{}, nested...), KnownListFields...)
	}
	if items, ok := find(raw, fields, 0); ok {
		return items
	}
	return []json.RawMessage{}
}

func find(raw []byte, fields []string, depth int) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || depth > maxDepth {
		return nil, false
	}
	switch raw[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		if items == nil {
			items = []json.RawMessage{}
		}
		return items, true
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		for _, key := range append([]string{"content", "items"}, fields...) {
			v, ok := obj[key]
			if !ok {
				continue
			}
			if items, ok := find(v, fields, depth+1); ok {
				return items, true
			}
		}
	}
	return nil, false
}

// Record unwraps a single record from {content: {...}}, or returns a bare
// object as is. It reports false when the payload holds no object record.
func Record(raw []byte) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	content, ok := obj["content"]
	if !ok {
		return json.RawMessage(raw), true
	}
	content = bytes.TrimSpace(content)
	if len(content) == 0 || content[0] != '{' {
		return nil, false
	}
	return content, true
}

// Page returns the items of a paged listing together with its totalCount.
// When the payload carries no totalCount the number of items is returned.
func Page(raw []byte) ([]json.RawMessage, int) {
	items := List(raw)
	total := len(items)
	var outer struct {
		TotalCount *int `json:"totalCount"`
		Content    struct {
			TotalCount *int `json:"totalCount"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &outer); err == nil {
		switch {
		case outer.Content.TotalCount != nil:
			total = *outer.Content.TotalCount
		case outer.TotalCount != nil:
			total = *outer.TotalCount
		}
	}
	return items, total
}

// DecodeList normalizes raw with List and decodes every record into T.
func DecodeList[T any](raw []byte, nested ...string) ([]T, error) {
	return DecodeItems[T](List(raw, nested...))
}

// DecodeItems decodes already normalized records into T.
func DecodeItems[T any](items []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, fmt.Errorf("envelope: decoding item %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeRecord unwraps raw with Record and decodes it into T.
func DecodeRecord[T any](raw []byte) (T, error) {
	var v T
	rec, ok := Record(raw)
	if !ok {
		return v, fmt.Errorf("envelope: payload holds no record")
	}
	if err := json.Unmarshal(rec, &v); err != nil {
		return v, fmt.Errorf("envelope: decoding record: %w", err)
	}
	return v, nil
}
