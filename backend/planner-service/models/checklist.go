package models

import "encoding/json"

// ChecklistItem has no identity of its own; it is addressed by position.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// EncodeChecklist serializes a checklist into the text column form.
func EncodeChecklist(items []ChecklistItem) string {
	if items == nil {
		items = []ChecklistItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// DecodeChecklist parses the text column. Empty or malformed input yields
// an empty checklist.
func DecodeChecklist(raw string) []ChecklistItem {
	items := []ChecklistItem{}
	if raw == "" {
		return items
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []ChecklistItem{}
	}
	return items
}
