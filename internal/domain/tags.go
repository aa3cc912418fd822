package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TagList accepts either a single JSON string or an array of strings and
// always holds the normalised list form.
type TagList []string

func (l *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = NormalizeTags([]string{s})
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("tags must be a string or a list of strings: %w", err)
		}
		*l = NormalizeTags(items)
		return nil
	default:
		return fmt.Errorf("tags must be a string or a list of strings, got %s", string(data))
	}
}

// NormalizeTags trims whitespace and drops empty and duplicate entries.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
