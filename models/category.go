package models

import (
	"encoding/json"
	"fmt"
)

// CategoryMap assigns dense integer codes to the labels of one categorical
// column in first-seen order. It serializes as the ordered label list, so the
// code of a label is its index and the encoding is byte-for-byte reproducible.
type CategoryMap struct {
	labels []string
	codes  map[string]int
}

// NewCategoryMap returns an empty map.
func NewCategoryMap() *CategoryMap {
	return &CategoryMap{codes: make(map[string]int)}
}

// Add returns the code of label, assigning the next unused code when the
// label has not been seen before.
func (m *CategoryMap) Add(label string) int {
	if code, ok := m.codes[label]; ok {
		return code
	}
	code := len(m.labels)
	m.labels = append(m.labels, label)
	m.codes[label] = code
	return code
}

// Code looks up label without assigning a new code.
func (m *CategoryMap) Code(label string) (int, bool) {
	code, ok := m.codes[label]
	return code, ok
}

// Labels returns a copy of the labels ordered by code.
func (m *CategoryMap) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// Len returns the number of distinct labels.
func (m *CategoryMap) Len() int {
	return len(m.labels)
}

func (m *CategoryMap) MarshalJSON() ([]byte, error) {
	if m.labels == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.labels)
}

func (m *CategoryMap) UnmarshalJSON(data []byte) error {
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return err
	}
	fresh := NewCategoryMap()
	for i, label := range labels {
		if fresh.Add(label) != i {
			return fmt.Errorf("category map: duplicate label %q", label)
		}
	}
	*m = *fresh
	return nil
}
