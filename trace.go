package history

import (
	"encoding/json"
)

// MergeTrace records where each field of a merged branch came from.
type MergeTrace struct {
	ID      string            `json:"id"`
	Base    string            `json:"base"`
	Other   string            `json:"other"`
	Target  string            `json:"target"`
	Cursor  int               `json:"cursor"`
	Dropped int               `json:"dropped,omitempty"`
	Entries []EntryProvenance `json:"entries"`
}

// EntryProvenance maps each populated top level field of a merged entry to
// the branch that supplied it. Verbatim is set when base had no entry at
// Index and the other branch's entry was copied unchanged.
type EntryProvenance struct {
	Index    int               `json:"index"`
	Fields   map[string]string `json:"fields,omitempty"`
	Verbatim bool              `json:"verbatim,omitempty"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t MergeTrace) ToJSON() ([]byte, error) {
	type alias MergeTrace
	return json.Marshal(alias(t))
}

// MergeTraceFromJSON deserialises a payload produced by ToJSON.
func MergeTraceFromJSON(payload []byte) (MergeTrace, error) {
	type alias MergeTrace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return MergeTrace{}, err
	}
	return MergeTrace(trace), nil
}

// Source returns the branch that supplied field at index, if any.
func (t MergeTrace) Source(index int, field string) (string, bool) {
	if index < 0 || index >= len(t.Entries) {
		return "", false
	}
	name, ok := t.Entries[index].Fields[field]
	return name, ok
}
