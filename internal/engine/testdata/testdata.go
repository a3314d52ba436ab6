package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled flatten request with the field values its record
// must carry.
type CorpusEntry struct {
	Name   string          `json:"name"`
	Domain string          `json:"domain"`
	Data   json.RawMessage `json:"data"`
	Shape  string          `json:"shape"`
	Expect map[string]any  `json:"expect"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
