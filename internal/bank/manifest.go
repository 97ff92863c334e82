package bank

import (
	"encoding/json"
	"fmt"
)

// Manifest describes the question bank: named groups of question-set files,
// each with a declared question count the loader reconciles against the
// file's actual content.
type Manifest struct {
	Groups []ManifestGroup `json:"questionListFiles"`
}

type ManifestGroup struct {
	Label    string          `json:"label"`
	Children []ManifestChild `json:"children"`
}

type ManifestChild struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// ParseManifest decodes a manifest document.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("bank: parse manifest: %w", err)
	}
	if len(m.Groups) == 0 {
		return Manifest{}, fmt.Errorf("bank: manifest has no question list files")
	}
	return m, nil
}

// decodeRecords accepts either a bare array of records or an object with a
// "questions" field, the two shapes question-set files come in.
func decodeRecords(data []byte) ([]RawQuestion, error) {
	var bare []RawQuestion
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	var wrapped struct {
		Questions []RawQuestion `json:"questions"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("neither a question array nor a {questions: ...} object: %w", err)
	}
	return wrapped.Questions, nil
}
