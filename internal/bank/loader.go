package bank

import (
	"fmt"
	"sort"
)

// FileLoader resolves a manifest file name to its raw bytes. Injected so
// the loader does not care whether files come from bundled assets, a data
// directory, or imports.
type FileLoader func(file string) ([]byte, error)

// RecordIssue is a skipped record: invalid, reported, but not fatal.
type RecordIssue struct {
	File   string
	Index  int // position within the file
	Reason string
}

// GroupInfo is the loaded metadata for one manifest group.
type GroupInfo struct {
	Label    string
	Children []ChildInfo
}

type ChildInfo struct {
	File     string
	Declared int
	Loaded   int
}

// Bank is the flattened, deduplicated catalog plus group metadata.
// Immutable after LoadBank returns.
type Bank struct {
	Groups []GroupInfo
	Issues []RecordIssue // records skipped by validation

	order   []string
	byID    map[string]Question
	byGroup map[string][]string
}

// Size returns the number of catalog questions.
func (b *Bank) Size() int { return len(b.order) }

// Get looks up a question by identifier.
func (b *Bank) Get(id string) (Question, bool) {
	q, ok := b.byID[id]
	return q, ok
}

// All returns every question in catalog (manifest) order.
func (b *Bank) All() []Question {
	out := make([]Question, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.byID[id])
	}
	return out
}

// Group returns the questions of one manifest group in catalog order, or
// nil for an unknown label.
func (b *Bank) Group(label string) []Question {
	ids, ok := b.byGroup[label]
	if !ok {
		return nil
	}
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.byID[id])
	}
	return out
}

// LoadBank loads every manifest-referenced file through load, validates the
// records, and builds the catalog. Count mismatches and duplicate ids are
// collected across all files and returned together as a *LoadError; the
// partially valid bank is still returned so the caller can decide whether a
// degraded catalog is acceptable. I/O and decode failures abort immediately.
func LoadBank(m Manifest, load FileLoader) (*Bank, error) {
	b := &Bank{
		byID:    map[string]Question{},
		byGroup: map[string][]string{},
	}
	var agg LoadError
	firstFile := map[string]string{}  // id -> file that owns it
	dupFiles := map[string][]string{} // id -> all files it appeared in

	for _, g := range m.Groups {
		gi := GroupInfo{Label: g.Label}
		for _, child := range g.Children {
			data, err := load(child.File)
			if err != nil {
				return nil, fmt.Errorf("bank: load %s: %w", child.File, err)
			}
			raws, err := decodeRecords(data)
			if err != nil {
				return nil, fmt.Errorf("bank: decode %s: %w", child.File, err)
			}

			valid := 0
			for i, raw := range raws {
				q, err := Validate(raw)
				if err != nil {
					b.Issues = append(b.Issues, RecordIssue{File: child.File, Index: i, Reason: err.Error()})
					continue
				}
				valid++
				if q.TestName == "" {
					q.TestName = g.Label
				}
				if owner, dup := firstFile[q.ID]; dup {
					if len(dupFiles[q.ID]) == 0 {
						dupFiles[q.ID] = append(dupFiles[q.ID], owner)
					}
					dupFiles[q.ID] = append(dupFiles[q.ID], child.File)
					continue
				}
				firstFile[q.ID] = child.File
				b.byID[q.ID] = q
				b.order = append(b.order, q.ID)
				b.byGroup[g.Label] = append(b.byGroup[g.Label], q.ID)
			}

			gi.Children = append(gi.Children, ChildInfo{File: child.File, Declared: child.Count, Loaded: valid})
			if valid != child.Count {
				agg.Mismatches = append(agg.Mismatches, CountMismatch{File: child.File, Expected: child.Count, Actual: valid})
			}
		}
		b.Groups = append(b.Groups, gi)
	}

	ids := make([]string, 0, len(dupFiles))
	for id := range dupFiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		agg.Duplicates = append(agg.Duplicates, DuplicateID{ID: id, Files: dupFiles[id]})
	}

	if len(agg.Mismatches) > 0 || len(agg.Duplicates) > 0 {
		return b, &agg
	}
	return b, nil
}
