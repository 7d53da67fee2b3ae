package model

import (
	"sort"
	"strings"

	"github.com/schollz/closestmatch"
)

// ReferenceEntry is one active foreign-key code (CCA).
// Key is the normalized lookup code, Code the canonical value written back
// into rows, ID the internal id used by the writer.
type ReferenceEntry struct {
	Key  string `json:"key"`
	Code string `json:"code"`
	ID   string `json:"id"`
}

// ReferenceSet maps normalized codes to canonical entries.
// Built once per import run and read-only afterwards.
type ReferenceSet struct {
	byKey   map[string]ReferenceEntry
	byCode  map[string]ReferenceEntry
	entries []ReferenceEntry
	matcher *closestmatch.ClosestMatch
}

// NormalizeCode is the case-insensitive form used for lookups
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewReferenceSet indexes entries by normalized key and by canonical code.
// An entry with an empty Key is indexed by its Code.
func NewReferenceSet(entries []ReferenceEntry) *ReferenceSet {
	s := &ReferenceSet{
		byKey:  make(map[string]ReferenceEntry, len(entries)),
		byCode: make(map[string]ReferenceEntry, len(entries)),
	}

	for _, e := range entries {
		if e.Key == "" {
			e.Key = e.Code
		}
		e.Key = NormalizeCode(e.Key)
		if e.Key == "" {
			continue
		}
		s.byKey[e.Key] = e
		s.byCode[NormalizeCode(e.Code)] = e
		s.entries = append(s.entries, e)
	}

	sort.Slice(s.entries, func(i, j int) bool { return s.entries[i].Key < s.entries[j].Key })

	if len(s.byKey) > 0 {
		keys := make([]string, 0, len(s.byKey))
		for k := range s.byKey {
			keys = append(keys, k)
		}
		s.matcher = closestmatch.New(keys, []int{2, 3})
	}

	return s
}

// Lookup finds an entry by normalized key, falling back to canonical code
// so values already rewritten by a previous validation still resolve.
func (s *ReferenceSet) Lookup(code string) (ReferenceEntry, bool) {
	if s == nil {
		return ReferenceEntry{}, false
	}
	n := NormalizeCode(code)
	if n == "" {
		return ReferenceEntry{}, false
	}
	if e, ok := s.byKey[n]; ok {
		return e, true
	}
	e, ok := s.byCode[n]
	return e, ok
}

// ResolveID returns the internal id for a code, or nil when unknown
func (s *ReferenceSet) ResolveID(code string) *string {
	e, ok := s.Lookup(code)
	if !ok || e.ID == "" {
		return nil
	}
	id := e.ID
	return &id
}

// Suggest returns the closest known code for an unknown one, "" if none
func (s *ReferenceSet) Suggest(code string) string {
	if s == nil || s.matcher == nil {
		return ""
	}
	return s.matcher.Closest(NormalizeCode(code))
}

// Entries returns the indexed entries sorted by key (used to snapshot a run)
func (s *ReferenceSet) Entries() []ReferenceEntry {
	if s == nil {
		return nil
	}
	out := make([]ReferenceEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len is the number of indexed codes
func (s *ReferenceSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.byKey)
}
