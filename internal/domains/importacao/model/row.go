package model

import "strings"

// ========================================
// RAW ROW
// ========================================

// ImportRow is one spreadsheet row: column header -> cell value.
// Line is the spreadsheet line number (header is line 1) used in error messages.
type ImportRow struct {
	Line   int               `json:"line"`
	Values map[string]string `json:"values"`
}

// Get returns the value of a column, "" when absent
func (r ImportRow) Get(col string) string {
	return r.Values[col]
}

// IsEmpty reports whether every cell is blank
func (r ImportRow) IsEmpty() bool {
	for _, v := range r.Values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Clone returns a copy whose Values map can be modified freely
func (r ImportRow) Clone() ImportRow {
	values := make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		values[k] = v
	}
	return ImportRow{Line: r.Line, Values: values}
}

// ========================================
// CLASSIFIED ROW
// ========================================

// Bucket is the single class a row ends up in after classification
type Bucket string

const (
	BucketValid     Bucket = "valid"
	BucketInvalid   Bucket = "invalid"
	BucketDuplicate Bucket = "duplicate"
	BucketUpdate    Bucket = "update"
)

// ValidatedRow is an ImportRow plus its accumulated errors and bucket.
// A row with any error is never in BucketValid or BucketUpdate.
type ValidatedRow struct {
	Row         ImportRow `json:"row"`
	Key         string    `json:"key,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
	Bucket      Bucket    `json:"bucket"`
	DuplicateOf int       `json:"duplicate_of,omitempty"` // line of the first occurrence
}

// Classification partitions the non-empty rows of a file
type Classification struct {
	Valid      []ValidatedRow `json:"valid"`
	Invalid    []ValidatedRow `json:"invalid"`
	Duplicates []ValidatedRow `json:"duplicates"`
	Updates    []ValidatedRow `json:"updates"`
	Skipped    int            `json:"skipped"` // fully blank rows
}

// Total is the number of non-empty rows classified
func (c Classification) Total() int {
	return len(c.Valid) + len(c.Invalid) + len(c.Duplicates) + len(c.Updates)
}

// Add places a row into the bucket it carries
func (c *Classification) Add(row ValidatedRow) {
	switch row.Bucket {
	case BucketValid:
		c.Valid = append(c.Valid, row)
	case BucketInvalid:
		c.Invalid = append(c.Invalid, row)
	case BucketDuplicate:
		c.Duplicates = append(c.Duplicates, row)
	case BucketUpdate:
		c.Updates = append(c.Updates, row)
	}
}

// ========================================
// KEY SETS
// ========================================

// KeySet is a set of natural keys. Two named instances are used per run:
// SeenKeys (keys already met in the current file) and ExistingKeys
// (keys already persisted, loaded once at session start).
type KeySet map[string]struct{}

// NewKeySet builds a set from a list of keys, ignoring blanks
func NewKeySet(keys ...string) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s KeySet) Add(key string) {
	if key != "" {
		s[key] = struct{}{}
	}
}

func (s KeySet) Has(key string) bool {
	_, ok := s[key]
	return ok
}
