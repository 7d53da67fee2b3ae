package pipeline

import "backoffice-backend/internal/domains/importacao/model"

// DuplicateDetector tracks natural keys across one file.
// seen is file-internal (first occurrence wins) and is filled as rows are
// checked; existing is loaded once per run from persisted storage.
type DuplicateDetector struct {
	schema    model.Schema
	seen      model.KeySet
	firstLine map[string]int
	existing  model.KeySet
}

func NewDuplicateDetector(schema model.Schema, seen, existing model.KeySet) *DuplicateDetector {
	if seen == nil {
		seen = model.NewKeySet()
	}
	if existing == nil {
		existing = model.NewKeySet()
	}
	return &DuplicateDetector{
		schema:    schema,
		seen:      seen,
		firstLine: make(map[string]int),
		existing:  existing,
	}
}

// Check computes the natural key of a normalized row and reports whether an
// earlier row of the same file already claimed it. The first occurrence
// claims the key even if it later fails validation. firstLine is 0 when the
// key was in seen before this detector met it.
func (d *DuplicateDetector) Check(row model.ImportRow) (key string, firstLine int, duplicate bool) {
	key = d.schema.KeyOf(row.Values)
	if key == "" {
		return "", 0, false
	}
	if d.seen.Has(key) {
		return key, d.firstLine[key], true
	}
	d.seen.Add(key)
	d.firstLine[key] = row.Line
	return key, 0, false
}

// Exists reports whether the key is already persisted
func (d *DuplicateDetector) Exists(key string) bool {
	return key != "" && d.existing.Has(key)
}

// ========================================
// CLASSIFY
// ========================================

// Classify runs every row through Normalizer, DuplicateDetector and Validator
// in file order. Fully blank rows are skipped. Duplicates are not validated.
// seen collects the keys met in the file and is mutated in place.
func Classify(schema model.Schema, rows []model.ImportRow, refs *model.ReferenceSet, seen, existing model.KeySet) model.Classification {
	normalizer := NewNormalizer(schema)
	detector := NewDuplicateDetector(schema, seen, existing)
	validator := NewValidator(schema, refs)

	var out model.Classification
	for _, raw := range rows {
		if raw.IsEmpty() {
			out.Skipped++
			continue
		}

		row := normalizer.Normalize(raw)

		key, firstLine, dup := detector.Check(row)
		if dup {
			out.Add(model.ValidatedRow{
				Row:         row,
				Key:         key,
				Bucket:      model.BucketDuplicate,
				DuplicateOf: firstLine,
			})
			continue
		}

		checked, errs := validator.Validate(row)
		vr := model.ValidatedRow{Row: checked, Key: key, Errors: errs}
		switch {
		case len(errs) > 0:
			vr.Bucket = model.BucketInvalid
		case detector.Exists(key):
			vr.Bucket = model.BucketUpdate
		default:
			vr.Bucket = model.BucketValid
		}
		out.Add(vr)
	}

	return out
}
