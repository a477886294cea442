// Package schema brings records from every scraper generation to one shape.
package schema

import "github.com/IshaanNene/NewsGoat/internal/types"

// ExpectedFields is the field set of a master-store record, in order.
var ExpectedFields = []string{
	types.FieldSource,
	types.FieldURL,
	types.FieldDate,
	types.FieldTime,
	types.FieldTitle,
	types.FieldBody,
	types.FieldCleanBody,
	types.FieldSummary,
	types.FieldKeywords,
	types.FieldImageURL,
	types.FieldT,
}

// FillDefaults sets every field of fields that rec lacks: an empty list
// for keywords, the empty string otherwise. Present fields are kept even
// when empty. rec is modified in place and returned.
func FillDefaults(rec *types.Record, fields []string) *types.Record {
	for _, f := range fields {
		if rec.Has(f) {
			continue
		}
		rec.Set(f, Default(f))
	}
	return rec
}

// Missing lists the fields of fields that rec lacks, in order.
func Missing(rec *types.Record, fields []string) []string {
	var missing []string
	for _, f := range fields {
		if !rec.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Default returns the zero value stored for an absent field.
func Default(field string) any {
	if field == types.FieldKeywords {
		return []string{}
	}
	return ""
}
