package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/IshaanNene/NewsGoat/internal/types"
)

func TestFillDefaultsCompletes(t *testing.T) {
	rec := types.NewRecord("https://example.com/a")
	rec.Set(types.FieldTitle, "A")

	FillDefaults(rec, ExpectedFields)

	for _, f := range ExpectedFields {
		assert.True(t, rec.Has(f), "field %s missing", f)
	}
	assert.Empty(t, Missing(rec, ExpectedFields))
	assert.Equal(t, []string{}, rec.Fields[types.FieldKeywords])
	assert.Equal(t, "", rec.Fields[types.FieldBody])
	assert.Equal(t, "", rec.Fields[types.FieldT])
}

func TestFillDefaultsKeepsPresentFields(t *testing.T) {
	rec := types.NewRecord("https://example.com/a")
	rec.Set(types.FieldTitle, "A")
	rec.Set(types.FieldBody, "")
	rec.Set(types.FieldKeywords, nil)
	rec.Set(types.FieldT, 131)
	rec.Set("authors", "someone")

	FillDefaults(rec, ExpectedFields)

	assert.Equal(t, "A", rec.Title())
	assert.Equal(t, "", rec.Fields[types.FieldBody])
	assert.Nil(t, rec.Fields[types.FieldKeywords])
	assert.Equal(t, 131, rec.Fields[types.FieldT])
	assert.Equal(t, "someone", rec.Fields["authors"])
}

func TestMissing(t *testing.T) {
	rec := types.NewRecord("https://example.com/a")
	rec.Set(types.FieldDate, "2025-01-01")

	got := Missing(rec, []string{types.FieldURL, types.FieldDate, types.FieldTime, types.FieldBody})
	assert.Equal(t, []string{types.FieldTime, types.FieldBody}, got)
}
