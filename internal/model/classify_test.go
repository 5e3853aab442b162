package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryBrothel, ParseCategory("brothel"))
	assert.Equal(t, CategoryEnforcement, ParseCategory("enforcement"))
	assert.Equal(t, CategoryNotRelevant, ParseCategory("sports"))
	assert.Equal(t, CategoryNotRelevant, ParseCategory(""))
}

func TestParseSubCategory(t *testing.T) {
	assert.Equal(t, SubCategoryClosure, ParseSubCategory("closure"))
	assert.Equal(t, SubCategoryNone, ParseSubCategory("bogus"))
	assert.Equal(t, SubCategoryNone, ParseSubCategory(""))
}

func TestParseConfidence(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ParseConfidence("high"))
	assert.Equal(t, ConfidenceLow, ParseConfidence("low"))
	assert.Equal(t, ConfidenceMedium, ParseConfidence("certain"))
}

func TestNormalizeNotRelevant(t *testing.T) {
	r := ClassificationResult{
		Relevant:    false,
		Category:    CategoryBrothel,
		SubCategory: SubCategoryClosure,
		Confidence:  ConfidenceHigh,
	}.Normalize()

	assert.Equal(t, CategoryNotRelevant, r.Category)
	assert.Equal(t, SubCategoryNone, r.SubCategory)
	assert.Equal(t, ConfidenceHigh, r.Confidence)
}

func TestNormalizeRelevantUntouched(t *testing.T) {
	r := ClassificationResult{
		Relevant:    true,
		Category:    CategoryTrafficking,
		SubCategory: SubCategoryRescue,
		Confidence:  ConfidenceMedium,
	}.Normalize()

	assert.Equal(t, CategoryTrafficking, r.Category)
	assert.Equal(t, SubCategoryRescue, r.SubCategory)
}

func TestUnifiedItemURLs(t *testing.T) {
	item := UnifiedItem{
		Sources: []SourceRef{
			{SourceName: "ynet", URL: "https://ynet.example/a"},
			{SourceName: "mako", URL: "https://mako.example/b"},
		},
	}
	assert.Equal(t, []string{"https://ynet.example/a", "https://mako.example/b"}, item.URLs())
}
