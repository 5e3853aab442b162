package model

// Category is the top-level relevance bucket for a news item.
type Category string

const (
	CategoryBrothel      Category = "brothel"
	CategoryProstitution Category = "prostitution"
	CategoryPimping      Category = "pimping"
	CategoryTrafficking  Category = "trafficking"
	CategoryEnforcement  Category = "enforcement"
	CategoryNotRelevant  Category = "not_relevant"
)

// SubCategory refines a Category. An empty SubCategory is valid.
type SubCategory string

const (
	SubCategoryNone      SubCategory = ""
	SubCategoryClosure   SubCategory = "closure"
	SubCategoryOpening   SubCategory = "opening"
	SubCategoryArrest    SubCategory = "arrest"
	SubCategoryFine      SubCategory = "fine"
	SubCategorySentence  SubCategory = "sentence"
	SubCategoryRescue    SubCategory = "rescue"
	SubCategoryOperation SubCategory = "operation"
	SubCategoryOther     SubCategory = "other"
)

// Confidence is the classifier's self-reported certainty.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

var validCategories = map[Category]bool{
	CategoryBrothel:      true,
	CategoryProstitution: true,
	CategoryPimping:      true,
	CategoryTrafficking:  true,
	CategoryEnforcement:  true,
	CategoryNotRelevant:  true,
}

var validSubCategories = map[SubCategory]bool{
	SubCategoryClosure:   true,
	SubCategoryOpening:   true,
	SubCategoryArrest:    true,
	SubCategoryFine:      true,
	SubCategorySentence:  true,
	SubCategoryRescue:    true,
	SubCategoryOperation: true,
	SubCategoryOther:     true,
}

// ParseCategory maps a raw string to a Category, falling back to
// not_relevant for unknown values.
func ParseCategory(s string) Category {
	if validCategories[Category(s)] {
		return Category(s)
	}
	return CategoryNotRelevant
}

// ParseSubCategory maps a raw string to a SubCategory, falling back to
// empty for unknown values.
func ParseSubCategory(s string) SubCategory {
	if validSubCategories[SubCategory(s)] {
		return SubCategory(s)
	}
	return SubCategoryNone
}

// ParseConfidence maps a raw string to a Confidence, defaulting to medium.
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return Confidence(s)
	default:
		return ConfidenceMedium
	}
}

// ClassificationResult is the verdict attached to one RawItem.
type ClassificationResult struct {
	Relevant    bool        `json:"relevant"`
	Category    Category    `json:"category"`
	SubCategory SubCategory `json:"sub_category,omitempty"`
	Confidence  Confidence  `json:"confidence"`
}

// NotRelevantResult is the degraded verdict used when classification fails
// or the item falls outside the taxonomy.
func NotRelevantResult() ClassificationResult {
	return ClassificationResult{
		Relevant:   false,
		Category:   CategoryNotRelevant,
		Confidence: ConfidenceLow,
	}
}

// Normalize enforces the verdict invariant: a non-relevant item carries
// category not_relevant and no sub-category.
func (r ClassificationResult) Normalize() ClassificationResult {
	if !r.Relevant {
		r.Category = CategoryNotRelevant
		r.SubCategory = SubCategoryNone
	}
	return r
}

// ClassifiedItem pairs a RawItem with its verdict.
type ClassifiedItem struct {
	Item   RawItem              `json:"item"`
	Result ClassificationResult `json:"result"`
}
