package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/newswatch/internal/model"
)

// summaryLimit caps the summary length in rendered output.
const summaryLimit = 300

type iconKey struct {
	category model.Category
	sub      model.SubCategory
}

var categoryIcons = map[iconKey]string{
	{model.CategoryBrothel, model.SubCategoryClosure}:       "\U0001f6a8",
	{model.CategoryBrothel, model.SubCategoryOpening}:       "⚠️",
	{model.CategoryProstitution, model.SubCategoryArrest}:   "\U0001f46e",
	{model.CategoryProstitution, model.SubCategoryFine}:     "\U0001f4b8",
	{model.CategoryPimping, model.SubCategoryArrest}:        "\U0001f46e",
	{model.CategoryPimping, model.SubCategorySentence}:      "⚖️",
	{model.CategoryTrafficking, model.SubCategoryArrest}:    "\U0001f46e",
	{model.CategoryTrafficking, model.SubCategoryRescue}:    "\U0001f198",
	{model.CategoryTrafficking, model.SubCategorySentence}:  "⚖️",
	{model.CategoryEnforcement, model.SubCategoryOperation}: "\U0001f50d",
	{model.CategoryEnforcement, model.SubCategoryOther}:     "\U0001f4cb",
}

var fallbackIcons = map[model.Category]string{
	model.CategoryBrothel:      "\U0001f6a8",
	model.CategoryProstitution: "\U0001f46e",
	model.CategoryPimping:      "\U0001f46e",
	model.CategoryTrafficking:  "\U0001f198",
	model.CategoryEnforcement:  "\U0001f50d",
	model.CategoryNotRelevant:  "❓",
}

var categoryNamesHe = map[model.Category]string{
	model.CategoryBrothel:      "בית בושת",
	model.CategoryProstitution: "זנות",
	model.CategoryPimping:      "סרסור",
	model.CategoryTrafficking:  "סחר בבני אדם",
	model.CategoryEnforcement:  "אכיפה",
	model.CategoryNotRelevant:  "לא רלוונטי",
}

var subCategoryNamesHe = map[model.SubCategory]string{
	model.SubCategoryClosure:   "סגירה",
	model.SubCategoryOpening:   "פתיחה",
	model.SubCategoryArrest:    "מעצר",
	model.SubCategoryFine:      "קנס",
	model.SubCategorySentence:  "גזר דין",
	model.SubCategoryRescue:    "חילוץ",
	model.SubCategoryOperation: "מבצע",
	model.SubCategoryOther:     "אחר",
}

// Icon returns the display icon for a category/sub-category pair.
func Icon(category model.Category, sub model.SubCategory) string {
	if icon, ok := categoryIcons[iconKey{category, sub}]; ok {
		return icon
	}
	if icon, ok := fallbackIcons[category]; ok {
		return icon
	}
	return "\U0001f4f0"
}

// FormatCategory renders a category pair in Hebrew, joining the
// sub-category with a chevron when present.
func FormatCategory(category model.Category, sub model.SubCategory) string {
	name, ok := categoryNamesHe[category]
	if !ok {
		name = string(category)
	}
	if sub == model.SubCategoryNone {
		return name
	}
	subName, ok := subCategoryNamesHe[sub]
	if !ok {
		subName = string(sub)
	}
	return name + " » " + subName
}

// FormatItem renders one unified story as a Hebrew text block.
func FormatItem(item model.UnifiedItem) string {
	summary := item.Summary
	if utf8.RuneCountInString(summary) > summaryLimit {
		summary = string([]rune(summary)[:summaryLimit]) + "..."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Icon(item.Category, item.SubCategory), item.Headline)
	fmt.Fprintf(&b, "תאריך: %s\n", item.Date.Format("2006-01-02"))
	fmt.Fprintf(&b, "קטגוריה: %s\n", FormatCategory(item.Category, item.SubCategory))
	fmt.Fprintf(&b, "\nתקציר: %s\n", summary)
	b.WriteString("\nמקורות:\n")
	for _, src := range item.Sources {
		fmt.Fprintf(&b, "• %s: %s\n", src.SourceName, src.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
