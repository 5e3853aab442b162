// Package classify decides whether a news item belongs to the
// enforcement taxonomy, using an LLM behind a narrow interface.
package classify

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/newswatch/internal/model"
)

// Classifier assigns a relevance verdict to a single item.
type Classifier interface {
	Classify(ctx context.Context, item model.RawItem) (model.ClassificationResult, error)
}

// wireResult mirrors the JSON object the model is instructed to emit.
type wireResult struct {
	Relevant    bool   `json:"relevant"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	Confidence  string `json:"confidence"`
}

// parseResponse turns raw model output into a verdict. Responses that are
// not valid JSON degrade to not_relevant rather than failing the item.
func parseResponse(text string) model.ClassificationResult {
	var wire wireResult
	if err := json.Unmarshal([]byte(cleanJSON(text)), &wire); err != nil {
		zap.L().Warn("classify: unparseable response", zap.Error(err))
		return model.NotRelevantResult()
	}

	result := model.ClassificationResult{
		Relevant:    wire.Relevant,
		Category:    model.ParseCategory(wire.Category),
		SubCategory: model.ParseSubCategory(wire.SubCategory),
		Confidence:  model.ParseConfidence(wire.Confidence),
	}
	return result.Normalize()
}

// cleanJSON extracts a JSON object from text that may contain markdown
// code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
