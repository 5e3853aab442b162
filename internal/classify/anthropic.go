package classify

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/model"
	"github.com/sells-group/newswatch/internal/resilience"
	"github.com/sells-group/newswatch/pkg/anthropic"
)

const classificationPrompt = `You classify Hebrew news articles for relevance to anti-prostitution enforcement in Israel.

Given a news headline and snippet, determine:
1. Is this relevant to: brothels, prostitution, pimping, human trafficking, or enforcement?
2. Category: brothel | prostitution | pimping | trafficking | enforcement | not_relevant
3. Sub-category (if relevant):
   - brothel: closure | opening
   - prostitution: arrest | fine
   - pimping: arrest | sentence
   - trafficking: arrest | rescue | sentence
   - enforcement: operation | other
4. Confidence: high | medium | low

Article:
כותרת: %s
תקציר: %s

Respond with JSON only, no explanation:
{"relevant": true/false, "category": "...", "sub_category": "...", "confidence": "..."}`

// snippetLimit caps the snippet length sent to the model.
const snippetLimit = 300

// AnthropicClassifier implements Classifier via the Messages API.
type AnthropicClassifier struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
	retry   resilience.RetryConfig
	breaker *resilience.CircuitBreaker
}

// NewAnthropic creates a classifier using the given API client.
func NewAnthropic(client anthropic.Client, cfg config.ClassifierConfig) *AnthropicClassifier {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = 2
	retry.InitialBackoff = time.Second

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &AnthropicClassifier{
		client:  client,
		model:   cfg.Model,
		timeout: timeout,
		retry:   retry,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{}),
	}
}

// Classify asks the model for a verdict on one item. An unparseable
// response degrades to not_relevant; API errors are returned to the
// caller.
func (c *AnthropicClassifier) Classify(ctx context.Context, item model.RawItem) (model.ClassificationResult, error) {
	prompt := fmt.Sprintf(classificationPrompt, item.Title, truncateRunes(item.Snippet, snippetLimit))

	var resp *anthropic.MessageResponse
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			return c.client.CreateMessage(callCtx, anthropic.MessageRequest{
				Model:     c.model,
				MaxTokens: 256,
				Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
			})
		})
		return callErr
	})
	if err != nil {
		return model.ClassificationResult{}, eris.Wrapf(err, "classify: item %s", item.URL)
	}

	resp.Usage.Log(c.model, "classify")

	result := parseResponse(extractText(resp))
	zap.L().Debug("classify: verdict",
		zap.String("url", item.URL),
		zap.Bool("relevant", result.Relevant),
		zap.String("category", string(result.Category)),
		zap.String("confidence", string(result.Confidence)),
	)
	return result, nil
}

func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	for _, block := range resp.Content {
		if block.Text != "" {
			return block.Text
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
