package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/fundscope/fundscope/internal/ai"
	"github.com/fundscope/fundscope/internal/model"
)

// Character budget for the text handed to the language model; keeps the
// request inside provider prompt limits.
const maxFallbackChars = 8000

const fallbackPromptFormat = `Extract fund performance data from the following text.

Find all capital calls and distributions mentioned in the text.

For each capital call, extract:
- date (in YYYY-MM-DD format)
- amount (numeric only, without currency symbols)
- purpose/description

For each distribution, extract:
- date (in YYYY-MM-DD format)
- amount (numeric only, without currency symbols)
- type (e.g., "Distribution", "Return of Capital")
- description

Return ONLY a valid JSON object in this exact format (no markdown, no code blocks):
{
  "capital_calls": [
    {"date": "2025-05-01", "amount": 5000000, "call_type": "Standard Call", "description": "Follow-on investment"}
  ],
  "distributions": [
    {"date": "2025-03-15", "amount": 2000000, "distribution_type": "Distribution", "description": "Q1 2025 distribution"}
  ]
}

Text:
%s`

// FallbackResult carries what the language model recovered from raw text.
// The fallback never infers adjustments.
type FallbackResult struct {
	CapitalCalls  []model.CapitalCall
	Distributions []model.Distribution
}

type fallbackItem struct {
	Date             string      `json:"date"`
	Amount           json.Number `json:"amount"`
	CallType         string      `json:"call_type"`
	DistributionType string      `json:"distribution_type"`
	Description      string      `json:"description"`
}

type fallbackReply struct {
	CapitalCalls  []fallbackItem `json:"capital_calls"`
	Distributions []fallbackItem `json:"distributions"`
}

// TextExtractor is the LLM-assisted fallback used when structured table
// extraction comes up empty. It degrades to empty results on any provider or
// parse failure; the ingestion run continues either way.
type TextExtractor struct {
	gen ai.IGenerator
}

func NewTextExtractor(gen ai.IGenerator) *TextExtractor {
	return &TextExtractor{gen: gen}
}

func (e *TextExtractor) Extract(ctx context.Context, fullText string) FallbackResult {
	logger := logutil.GetLogger(ctx)
	if e == nil || e.gen == nil {
		logger.Warn("language model not available for text extraction")
		return FallbackResult{}
	}
	if strings.TrimSpace(fullText) == "" {
		logger.Warn("no text available for fallback extraction")
		return FallbackResult{}
	}
	fullText = truncateAtRune(fullText, maxFallbackChars)

	reply, err := e.gen.Generate(ctx, fmt.Sprintf(fallbackPromptFormat, fullText))
	if err != nil {
		logger.Error("fallback extraction request failed", zap.Error(err))
		return FallbackResult{}
	}

	var parsed fallbackReply
	if err := json.Unmarshal([]byte(StripCodeFence(reply)), &parsed); err != nil {
		logger.Error("fallback reply is not valid json", zap.Error(err))
		return FallbackResult{}
	}

	var result FallbackResult
	for _, item := range parsed.CapitalCalls {
		date, dateOK := ParseDate(ctx, item.Date)
		amount, amountOK := ParseAmount(ctx, item.Amount.String())
		if !dateOK || !amountOK {
			logger.Warn("skipping unparseable capital call from model", zap.String("date", item.Date))
			continue
		}
		callType := strings.TrimSpace(item.CallType)
		if callType == "" {
			callType = defaultCallType
		}
		result.CapitalCalls = append(result.CapitalCalls, model.CapitalCall{
			CallDate:    date,
			CallType:    callType,
			Amount:      amount,
			Description: strings.TrimSpace(item.Description),
		})
	}
	for _, item := range parsed.Distributions {
		date, dateOK := ParseDate(ctx, item.Date)
		amount, amountOK := ParseAmount(ctx, item.Amount.String())
		if !dateOK || !amountOK {
			logger.Warn("skipping unparseable distribution from model", zap.String("date", item.Date))
			continue
		}
		distType := strings.TrimSpace(item.DistributionType)
		if distType == "" {
			distType = defaultDistributionType
		}
		result.Distributions = append(result.Distributions, model.Distribution{
			DistributionDate: date,
			DistributionType: distType,
			Amount:           amount,
			IsRecallable:     false,
			Description:      strings.TrimSpace(item.Description),
		})
	}
	logutil.GetLogger(ctx).Info("fallback extraction completed",
		zap.Int("capital_calls", len(result.CapitalCalls)),
		zap.Int("distributions", len(result.Distributions)),
	)
	return result
}

// truncateAtRune cuts s to at most limit bytes, backing off to the previous
// rune boundary so a multi-byte UTF-8 sequence is never split.
func truncateAtRune(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

// StripCodeFence removes a surrounding markdown code fence from a model
// reply, tolerating a "json" language tag. Models add fences even when told
// not to.
func StripCodeFence(reply string) string {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, "```") {
		return reply
	}
	parts := strings.Split(reply, "```")
	if len(parts) < 2 {
		return reply
	}
	body := parts[1]
	body = strings.TrimPrefix(body, "json")
	return strings.TrimSpace(body)
}
