package threat

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"leadintel_backend/platform/logger"
)

const analyzerSystemPrompt = `You analyze sales conversation transcripts.
Respond with a single JSON object with these keys:
"sentiment" (number between -1 and 1),
"intentSignals", "buyingSignals", "competitorMentions", "objections",
"urgencySignals", "budgetSignals" (each an array of short strings).
Only report what the transcript supports. No prose.`

// ChatModel is the slice of the ADK model interface the analyzer consumes.
// *moonshot.KimiModel satisfies it.
type ChatModel interface {
	GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error]
}

// LLMAnalyzer extracts insights with the Kimi chat model and degrades to
// the keyword analyzer on any failure. Fallback is silent to callers; the
// only trace is a log line.
type LLMAnalyzer struct {
	llm      ChatModel
	fallback *KeywordAnalyzer
	log      *logger.Logger
}

// NewLLMAnalyzer wraps a chat model with the keyword fallback.
func NewLLMAnalyzer(llm ChatModel, log *logger.Logger) *LLMAnalyzer {
	return &LLMAnalyzer{
		llm:      llm,
		fallback: NewKeywordAnalyzer(),
		log:      log,
	}
}

func (a *LLMAnalyzer) Name() string { return "llm" }

// Analyze asks the model for structured insights. Provider errors and
// malformed payloads both fall back to keyword matching; the caller always
// gets usable insights.
func (a *LLMAnalyzer) Analyze(ctx context.Context, transcript string, competitorNames []string) (Insights, error) {
	if strings.TrimSpace(transcript) == "" {
		return Insights{}, nil
	}

	req := &model.LLMRequest{
		Contents: []*genai.Content{
			genai.NewContentFromText(buildAnalyzerPrompt(transcript, competitorNames), genai.RoleUser),
		},
		Config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(analyzerSystemPrompt, genai.RoleUser),
			ResponseMIMEType:  "application/json",
		},
	}

	raw, err := a.completion(ctx, req)
	if err != nil {
		a.fallbackLog("provider error: " + err.Error())
		return a.fallback.Analyze(ctx, transcript, competitorNames)
	}

	insights, err := decodeInsights(raw)
	if err != nil {
		a.fallbackLog("malformed response: " + err.Error())
		return a.fallback.Analyze(ctx, transcript, competitorNames)
	}

	return insights, nil
}

// completion drains the response sequence and concatenates the text parts.
func (a *LLMAnalyzer) completion(ctx context.Context, req *model.LLMRequest) (string, error) {
	var b strings.Builder
	for resp, err := range a.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", err
		}
		if resp == nil || resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part == nil {
				continue
			}
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("empty completion")
	}
	return b.String(), nil
}

func buildAnalyzerPrompt(transcript string, competitorNames []string) string {
	var b strings.Builder
	if len(competitorNames) > 0 {
		b.WriteString("Known competitors: ")
		b.WriteString(strings.Join(competitorNames, ", "))
		b.WriteString("\n\n")
	}
	b.WriteString("Transcript:\n")
	b.WriteString(transcript)
	return b.String()
}

func decodeInsights(raw string) (Insights, error) {
	// Models occasionally wrap JSON in a code fence despite JSON mode.
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")

	var insights Insights
	if err := json.Unmarshal([]byte(strings.TrimSpace(trimmed)), &insights); err != nil {
		return Insights{}, err
	}

	if insights.Sentiment > 1 {
		insights.Sentiment = 1
	}
	if insights.Sentiment < -1 {
		insights.Sentiment = -1
	}
	return insights, nil
}

func (a *LLMAnalyzer) fallbackLog(reason string) {
	if a.log != nil {
		a.log.AnalyzerFallback(reason)
	}
}
