package threat

import (
	"context"
	"errors"
	"iter"
	"testing"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// stubModel yields one canned completion or one error.
type stubModel struct {
	reply   string
	err     error
	lastReq *model.LLMRequest
}

func (s *stubModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	s.lastReq = req
	return func(yield func(*model.LLMResponse, error) bool) {
		if s.err != nil {
			yield(nil, s.err)
			return
		}
		yield(&model.LLMResponse{
			Content: &genai.Content{
				Role:  genai.RoleModel,
				Parts: []*genai.Part{genai.NewPartFromText(s.reply)},
			},
		}, nil)
	}
}

func TestLLMAnalyzerDecodesModelReply(t *testing.T) {
	stub := &stubModel{reply: `{"sentiment": 0.4, "buyingSignals": ["asked about pricing"], "competitorMentions": ["AcmeRival"]}`}
	analyzer := NewLLMAnalyzer(stub, nil)

	insights, err := analyzer.Analyze(context.Background(), "We compared you against AcmeRival on price.", []string{"AcmeRival"})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if insights.Sentiment != 0.4 {
		t.Fatalf("sentiment = %v, want 0.4", insights.Sentiment)
	}
	if len(insights.BuyingSignals) != 1 || insights.BuyingSignals[0] != "asked about pricing" {
		t.Fatalf("buying signals = %v", insights.BuyingSignals)
	}

	if stub.lastReq == nil || stub.lastReq.Config == nil {
		t.Fatal("request config not set")
	}
	if stub.lastReq.Config.ResponseMIMEType != "application/json" {
		t.Fatalf("response mime type = %q", stub.lastReq.Config.ResponseMIMEType)
	}
	if stub.lastReq.Config.SystemInstruction == nil {
		t.Fatal("system instruction not set")
	}
	if len(stub.lastReq.Contents) != 1 {
		t.Fatalf("contents = %d, want 1", len(stub.lastReq.Contents))
	}
}

func TestLLMAnalyzerClampsSentiment(t *testing.T) {
	stub := &stubModel{reply: `{"sentiment": 7.5}`}
	insights, err := NewLLMAnalyzer(stub, nil).Analyze(context.Background(), "transcript", nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if insights.Sentiment != 1 {
		t.Fatalf("sentiment = %v, want clamp to 1", insights.Sentiment)
	}
}

func TestLLMAnalyzerFallsBackOnProviderError(t *testing.T) {
	stub := &stubModel{err: errors.New("upstream down")}
	analyzer := NewLLMAnalyzer(stub, nil)

	transcript := "We are ready to buy and need it urgent, asap."
	got, err := analyzer.Analyze(context.Background(), transcript, nil)
	if err != nil {
		t.Fatalf("fallback should absorb provider errors, got %v", err)
	}

	want, err := NewKeywordAnalyzer().Analyze(context.Background(), transcript, nil)
	if err != nil {
		t.Fatalf("keyword analyze: %v", err)
	}
	if len(got.BuyingSignals) != len(want.BuyingSignals) || len(got.UrgencySignals) != len(want.UrgencySignals) {
		t.Fatalf("fallback insights %+v, want keyword insights %+v", got, want)
	}
}

func TestLLMAnalyzerFallsBackOnMalformedReply(t *testing.T) {
	stub := &stubModel{reply: "not json at all"}
	analyzer := NewLLMAnalyzer(stub, nil)

	transcript := "What does the enterprise plan cost?"
	got, err := analyzer.Analyze(context.Background(), transcript, nil)
	if err != nil {
		t.Fatalf("fallback should absorb malformed replies, got %v", err)
	}

	want, err := NewKeywordAnalyzer().Analyze(context.Background(), transcript, nil)
	if err != nil {
		t.Fatalf("keyword analyze: %v", err)
	}
	if len(got.BudgetSignals) != len(want.BudgetSignals) {
		t.Fatalf("fallback insights %+v, want keyword insights %+v", got, want)
	}
}
