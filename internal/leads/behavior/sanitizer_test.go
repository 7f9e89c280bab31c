package behavior

import (
	"testing"
)

func TestSanitizeClampsCounters(t *testing.T) {
	d, err := Sanitize(map[string]any{
		"emails_opened":            -4.0,
		"quote_clicks_no_submit":   "not a number",
		"visits_last_14_days":      3.0,
		"form_completion_rate":     1.7,
		"max_scroll_depth":         140.0,
		"retargeting_interactions": nil,
	})
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}

	if d.EmailsOpened != 0 {
		t.Fatalf("negative counter should clamp to 0, got %d", d.EmailsOpened)
	}
	if d.QuoteClicksNoSubmit != 0 {
		t.Fatalf("non-numeric counter should clamp to 0, got %d", d.QuoteClicksNoSubmit)
	}
	if d.VisitsLast14Days != 3 {
		t.Fatalf("valid counter mangled: got %d", d.VisitsLast14Days)
	}
	if d.FormCompletionRate != 1 {
		t.Fatalf("rate should clamp to 1, got %v", d.FormCompletionRate)
	}
	if d.MaxScrollDepthPct != 100 {
		t.Fatalf("percent should clamp to 100, got %v", d.MaxScrollDepthPct)
	}
}

func TestSanitizeDropsInvalidEmailAndURL(t *testing.T) {
	d, err := Sanitize(map[string]any{
		"email":    "not-an-email",
		"referrer": "javascript:alert(1)",
	})
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}
	if d.Email != "" {
		t.Fatalf("invalid email should be dropped, got %q", d.Email)
	}
	if d.Referrer != "" {
		t.Fatalf("non-http referrer should be dropped, got %q", d.Referrer)
	}
}

func TestSanitizeAcceptsValidIdentity(t *testing.T) {
	d, err := Sanitize(map[string]any{
		"email":   "  Jane.Doe@Example.COM ",
		"company": "<b>Acme</b> Corp",
	})
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}
	if d.Email != "jane.doe@example.com" {
		t.Fatalf("email should be normalized, got %q", d.Email)
	}
	if d.Company != "Acme Corp" {
		t.Fatalf("company should be HTML-stripped, got %q", d.Company)
	}
}

func TestSanitizeRejectsNilRecord(t *testing.T) {
	if _, err := Sanitize(nil); err == nil {
		t.Fatal("nil record should be rejected")
	}
}

func TestSanitizeVisitedPagesFiltered(t *testing.T) {
	d, err := Sanitize(map[string]any{
		"visited_pages": []any{"/pricing", "https://example.com/demo", "//evil.com", 42},
	})
	if err != nil {
		t.Fatalf("Sanitize returned error: %v", err)
	}
	if len(d.VisitedPages) != 2 {
		t.Fatalf("expected 2 valid pages, got %v", d.VisitedPages)
	}
}

func TestSanitizeBatchIsolatesFailures(t *testing.T) {
	out, err := SanitizeBatch([]map[string]any{
		{"emails_opened": 2.0},
		nil,
		{"emails_opened": 1.0},
	})
	if err != nil {
		t.Fatalf("batch with 1/3 failures should pass: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 sanitized records, got %d", len(out))
	}
}

func TestSanitizeBatchCircuitBreaker(t *testing.T) {
	_, err := SanitizeBatch([]map[string]any{
		nil,
		nil,
		{"emails_opened": 1.0},
	})
	if err == nil {
		t.Fatal("batch with >50% failures should be rejected")
	}
}
