// Package behavior turns untrusted telemetry payloads into typed, clamped
// records. Everything downstream (signals, scoring, planning) trusts the
// types produced here and never re-validates.
package behavior

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"leadintel_backend/platform/apperr"
	"leadintel_backend/platform/phone"
	"leadintel_backend/platform/sanitize"
)

const (
	maxTextLen    = 500
	maxPageSecs   = 86400 // one day; anything above is tracker garbage
	maxVisitPages = 20
)

// Data is a fully typed, range-clamped behavior snapshot for one lead.
type Data struct {
	// Identity (optional, sanitized; empty string means absent)
	Email   string
	Phone   string
	Company string

	// Engagement counters
	PricingPageSeconds      float64 // dwell time on pricing pages
	QuoteClicksNoSubmit     int
	EmailsOpened            int
	TotalTimeSeconds        float64
	VisitsLast14Days        int
	FormCompletionRate      float64 // [0,1]
	MaxScrollDepthPct       float64 // [0,100]
	RetargetingInteractions int

	// Provenance
	SourceChannel string
	DeviceType    string
	UTMSource     string
	UTMMedium     string
	UTMCampaign   string
	Referrer      string
	VisitedPages  []string
}

// Sanitize coerces an untrusted record into Data. Malformed individual
// fields are corrected to safe defaults, never rejected; only a missing
// record is an error.
func Sanitize(raw map[string]any) (Data, error) {
	if raw == nil {
		return Data{}, apperr.Validation("behavior payload must be an object")
	}

	d := Data{
		Email:   sanitize.Email(stringField(raw, "email")),
		Phone:   phoneField(raw, "phone"),
		Company: sanitize.TextMax(stringField(raw, "company"), maxTextLen),

		PricingPageSeconds:      sanitize.Seconds(numberField(raw, "time_on_pricing_page"), maxPageSecs),
		QuoteClicksNoSubmit:     sanitize.Count(numberField(raw, "quote_clicks_no_submit")),
		EmailsOpened:            sanitize.Count(numberField(raw, "emails_opened")),
		TotalTimeSeconds:        sanitize.Seconds(numberField(raw, "total_time_on_site"), maxPageSecs),
		VisitsLast14Days:        sanitize.Count(numberField(raw, "visits_last_14_days")),
		FormCompletionRate:      sanitize.Rate(numberField(raw, "form_completion_rate")),
		MaxScrollDepthPct:       sanitize.Percent(numberField(raw, "max_scroll_depth")),
		RetargetingInteractions: sanitize.Count(numberField(raw, "retargeting_interactions")),

		SourceChannel: sanitize.TextMax(stringField(raw, "source_channel"), maxTextLen),
		DeviceType:    sanitize.TextMax(stringField(raw, "device_type"), maxTextLen),
		UTMSource:     sanitize.TextMax(stringField(raw, "utm_source"), maxTextLen),
		UTMMedium:     sanitize.TextMax(stringField(raw, "utm_medium"), maxTextLen),
		UTMCampaign:   sanitize.TextMax(stringField(raw, "utm_campaign"), maxTextLen),
		Referrer:      sanitize.URL(stringField(raw, "referrer")),
		VisitedPages:  pagesField(raw, "visited_pages"),
	}

	return d, nil
}

// SanitizeBatch sanitizes each record with per-item isolation. Items that
// fail are skipped; when more than half the batch fails the whole batch is
// rejected, since that signals a broken producer rather than stray noise.
func SanitizeBatch(raws []map[string]any) ([]Data, error) {
	if len(raws) == 0 {
		return nil, nil
	}

	out := make([]Data, 0, len(raws))
	failed := 0
	for _, raw := range raws {
		d, err := Sanitize(raw)
		if err != nil {
			failed++
			continue
		}
		out = append(out, d)
	}

	if failed*2 > len(raws) {
		return nil, apperr.Validation(
			fmt.Sprintf("batch rejected: %d of %d records malformed", failed, len(raws)))
	}

	return out, nil
}

func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// numberField extracts a numeric value. JSON decoding yields float64 or
// json.Number; numeric strings from form trackers are accepted too.
// Anything else reads as 0.
func numberField(raw map[string]any, key string) float64 {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0
	}

	switch typed := v.(type) {
	case float64:
		return typed
	case float32:
		return float64(typed)
	case int:
		return float64(typed)
	case int64:
		return float64(typed)
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func phoneField(raw map[string]any, key string) string {
	value := strings.TrimSpace(stringField(raw, key))
	if value == "" {
		return ""
	}
	return phone.NormalizeE164(value)
}

func pagesField(raw map[string]any, key string) []string {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil
	}

	var items []string
	switch typed := v.(type) {
	case []string:
		items = typed
	case []any:
		for _, item := range typed {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	default:
		return nil
	}

	pages := make([]string, 0, len(items))
	for _, item := range items {
		if len(pages) >= maxVisitPages {
			break
		}
		if page := sanitize.URL(item); page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil
	}
	return pages
}
