package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	if got := NormalizeE164("(415) 555-2671"); got != "+14155552671" {
		t.Fatalf("US number should normalize to E.164, got %q", got)
	}
	if got := NormalizeE164("+14155552671"); got != "+14155552671" {
		t.Fatalf("already-normalized number should pass through, got %q", got)
	}
	if got := NormalizeE164("not a phone"); got != "not a phone" {
		t.Fatalf("unparseable input should be returned trimmed, got %q", got)
	}
	if got := NormalizeE164("   "); got != "" {
		t.Fatalf("blank input should return empty, got %q", got)
	}
}

func TestIsDialable(t *testing.T) {
	if !IsDialable("+14155552671") {
		t.Fatal("valid E.164 number should be dialable")
	}
	if IsDialable("") || IsDialable("123") || IsDialable("not a phone") {
		t.Fatal("invalid numbers should not be dialable")
	}
}
