package sanitize

import (
	"math"
	"testing"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<script>alert(1)</script>hello", "alert(1)hello"},
		{"plain text", "plain text"},
		{"&lt;b&gt;bold&lt;/b&gt;", "bold"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		if got := StripHTML(tc.in); got != tc.want {
			t.Fatalf("StripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmail(t *testing.T) {
	if got := Email("  Jane@Acme.COM "); got != "jane@acme.com" {
		t.Fatalf("valid email should be lowercased and trimmed, got %q", got)
	}
	for _, bad := range []string{"not-an-email", "a@b", "@acme.com", ""} {
		if got := Email(bad); got != "" {
			t.Fatalf("Email(%q) should be dropped, got %q", bad, got)
		}
	}
}

func TestURL(t *testing.T) {
	if got := URL("https://acme.com/pricing"); got == "" {
		t.Fatal("https URL should pass")
	}
	if got := URL("/pricing"); got == "" {
		t.Fatal("root-relative path should pass")
	}
	for _, bad := range []string{"javascript:alert(1)", "//evil.com", "ftp://x", ""} {
		if got := URL(bad); got != "" {
			t.Fatalf("URL(%q) should be dropped, got %q", bad, got)
		}
	}
}

func TestNumericCoercion(t *testing.T) {
	if Count(-5) != 0 || Count(math.NaN()) != 0 || Count(math.Inf(1)) != 0 {
		t.Fatal("invalid counters should coerce to 0")
	}
	if Count(3.9) != 3 {
		t.Fatalf("Count(3.9) = %d, want 3", Count(3.9))
	}
	if got := Count(1e300); got != MaxCount {
		t.Fatalf("Count(1e300) = %d, want cap %d", got, MaxCount)
	}
	if got := Count(math.MaxFloat64); got < 0 {
		t.Fatalf("huge counter overflowed to %d", got)
	}
	if Seconds(-1, 100) != 0 || Seconds(200, 100) != 100 {
		t.Fatal("Seconds should clamp to [0,max]")
	}
	if Rate(1.5) != 1 || Rate(-0.1) != 0 {
		t.Fatal("Rate should clamp to [0,1]")
	}
	if Percent(150) != 100 || Percent(math.NaN()) != 0 {
		t.Fatal("Percent should clamp to [0,100]")
	}
}
