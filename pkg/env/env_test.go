package env

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("FOODDASH_ENV_TEST", "  value  ")
	if got := Get("FOODDASH_ENV_TEST", "fallback"); got != "value" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	t.Setenv("FOODDASH_ENV_TEST", "   ")
	if got := Get("FOODDASH_ENV_TEST", "fallback"); got != "fallback" {
		t.Fatalf("blank should fall back, got %q", got)
	}
}
