package validators

import "testing"

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"trims", "  ring the bell  ", 0, "ring the bell"},
		{"strips control", "gate\x00 code\x07 1234", 0, "gate code 1234"},
		{"keeps newline", "line one\nline two", 0, "line one\nline two"},
		{"caps by rune", "ñandú ñandú", 5, "ñandú"},
		{"no split inside rune", "日本語テキスト", 3, "日本語"},
		{"trailing space after cut", "leave at door", 6, "leave"},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.max); got != tc.want {
			t.Errorf("%s: SanitizeString(%q, %d) = %q, want %q", tc.name, tc.in, tc.max, got, tc.want)
		}
	}
}
