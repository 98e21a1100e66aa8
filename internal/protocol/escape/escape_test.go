package escape

import (
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"plain", "plain"},
		{"a\nb", `a\nb`},
		{"a\r\nb", `a\nb`},
		{"a\rb", `a\nb`},
		{"a\n\r\nb", `a\n\nb`},
		{"a\r\r\nb", `a\n\nb`},
		{`C:\path`, `C:\\path`},
		{"tab\there", "tab\there"},
		{"end\n", `end\n`},
	}
	for _, tc := range cases {
		got := Escape(tc.in)
		if got != tc.want {
			t.Fatalf("Escape(%q)=%q want %q", tc.in, got, tc.want)
		}
		if strings.ContainsAny(got, "\r\n") {
			t.Fatalf("Escape(%q) left a raw line break", tc.in)
		}
	}
}

func TestUnescape(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{`a\nb`, "a\nb"},
		{`a\\b`, `a\b`},
		{`a\rb`, "a\rb"},
		{`a\tb`, "a\tb"},
		{`a\qb`, "ab"},
		{`a\"b`, "ab"},
		{`trailing\`, `trailing\`},
		{`\`, `\`},
		{`x\\`, `x\`},
		{`\n`, "\n"},
	}
	for _, tc := range cases {
		if got := Unescape(tc.in); got != tc.want {
			t.Fatalf("Unescape(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	texts := []string{
		"Shader \"X\" {\n\tPass {\n\t\t// c:\\dir\\file\n\t}\n}\n",
		"\\\\\n\n\t\\",
		"no escapes at all",
		"\t\t\n",
	}
	for _, text := range texts {
		if got := Unescape(Escape(text)); got != text {
			t.Fatalf("round trip mismatch:\n got=%q\nwant=%q", got, text)
		}
	}
}

func TestRoundTripNormalisesCarriageReturns(t *testing.T) {
	in := "line1\r\nline2\rline3\n"
	want := "line1\nline2\nline3\n"
	if got := Unescape(Escape(in)); got != want {
		t.Fatalf("got=%q want=%q", got, want)
	}
}
