package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizer_Whitespace(t *testing.T) {
	n := NewNormalizer(0, 0)

	got := n.Normalize("\r\n  Vessel:  MV  Nova\tStar \r\n\r\n\r\n\r\nIMO\u200b 9123456  \r\n\r\n")
	want := "Vessel: MV Nova Star\n\nIMO 9123456"

	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestNormalizer_HTML(t *testing.T) {
	n := NewNormalizer(0, 0)

	html := `<html><head><title>ignored</title><style>p{}</style></head>
<body><p>Vessel: MV Nova Star</p><div>Position: <b>Singapore</b></div>
<script>alert(1)</script><br>collided with tug</body></html>`

	got := n.Normalize(html)

	for _, want := range []string{"Vessel: MV Nova Star", "Position: Singapore", "collided with tug"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in %q", want, got)
		}
	}
	for _, unwanted := range []string{"alert", "ignored", "p{}", "<"} {
		if strings.Contains(got, unwanted) {
			t.Errorf("did not expect %q in %q", unwanted, got)
		}
	}

	lines := strings.Split(got, "\n")
	if lines[0] != "Vessel: MV Nova Star" {
		t.Errorf("expected block elements on separate lines, got %q", lines)
	}
}

func TestNormalizer_Bounds(t *testing.T) {
	n := NewNormalizer(100, 10)

	long := strings.Repeat("é", 500)
	got := n.Normalize(long)
	if utf8.RuneCountInString(got) != 100 {
		t.Errorf("expected 100 runes, got %d", utf8.RuneCountInString(got))
	}

	summary := n.Summary("one two three four five")
	if summary != "one two th…" {
		t.Errorf("unexpected summary %q", summary)
	}

	if s := n.Summary("short\ntext"); s != "short text" {
		t.Errorf("expected flattened summary, got %q", s)
	}
}

func TestLooksLikeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"<p>hello</p>", true},
		{"<HTML><BODY>x", true},
		{"cargo < 5 mt", false},
		{"plain text", false},
	}

	for _, tt := range tests {
		if got := LooksLikeHTML(tt.in); got != tt.want {
			t.Errorf("LooksLikeHTML(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
