package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Normalizer cleans and bounds raw notification text
type Normalizer struct {
	maxChars     int
	summaryChars int
}

// NewNormalizer creates a normalizer. Non-positive limits fall back to defaults.
func NewNormalizer(maxChars, summaryChars int) *Normalizer {
	if maxChars <= 0 {
		maxChars = 20000
	}
	if summaryChars <= 0 {
		summaryChars = 400
	}
	return &Normalizer{
		maxChars:     maxChars,
		summaryChars: summaryChars,
	}
}

var htmlMarker = regexp.MustCompile(`(?i)<\s*(?:html|body|div|p|br|table|span|font)\b`)

// LooksLikeHTML reports whether a notification body is HTML markup
func LooksLikeHTML(s string) bool {
	return htmlMarker.MatchString(s)
}

var invisible = strings.NewReplacer(
	"\r\n", "\n",
	"\r", "\n",
	"\t", " ",
	"\u00a0", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// Normalize returns cleaned, line-preserving text bounded to the configured size
func (n *Normalizer) Normalize(raw string) string {
	if LooksLikeHTML(raw) {
		if doc, err := html.Parse(strings.NewReader(raw)); err == nil {
			raw = visibleText(doc)
		}
	}

	raw = invisible.Replace(raw)

	var out []string
	blank := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if len(out) > 0 {
				blank = true
			}
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, line)
	}

	return truncateRunes(strings.Join(out, "\n"), n.maxChars)
}

// Summary returns a single-line preview of normalized text
func (n *Normalizer) Summary(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(flat) <= n.summaryChars {
		return flat
	}
	return strings.TrimSpace(truncateRunes(flat, n.summaryChars)) + "…"
}

// blockElements start a new line in the extracted text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true, "ul": true, "ol": true,
}

// visibleText extracts text nodes from HTML, skipping scripts/styles
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
			if blockElements[n.Data] {
				buf.WriteString("\n")
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}

	walk(n)
	return buf.String()
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
