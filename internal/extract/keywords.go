package extract

import "strings"

// KeywordTag maps a canonical incident tag to the substrings that signal it
type KeywordTag struct {
	Tag   string
	Terms []string
}

// Canonical incident tags
const (
	TagCollision   = "collision"
	TagContact     = "contact"
	TagGrounding   = "grounding"
	TagFire        = "fire"
	TagPollution   = "pollution"
	TagInjury      = "injury"
	TagCargoDamage = "cargo damage"
	TagMachinery   = "machinery"
	TagWeather     = "weather"
	TagPiracy      = "piracy"
	TagFlooding    = "flooding"
	TagSalvage     = "salvage"
)

// DefaultLexicon is the incident vocabulary, matched case-insensitively at
// word starts. Terms that also describe a ship's ordinary state are given as
// phrases: "quay" alone is where a vessel lies, "heating" alone may be
// engine overheating.
var DefaultLexicon = []KeywordTag{
	{TagCollision, []string{"collision", "collided", "allision"}},
	{TagContact, []string{
		"contact with", "made contact", "struck the", "struck a ", "allision",
		"damaged the jetty", "damaged the quay", "damaged the pier", "damaged the fender",
		"jetty damage", "quay damage", "pier damage", "fender damage",
	}},
	{TagGrounding, []string{"grounding", "grounded", "aground", "stranded"}},
	{TagFire, []string{"fire", "explosion", "blaze"}},
	{TagPollution, []string{"pollution", "spill", "oil leak", "sheen", "slick", "bunker leak"}},
	{TagInjury, []string{"injur", "fatal", "death", "died", "man overboard", "medevac"}},
	{TagCargoDamage, []string{
		"cargo damage", "damaged cargo", "wet damage", "wet cargo",
		"cargo contamination", "contaminated cargo", "cargo shortage", "short delivery", "short-landed",
		"cargo heating", "self-heating", "self heating", "condensation", "sweat", "loss of cargo",
	}},
	{TagMachinery, []string{
		"machinery", "main engine", "aux engine", "auxiliary engine", "engine failure",
		"breakdown", "blackout", "steering failure", "propeller", "rudder", "turbocharger",
	}},
	{TagWeather, []string{"heavy weather", "rough weather", "rough sea", "storm", "typhoon", "hurricane", "cyclone", "monsoon", "swell"}},
	{TagPiracy, []string{"piracy", "pirate", "armed robbery", "hijack"}},
	{TagFlooding, []string{"flooding", "flooded", "water ingress"}},
	{TagSalvage, []string{"salvage", "salvor"}},
}

// MatchKeywords returns the de-duplicated canonical tags found in text, in lexicon order
func MatchKeywords(lexicon []KeywordTag, text string) []string {
	lower := strings.ToLower(text)
	tags := make([]string, 0, 4)
	seen := make(map[string]bool)

	for _, kt := range lexicon {
		if seen[kt.Tag] {
			continue
		}
		if ContainsAnyWord(lower, kt.Terms) {
			seen[kt.Tag] = true
			tags = append(tags, kt.Tag)
		}
	}

	return tags
}

// ContainsAnyWord reports whether any term occurs in text starting at a word
// boundary, so "heating" does not fire inside "overheating". Both sides are
// expected in lower case.
func ContainsAnyWord(text string, terms []string) bool {
	for _, t := range terms {
		for from := 0; ; {
			i := strings.Index(text[from:], t)
			if i < 0 {
				break
			}
			at := from + i
			if at == 0 || !isWordByte(text[at-1]) {
				return true
			}
			from = at + 1
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}
