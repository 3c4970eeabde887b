package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is one named extraction step. Match returns "" when the rule does not fire.
type Rule struct {
	Name  string
	Match func(text string) string
}

// FirstAccepted tries rules in order and returns the first candidate that
// accept allows, with the name of the rule that produced it.
func FirstAccepted(rules []Rule, text string, accept func(string) bool) (string, string) {
	for _, r := range rules {
		candidate := cleanValue(r.Match(text))
		if IsPlaceholder(candidate) {
			continue
		}
		if accept != nil && !accept(candidate) {
			continue
		}
		return candidate, r.Name
	}
	return "", ""
}

// cleanValue trims whitespace and trailing separators
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, " .,;:-")
	s = strings.TrimLeft(s, " :-")
	return strings.TrimSpace(s)
}

// placeholders are values senders write when a field is not known yet
var placeholders = map[string]bool{
	"null": true, "nil": true, "none": true, "unknown": true, "unk": true,
	"n/a": true, "na": true, "tba": true, "tbc": true, "tbd": true,
	"not known": true, "not available": true, "to be advised": true, "to be confirmed": true,
	"?": true, "-": true,
}

// IsPlaceholder reports whether a cleaned value carries no information
func IsPlaceholder(s string) bool {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return s == "" || placeholders[s]
}

// labeledLine builds a rule matching "<label>: value" on its own line
func labeledLine(name, labels string) Rule {
	re := regexp.MustCompile(`(?im)^[ \t]*(?:` + labels + `)[ \t]*(?::|-[ \t])[ \t]*(.+)$`)
	return Rule{
		Name: name,
		Match: func(text string) string {
			if m := re.FindStringSubmatch(text); m != nil {
				return m[1]
			}
			return ""
		},
	}
}

// Vessel name

var (
	imoTail      = regexp.MustCompile(`(?i)[\s,;(\[]*\bIMO\b.*$`)
	vesselPrefix = regexp.MustCompile(`\b(M/V|M/T|MV|MT|m/v|m/t|mv)\.?[ \t]+([A-Z0-9][A-Za-z0-9'\-]*(?:[ \t]+[A-Z0-9][A-Za-z0-9'\-]*){0,4})`)
)

// vesselRejectTerms mark a candidate as incident prose rather than a name
var vesselRejectTerms = []string{
	"incident", "damage", "position", "location", "collision", "grounding",
	"accident", "casualty", "injur", "pollution", "report", "notification",
	"claim", "fire", "cargo", "weather", "date",
}

var greetingPrefixes = []string{
	"dear", "hi", "hello", "good morning", "good afternoon", "good evening",
	"subject", "re:", "fw:", "fwd:", "from", "to:", "sent", "cc", "regards",
	"urgent", "attn", "please", "thanks", "kind regards", "best regards",
}

// VesselRules returns the ordered vessel-name rules
func VesselRules() []Rule {
	labeled := labeledLine("labeled", `(?:vessel|ship)(?:[ \t]+name)?`)
	return []Rule{
		{
			Name: labeled.Name,
			Match: func(text string) string {
				return imoTail.ReplaceAllString(labeled.Match(text), "")
			},
		},
		{Name: "prefix", Match: matchVesselPrefix},
		{Name: "first-line", Match: matchVesselFirstLine},
	}
}

func matchVesselPrefix(text string) string {
	for _, loc := range vesselPrefix.FindAllStringSubmatchIndex(text, -1) {
		// "25000 MT Steel Coils" is a tonnage
		if followsQuantity(text[:loc[0]]) {
			continue
		}
		prefix := strings.ToUpper(text[loc[2]:loc[3]])
		var tokens []string
		for _, tok := range strings.Fields(text[loc[4]:loc[5]]) {
			if strings.EqualFold(tok, "IMO") {
				break
			}
			tokens = append(tokens, tok)
		}
		if len(tokens) == 0 || !hasLetter(strings.Join(tokens, "")) {
			continue
		}
		return prefix + " " + strings.Join(tokens, " ")
	}
	return ""
}

// followsQuantity reports whether the last token of before is a number
func followsQuantity(before string) bool {
	fields := strings.Fields(before)
	if len(fields) == 0 {
		return false
	}
	last := strings.TrimLeft(fields[len(fields)-1], "~(")
	last = strings.NewReplacer(",", "", "'", "", "_", "").Replace(last)
	if last == "" || last[0] < '0' || last[0] > '9' {
		return false
	}
	_, err := strconv.ParseFloat(last, 64)
	return err == nil
}

func matchVesselFirstLine(text string) string {
	lines := strings.Split(text, "\n")
	checked := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		checked++
		if checked > 5 {
			break
		}
		if utf8.RuneCountInString(line) > 40 || len(strings.Fields(line)) > 5 {
			continue
		}
		if strings.ContainsAny(line, ".,:;!?@()") {
			continue
		}
		lower := strings.ToLower(line)
		greeting := false
		for _, g := range greetingPrefixes {
			if strings.HasPrefix(lower, g) {
				greeting = true
				break
			}
		}
		if greeting {
			continue
		}
		first, _ := utf8.DecodeRuneInString(line)
		if !unicode.IsUpper(first) {
			continue
		}
		return line
	}
	return ""
}

// AcceptVesselName rejects overlong, prose-like or letterless candidates
func AcceptVesselName(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > 60 || !hasLetter(s) {
		return false
	}
	lower := strings.ToLower(s)
	for _, term := range vesselRejectTerms {
		if strings.Contains(lower, term) {
			return false
		}
	}
	return true
}

// IMO number

var imoPattern = regexp.MustCompile(`(?i)\bIMO[ \t]*(?:no\.?|number)?[ \t]*[:#\-]?[ \t]*(\d{7})(?:\D|$)`)

// IMORules returns the IMO number rules
func IMORules() []Rule {
	return []Rule{{
		Name: "imo",
		Match: func(text string) string {
			if m := imoPattern.FindStringSubmatch(text); m != nil {
				return m[1]
			}
			return ""
		},
	}}
}

var imoDigits = regexp.MustCompile(`^\d{7}$`)

// ValidIMO reports whether s is exactly seven digits
func ValidIMO(s string) bool {
	return imoDigits.MatchString(s)
}

// Event date

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	dayMonthYear = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?[ \t]+(?:` + monthNames + `)\.?,?[ \t]+\d{4}\b`)
	isoDate      = regexp.MustCompile(`\b\d{4}-(?:0[1-9]|1[0-2])-(?:0[1-9]|[12]\d|3[01])\b`)
	monthOnly    = regexp.MustCompile(`(?i)^(?:` + monthNames + `)\.?$`)
)

// DateRules returns the event date rule. The earliest date in the text wins
// regardless of format.
func DateRules() []Rule {
	return []Rule{{Name: "date", Match: matchEarliestDate}}
}

func matchEarliestDate(text string) string {
	best, bestAt := "", -1

	for _, m := range dayMonthYear.FindAllStringSubmatchIndex(text, -1) {
		day, _ := strconv.Atoi(text[m[2]:m[3]])
		if day < 1 || day > 31 {
			continue
		}
		if bestAt < 0 || m[0] < bestAt {
			best, bestAt = text[m[0]:m[1]], m[0]
		}
		break
	}

	if loc := isoDate.FindStringIndex(text); loc != nil {
		if bestAt < 0 || loc[0] < bestAt {
			best = text[loc[0]:loc[1]]
		}
	}

	return best
}

func isMonth(tok string) bool {
	return monthOnly.MatchString(tok)
}

// Location

var (
	prepositionPlace = regexp.MustCompile(`\b(?:off|near|at|in|outside|alongside|approaching)[ \t]+(?:the[ \t]+)?([A-Z][A-Za-z'\-]+(?:[ \t]+(?:of[ \t]+)?[A-Z][A-Za-z'\-]+){0,4})`)
	anchoragePlace   = regexp.MustCompile(`\b((?:[A-Z][A-Za-z'\-]+[ \t]+){1,4}Anchorage)\b`)
)

// placeStopwords are capitalized words that follow a preposition but are not places
var placeStopwords = map[string]bool{
	"MV": true, "MT": true, "M/V": true, "M/T": true, "IMO": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
	"The": true, "This": true, "Our": true, "Your": true, "Master": true,
	"Charterers": true, "Owners": true, "Approximately": true, "About": true,
}

// LocationRules returns the ordered location rules
func LocationRules() []Rule {
	return []Rule{
		labeledLine("labeled", `position|location|port|place(?:[ \t]+of[ \t]+incident)?`),
		{Name: "preposition", Match: matchPrepositionPlace},
		{
			Name: "anchorage",
			Match: func(text string) string {
				if m := anchoragePlace.FindStringSubmatch(text); m != nil {
					return m[1]
				}
				return ""
			},
		},
	}
}

func matchPrepositionPlace(text string) string {
	for _, m := range prepositionPlace.FindAllStringSubmatch(text, -1) {
		head := strings.Fields(m[1])[0]
		if placeStopwords[head] || isMonth(head) {
			continue
		}
		return m[1]
	}
	return ""
}

// AcceptLocation bounds location candidates
func AcceptLocation(s string) bool {
	return s != "" && utf8.RuneCountInString(s) <= 120 && hasLetter(s)
}

// Counterparty

// CounterpartyRules returns the counterparty rules
func CounterpartyRules() []Rule {
	return []Rule{
		labeledLine("counterparty", `counterparty|counter[ \t]+party`),
		labeledLine("party-role", `charterers?|receivers?|shippers?|terminal|stevedores?|pilot|owners?`),
	}
}

// AcceptShortText accepts a non-empty single value of bounded size
func AcceptShortText(s string) bool {
	return s != "" && utf8.RuneCountInString(s) <= 200
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
