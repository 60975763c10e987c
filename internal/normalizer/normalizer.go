// Package normalizer rewrites mixed Hinglish/English queries into clean
// English search strings. It is pure and deterministic: no I/O, no state.
package normalizer

import (
	"regexp"
	"strings"
)

// minRewriteWords is the shortest query we are willing to rewrite. Anything
// shorter is returned trimmed but otherwise untouched.
const minRewriteWords = 3

// phraseRule substitutes a multi-word vernacular phrase with its English
// equivalent. Rules are applied longest-match-first so compound phrases win
// over their sub-phrases.
type phraseRule struct {
	re      *regexp.Regexp
	replace string
}

var phraseRules = []phraseRule{
	{regexp.MustCompile(`(?i)\bkhana khane ki jagah\b`), "restaurants"},
	{regexp.MustCompile(`(?i)\bghumne ki jagah\b`), "places to visit"},
	{regexp.MustCompile(`(?i)\bkitne baje\b`), "what time"},
	{regexp.MustCompile(`(?i)\bkaise jaye\b`), "how to reach"},
	{regexp.MustCompile(`(?i)\bkaise jaana hai\b`), "how to reach"},
	{regexp.MustCompile(`(?i)\bkitna paisa\b`), "price"},
	{regexp.MustCompile(`(?i)\bkitne ka hai\b`), "price"},
	{regexp.MustCompile(`(?i)\bkya haal hai\b`), "status"},
	{regexp.MustCompile(`(?i)\bkhabar kya hai\b`), "latest news"},
	{regexp.MustCompile(`(?i)\bmatch ka score\b`), "match score"},
}

// wordDict translates single Hinglish tokens. Lookups are lower-cased.
var wordDict = map[string]string{
	"kya":      "what",
	"kab":      "when",
	"kahan":    "where",
	"kaha":     "where",
	"kaun":     "who",
	"kyun":     "why",
	"kaise":    "how",
	"aaj":      "today",
	"abhi":     "now",
	"mausam":   "weather",
	"samachar": "news",
	"khabar":   "news",
	"taaza":    "latest",
	"naya":     "new",
	"sasta":    "cheap",
	"accha":    "good",
	"khana":    "food",
	"paisa":    "money",
	"daam":     "price",
	"kimat":    "price",
	"dikhao":   "show",
	"raha":     "",
	"rahi":     "",
}

// stopWords are filler tokens dropped in every path. Hinglish particles and
// auxiliaries first, then English filler.
var stopWords = map[string]bool{
	"hai": true, "hain": true, "tha": true, "thi": true, "ho": true,
	"ka": true, "ki": true, "ke": true, "ko": true, "se": true,
	"mein": true, "par": true, "bhi": true, "toh": true, "na": true,
	"kar": true, "karo": true, "karna": true, "batao": true, "bata": true,
	"paas": true, "wala": true, "wali": true, "vale": true,
	"do": true, "ji": true, "yaar": true, "bhai": true,
	"please": true, "plz": true, "tell": true, "about": true,
	"the": true, "a": true, "an": true, "of": true, "for": true,
	"is": true, "are": true, "was": true, "me": true, "my": true,
}

// entityAnchors are place-type words that usually follow a proper-noun venue
// name ("Saravana Bhavan restaurant"). The name is captured before rewriting
// so stop-word rules can never eat it.
var entityAnchors = []string{
	"restaurant", "cafe", "hotel", "dhaba", "mandir", "temple", "masjid",
	"station", "airport", "mall", "cinema", "theatre", "park", "stadium",
}

var entityRe = buildEntityRe()

func buildEntityRe() *regexp.Regexp {
	return regexp.MustCompile(`((?:[A-Z][a-zA-Z]+\s+)+(?:` + strings.Join(entityAnchors, "|") + `))\b`)
}

// Normalize rewrites a raw query into a clean English search string. It is
// idempotent: normalizing an already-normalized string is a no-op up to
// whitespace.
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	words := strings.Fields(trimmed)
	if len(words) <= minRewriteWords {
		return trimmed
	}

	entity := extractEntity(trimmed)

	var out string
	if mostlyEnglish(words) {
		out = stripStopWords(trimmed)
	} else {
		out = trimmed
		for _, rule := range phraseRules {
			out = rule.re.ReplaceAllString(out, rule.replace)
		}
		out = translateTokens(out)
		out = stripStopWords(out)
	}
	out = collapseAdjacentDuplicates(out)
	out = strings.Join(strings.Fields(out), " ")

	if entity != "" && !strings.Contains(strings.ToLower(out), strings.ToLower(entity)) {
		out = entity + " " + out
	}

	if len(out) < 3 {
		return trimmed
	}
	return out
}

// mostlyEnglish reports whether >70% of tokens are plain-ASCII words that are
// neither stop-words nor known vernacular.
func mostlyEnglish(words []string) bool {
	if len(words) == 0 {
		return false
	}
	english := 0
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, ".,!?"))
		if !isASCIIWord(lw) {
			continue
		}
		if stopWords[lw] {
			continue
		}
		if _, ok := wordDict[lw]; ok {
			continue
		}
		english++
	}
	return float64(english)/float64(len(words)) > 0.7
}

func isASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}

func translateTokens(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, ".,!?"))
		if repl, ok := wordDict[lw]; ok {
			if repl != "" {
				out = append(out, repl)
			}
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func stripStopWords(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		lw := strings.ToLower(strings.Trim(w, ".,!?"))
		if stopWords[lw] {
			continue
		}
		out = append(out, strings.Trim(w, ".,!?"))
	}
	return strings.Join(out, " ")
}

func collapseAdjacentDuplicates(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(out) > 0 && strings.EqualFold(out[len(out)-1], w) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

// extractEntity pulls a "Proper Noun + place-type" phrase out of the query,
// if one exists, so it can be restored after normalization.
func extractEntity(s string) string {
	m := entityRe.FindString(s)
	return strings.TrimSpace(m)
}
