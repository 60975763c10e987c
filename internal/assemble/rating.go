package assemble

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

// Rating extraction: collect numeric rating candidates from the winner's
// text, let them vote weighted by source trust, and sanity-check the result
// against titles known to rate highly so a stray "2.5/10" from a comment
// section cannot win.

var ratingQueryRe = regexp.MustCompile(`(?i)\b(rating|rated|imdb|review|stars)\b`)

var ratingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d(?:\.\d)?)\s*/\s*10`),
	regexp.MustCompile(`(\d(?:\.\d)?)\s*/\s*5`),
	regexp.MustCompile(`(?i)rated\s+(\d(?:\.\d)?)`),
	regexp.MustCompile(`(?i)rating(?:\s+of)?[:\s]+(\d(?:\.\d)?)`),
	regexp.MustCompile(`(?i)(\d(?:\.\d)?)\s+stars?`),
}

// ratingTrustedDomains vote with extra weight; they publish the rating
// rather than quoting it.
var ratingTrustedDomains = map[string]int{
	"imdb.com":           3,
	"bookmyshow.com":     2,
	"rottentomatoes.com": 2,
}

// knownHighRated are titles whose real rating is famously >= 8; a candidate
// below the floor for these is a misparse, not a fact.
var knownHighRated = []string{
	"shawshank", "godfather", "3 idiots", "dangal", "inception",
	"interstellar", "dark knight", "12th fail",
}

const highRatedFloor = 7.0

// ExtractRating returns a "Rating: X/10" line for rating queries when the
// winner's text yields a plausible consensus value, else "".
func ExtractRating(query string, winner *providers.Result) string {
	if winner == nil || !ratingQueryRe.MatchString(query) {
		return ""
	}

	votes := make(map[string]int)
	scan := func(text, domain string) {
		weight := 1
		if w, ok := ratingTrustedDomains[strings.ToLower(domain)]; ok {
			weight += w
		}
		for _, re := range ratingPatterns {
			for _, m := range re.FindAllStringSubmatch(text, -1) {
				votes[m[1]] += weight
			}
		}
	}

	scan(winner.Answer, "")
	for i, item := range winner.Items {
		if i >= 5 {
			break
		}
		scan(item.Title+" "+item.Description, item.SourceDomain)
	}
	if len(votes) == 0 {
		return ""
	}

	var best string
	var bestVotes int
	for candidate, n := range votes {
		if n > bestVotes || (n == bestVotes && candidate > best) {
			best = candidate
			bestVotes = n
		}
	}

	value, err := strconv.ParseFloat(best, 64)
	if err != nil || value <= 0 || value > 10 {
		return ""
	}

	// Sanity check: implausibly low ratings for famous titles are rejected.
	q := strings.ToLower(query)
	for _, title := range knownHighRated {
		if strings.Contains(q, title) && value < highRatedFloor {
			return ""
		}
	}

	return fmt.Sprintf("Rating: %s/10", best)
}
