// Package risk classifies queries into LOW_RISK or HIGH_RISK using fixed
// keyword sets for sensitive categories. The classification gates whether a
// query takes the simple pipeline or the strict grounded-answer path, so
// false negatives here are safety-relevant.
package risk

import "strings"

// Level is the binary risk classification of a query.
type Level string

const (
	LowRisk  Level = "LOW_RISK"
	HighRisk Level = "HIGH_RISK"
)

// Category names the sensitive domain that triggered a HIGH_RISK match.
type Category string

const (
	CategoryHealth     Category = "health"
	CategoryFinance    Category = "finance"
	CategoryLegal      Category = "legal"
	CategoryGovernment Category = "government"
	CategoryGeneral    Category = "general"
)

// Classification is the full result of classifying one query. Computed once
// per request and never mutated.
type Classification struct {
	Level          Level    `json:"level"`
	Category       Category `json:"category"`
	MatchedKeyword string   `json:"matched_keyword,omitempty"`
}

// categoryKeywords holds one keyword set per sensitive category. Order
// matters: the first category with a match wins.
type categoryKeywords struct {
	category Category
	keywords []string
}

var defaultKeywordSets = []categoryKeywords{
	{CategoryHealth, []string{
		"dosage", "medicine", "tablet", "symptom", "symptoms", "treatment",
		"disease", "infection", "pregnancy", "pregnant", "vaccine", "fever",
		"diabetes", "blood pressure", "side effect", "side effects",
		"prescription", "antibiotic", "paracetamol", "surgery", "cancer",
		"depression", "anxiety", "dawai", "bimari", "ilaj", "bukhar",
	}},
	{CategoryFinance, []string{
		"investment", "invest", "mutual fund", "stocks", "share market",
		"loan", "emi", "interest rate", "tax", "income tax", "gst",
		"insurance", "fixed deposit", "crypto", "bitcoin", "trading",
		"pension", "provident fund", "nivesh", "byaj",
	}},
	{CategoryLegal, []string{
		"legal", "lawyer", "court", "lawsuit", "divorce", "custody", "bail",
		"arrest", "fir", "contract", "notice", "section", "ipc", "rights",
		"kanoon", "vakil", "adalat",
	}},
	{CategoryGovernment, []string{
		"passport", "visa", "aadhaar", "aadhar", "pan card", "voter id",
		"ration card", "driving licence", "driving license",
		"government scheme", "subsidy", "sarkari", "yojana", "tender",
	}},
}

// Classifier scans fixed keyword sets against the query. Safe for concurrent
// use; the keyword tables are immutable after construction.
type Classifier struct {
	sets []categoryKeywords
}

// NewClassifier returns a classifier with the compiled-in keyword sets.
func NewClassifier() *Classifier {
	return &Classifier{sets: defaultKeywordSets}
}

// NewClassifierWithSets builds a classifier from externally loaded keyword
// sets, e.g. a YAML override file. Keywords shorter than 3 characters are
// dropped so they can never match substrings of unrelated words.
func NewClassifierWithSets(sets map[Category][]string) *Classifier {
	ordered := []Category{CategoryHealth, CategoryFinance, CategoryLegal, CategoryGovernment}
	c := &Classifier{}
	for _, cat := range ordered {
		kws := make([]string, 0, len(sets[cat]))
		for _, kw := range sets[cat] {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if len(kw) >= 3 {
				kws = append(kws, kw)
			}
		}
		if len(kws) > 0 {
			c.sets = append(c.sets, categoryKeywords{category: cat, keywords: kws})
		}
	}
	return c
}

// Classify returns only the risk level.
func (c *Classifier) Classify(query string) Level {
	return c.ClassifyDetailed(query).Level
}

// ClassifyDetailed scans each category's keywords in order and returns the
// first whole-word match. No match means LOW_RISK/general.
func (c *Classifier) ClassifyDetailed(query string) Classification {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, set := range c.sets {
		for _, kw := range set.keywords {
			if len(kw) < 3 {
				continue
			}
			if containsWholeWord(q, kw) {
				return Classification{
					Level:          HighRisk,
					Category:       set.category,
					MatchedKeyword: kw,
				}
			}
		}
	}
	return Classification{Level: LowRisk, Category: CategoryGeneral}
}

// containsWholeWord reports whether kw occurs in q on word boundaries.
// Multi-word keywords match as a phrase with the same boundary rule.
func containsWholeWord(q, kw string) bool {
	for start := 0; ; {
		idx := strings.Index(q[start:], kw)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(kw)
		beforeOK := idx == 0 || !isWordChar(q[idx-1])
		afterOK := end == len(q) || !isWordChar(q[end])
		if beforeOK && afterOK {
			return true
		}
		start = idx + 1
	}
}

func isWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
