package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

func TestGateLevel1LowRelevanceNoAnswer(t *testing.T) {
	r := &providers.Result{Items: []providers.Item{{Title: "x", Description: "y"}}}
	d := QualityGate("some query", r, 3)
	assert.False(t, d.Passed)
	assert.Equal(t, "low_relevance", d.Reason)
}

func TestGateLevel1PassesOnLongAnswer(t *testing.T) {
	r := &providers.Result{Answer: "The capital of Australia is Canberra, established in 1913."}
	d := QualityGate("capital of australia", r, 0)
	assert.True(t, d.Passed)
}

func TestGateUselessPhraseFailsOutright(t *testing.T) {
	r := &providers.Result{Answer: "The match schedule is not yet available, stay tuned for updates here."}
	d := QualityGate("match schedule", r, 50)
	assert.False(t, d.Passed)
	assert.Equal(t, "useless_phrase", d.Reason)
}

func TestGateCategoryEvidence(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		text   string
		passed bool
	}{
		{"rating with evidence", "jawan imdb rating", "Jawan is rated 7.1/10 by critics worldwide", true},
		{"rating without evidence", "jawan imdb rating", "Jawan is a 2023 action film directed by Atlee", false},
		{"price with evidence", "iphone 15 price india", "The iPhone 15 costs ₹79,900 at launch in India", true},
		{"price without evidence", "iphone 15 price india", "The iPhone 15 was launched in September this year", false},
		{"weather with evidence", "weather in Mumbai", "Mumbai is sunny today with a high of 34° and humid conditions", true},
		{"weather without evidence", "weather in Mumbai", "Mumbai is the financial capital of 1 country", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := &providers.Result{Answer: tc.text}
			d := QualityGate(tc.query, r, 20)
			assert.Equal(t, tc.passed, d.Passed, "reason=%s", d.Reason)
		})
	}
}
