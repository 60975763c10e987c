package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortQueriesPassThrough(t *testing.T) {
	cases := []string{"", "IPL", "IPL score", "IPL score today", "  mausam kya  "}
	for _, q := range cases {
		assert.Equal(t, strings.TrimSpace(q), Normalize(q), "query %q", q)
	}
}

func TestHinglishTranslation(t *testing.T) {
	got := Normalize("aaj ka mausam kya hai batao")
	assert.Equal(t, "today weather what", got)
}

func TestPhraseSubstitutionWinsOverTokens(t *testing.T) {
	got := Normalize("Connaught Place ke paas khana khane ki jagah batao")
	assert.Contains(t, got, "restaurants")
	assert.NotContains(t, strings.ToLower(got), "khana")
}

func TestMostlyEnglishOnlyStripsStopWords(t *testing.T) {
	got := Normalize("please tell me about the latest cricket news update")
	assert.Equal(t, "latest cricket news update", got)
}

func TestAdjacentDuplicatesCollapse(t *testing.T) {
	got := Normalize("latest Latest cricket news today update now")
	assert.Equal(t, "latest cricket news today update now", got)
}

func TestEntityProtection(t *testing.T) {
	got := Normalize("Saravana Bhavan restaurant ka menu kya hai batao")
	assert.True(t, strings.Contains(got, "Saravana Bhavan restaurant"), "entity lost: %q", got)
}

func TestIdempotent(t *testing.T) {
	queries := []string{
		"aaj ka mausam kya hai batao",
		"please tell me about the latest cricket news update",
		"Connaught Place ke paas khana khane ki jagah batao",
		"Saravana Bhavan restaurant ka menu kya hai batao",
	}
	for _, q := range queries {
		once := Normalize(q)
		twice := Normalize(once)
		assert.Equal(t, once, twice, "not idempotent for %q", q)
	}
}

func TestDegenerateResultFallsBack(t *testing.T) {
	// Every token is a stop-word, so normalization would produce an empty
	// string; the original trimmed input must come back.
	q := "hai hain ka ki ke se"
	assert.Equal(t, q, Normalize(q))
}
