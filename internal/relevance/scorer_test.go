package relevance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

func TestScoreTitleMatchesDominate(t *testing.T) {
	query := "india australia score"
	inTitle := providers.Item{Title: "India vs Australia score today", Description: "match report"}
	inDesc := providers.Item{Title: "cricket news", Description: "india australia score coverage"}
	assert.Greater(t, Score(query, inTitle), Score(query, inDesc))
}

func TestScorePhraseBonus(t *testing.T) {
	query := "iphone 15 price"
	exact := providers.Item{Title: "iPhone 15 price in India"}
	scattered := providers.Item{Title: "price drop: is the iPhone better than the 15 Pro"}
	assert.Greater(t, Score(query, exact), Score(query, scattered))
}

func TestScoreFreshnessAndTrustBonuses(t *testing.T) {
	query := "match result"
	base := providers.Item{Title: "match result", SourceDomain: "random.example"}
	fresh := base
	fresh.Published = time.Now().Add(-2 * time.Hour)
	trusted := base
	trusted.SourceDomain = "www.espncricinfo.com"

	assert.Equal(t, Score(query, base)+5, Score(query, fresh))
	assert.Equal(t, Score(query, base)+4, Score(query, trusted))
}

func TestScoreStalePublishedGetsNoBonus(t *testing.T) {
	query := "match result"
	stale := providers.Item{Title: "match result", Published: time.Now().Add(-80 * time.Hour)}
	assert.Equal(t, Score(query, providers.Item{Title: "match result"}), Score(query, stale))
}

func TestBestAndRank(t *testing.T) {
	query := "mumbai weather today"
	items := []providers.Item{
		{Title: "unrelated article", Description: "nothing"},
		{Title: "Mumbai weather today: 34° and humid", Description: "weather in mumbai today", SourceDomain: "accuweather.com"},
		{Title: "weather news", Description: "mumbai forecast"},
	}

	best := Best(query, items)
	require.NotNil(t, best)
	assert.Equal(t, "accuweather.com", best.SourceDomain)

	ranked := Rank(query, items)
	assert.Equal(t, best.Title, ranked[0].Title)
	// Input order is untouched.
	assert.Equal(t, "unrelated article", items[0].Title)
}

func TestBestEmptyInput(t *testing.T) {
	assert.Nil(t, Best("q", nil))
}
