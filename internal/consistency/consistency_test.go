package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/facts"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
	"github.com/Aman3189/soriva-backend-sub011/internal/search"
)

func resultWithAnswer(provider, answer string) *providers.Result {
	return &providers.Result{Provider: provider, Answer: answer}
}

func TestCheckSkipsNoVerifyTier(t *testing.T) {
	e := NewEngine(zap.NewNop())
	out := e.Check(search.TierNoVerify, "q", []*providers.Result{
		resultWithAnswer("brave", "India won by 5 wickets against Australia today."),
	})
	assert.Nil(t, out)
}

func TestCheckSingleProvider(t *testing.T) {
	e := NewEngine(zap.NewNop())
	out := e.Check(search.TierStandard, "india score", []*providers.Result{
		resultWithAnswer("brave", "India won the match by 5 wickets with 10 balls remaining."),
	})
	require.NotNil(t, out)
	assert.Equal(t, AgreementSingle, out.Agreement)
	assert.Equal(t, ConfidenceLow, out.Confidence)
	assert.Equal(t, 0.5, out.Score)
	assert.NotEmpty(t, out.VerifiedFact)
	assert.Equal(t, []string{"brave"}, out.ProvidersUsed)
}

func TestCheckUnanimousAgreement(t *testing.T) {
	e := NewEngine(zap.NewNop())
	// Same claim phrased near-identically: token overlap is well above the
	// equivalence threshold.
	out := e.Check(search.TierStandard, "india score", []*providers.Result{
		resultWithAnswer("brave", "India won the match by 5 wickets at Wankhede Stadium."),
		resultWithAnswer("serpapi", "India won the match by 5 wickets at Wankhede."),
	})
	require.NotNil(t, out)
	assert.Equal(t, AgreementUnanimous, out.Agreement)
	assert.Equal(t, ConfidenceHigh, out.Confidence)
	assert.Equal(t, 1.0, out.Score)
	assert.NotEmpty(t, out.VerifiedFact)
	assert.Equal(t, facts.OriginAnswer, out.VerifiedOrigin)
	assert.Contains(t, out.LLMInstruction, "verified fact")
}

func TestCheckSnippetDerivedFactKeepsSnippetOrigin(t *testing.T) {
	e := NewEngine(zap.NewNop())
	snippetResult := func(provider, desc string) *providers.Result {
		return &providers.Result{
			Provider: provider,
			Items:    []providers.Item{{Description: desc, SourceDomain: "espncricinfo.com"}},
		}
	}
	out := e.Check(search.TierStandard, "india score", []*providers.Result{
		snippetResult("brave", "India won the match by 5 wickets at Wankhede Stadium."),
		snippetResult("serpapi", "India won the match by 5 wickets at Wankhede."),
	})
	require.NotNil(t, out)
	assert.Equal(t, AgreementUnanimous, out.Agreement)
	assert.Equal(t, facts.OriginSnippet, out.VerifiedOrigin)
}

func TestCheckSplitOnDisjointFacts(t *testing.T) {
	e := NewEngine(zap.NewNop())
	out := e.Check(search.TierStrict, "q", []*providers.Result{
		resultWithAnswer("brave", "The iPhone 15 costs 79900 rupees at launch in India."),
		resultWithAnswer("tavily", "Mumbai recorded 34 degrees with humid conditions this afternoon."),
	})
	require.NotNil(t, out)
	assert.Equal(t, AgreementSplit, out.Agreement)
	assert.Equal(t, ConfidenceLow, out.Confidence)
	assert.Empty(t, out.VerifiedFact, "a split has no corroborated fact to surface")
	assert.Contains(t, out.LLMInstruction, "unconfirmed")
}

func TestCheckMajorityOfThree(t *testing.T) {
	e := NewEngine(zap.NewNop())
	out := e.Check(search.TierStrict, "q", []*providers.Result{
		resultWithAnswer("brave", "Sensex closed at 81000 points, up 250 on the day."),
		resultWithAnswer("serpapi", "Sensex closed at 81000 points, up 250 points today."),
		resultWithAnswer("tavily", "Gold prices rose 2 percent to 72000 per 10 grams."),
	})
	require.NotNil(t, out)
	assert.Equal(t, AgreementMajority, out.Agreement)
	assert.Equal(t, ConfidenceMedium, out.Confidence)
	assert.InDelta(t, 2.0/3.0, out.Score, 0.01)
	assert.Contains(t, out.VerifiedFact, "81000")
}

func TestCheckIgnoresEmptyProviders(t *testing.T) {
	e := NewEngine(zap.NewNop())
	out := e.Check(search.TierStandard, "q", []*providers.Result{
		resultWithAnswer("brave", "India won the match by 5 wickets with ease."),
		{Provider: "tavily"}, // no extractable facts
		nil,
	})
	require.NotNil(t, out)
	assert.Equal(t, AgreementSingle, out.Agreement)
}

func TestCheckNoFactsAnywhere(t *testing.T) {
	e := NewEngine(zap.NewNop())
	out := e.Check(search.TierStandard, "q", []*providers.Result{
		{Provider: "brave", Answer: "short"},
	})
	assert.Nil(t, out)
}

func TestDomainOverlapLadder(t *testing.T) {
	cases := []struct {
		name  string
		a, b  []string
		want  Agreement
		score float64
	}{
		{"identical sets", []string{"nhs.uk", "1mg.com"}, []string{"nhs.uk", "1mg.com"}, AgreementStrong, 1.0},
		{"two of three shared", []string{"nhs.uk", "1mg.com"}, []string{"nhs.uk", "1mg.com", "webmd.com"}, AgreementPartial, 2.0 / 3.0},
		{"one of four shared", []string{"nhs.uk", "1mg.com"}, []string{"nhs.uk", "webmd.com", "mayoclinic.org"}, AgreementWeak, 0.25},
		{"disjoint", []string{"nhs.uk"}, []string{"webmd.com"}, AgreementConflict, 0.0},
		{"both empty", nil, nil, AgreementConflict, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, score := DomainOverlap(tc.a, tc.b)
			assert.Equal(t, tc.want, got)
			assert.InDelta(t, tc.score, score, 0.001)
		})
	}
}

func TestDomainOverlapCaseInsensitive(t *testing.T) {
	got, score := DomainOverlap([]string{"NHS.uk"}, []string{"nhs.UK"})
	assert.Equal(t, AgreementStrong, got)
	assert.Equal(t, 1.0, score)
}

func TestConfidenceForMapping(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(AgreementStrong))
	assert.Equal(t, ConfidenceHigh, ConfidenceFor(AgreementUnanimous))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(AgreementPartial))
	assert.Equal(t, ConfidenceMedium, ConfidenceFor(AgreementMajority))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(AgreementWeak))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(AgreementConflict))
	assert.Equal(t, ConfidenceLow, ConfidenceFor(AgreementSingle))
}
