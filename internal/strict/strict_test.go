package strict

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Aman3189/soriva-backend-sub011/internal/consistency"
	"github.com/Aman3189/soriva-backend-sub011/internal/providers"
)

type fakeGrounded struct {
	res *providers.GroundedResult
	err error
}

func (f *fakeGrounded) Answer(context.Context, string, string) (*providers.GroundedResult, error) {
	return f.res, f.err
}

type fakeVerifier struct {
	res *providers.Result
	err error
}

func (f *fakeVerifier) Name() string { return "brave" }

func (f *fakeVerifier) Search(context.Context, providers.Query) (*providers.Result, error) {
	return f.res, f.err
}

func groundedOK() *providers.GroundedResult {
	return &providers.GroundedResult{
		Answer: "The typical adult dosage of paracetamol is 500mg to 1000mg every 4 to 6 hours, with a maximum of 4 grams per day.",
		Sources: []providers.GroundedSource{
			{URL: "https://www.nhs.uk/medicines/paracetamol", Title: "Paracetamol", Domain: "nhs.uk"},
			{URL: "https://www.1mg.com/drugs/paracetamol", Title: "Paracetamol 500", Domain: "1mg.com"},
		},
	}
}

func verificationWith(domains ...string) *providers.Result {
	r := &providers.Result{Provider: "brave"}
	for _, d := range domains {
		r.Items = append(r.Items, providers.Item{
			URL:          "https://" + d + "/page",
			Title:        d,
			SourceDomain: d,
		})
	}
	return r
}

func TestStrictSearchPartialAgreement(t *testing.T) {
	// Grounded cites {nhs.uk, 1mg.com}; verification returns 3 sources with
	// 1 overlapping domain: overlap 1/4 = 0.25 -> WEAK -> LOW. Use 2
	// overlapping of 3 for PARTIAL instead: {nhs.uk, 1mg.com, webmd.com}
	// gives 2/3 = 0.66 -> PARTIAL -> MEDIUM.
	s := NewSearcher(
		&fakeGrounded{res: groundedOK()},
		&fakeVerifier{res: verificationWith("nhs.uk", "1mg.com", "webmd.com")},
		time.Second, zap.NewNop(),
	)

	res := s.Search(context.Background(), "paracetamol dosage for fever", "health")
	require.True(t, res.Success)
	assert.Equal(t, consistency.AgreementPartial, res.Agreement)
	assert.Equal(t, consistency.ConfidenceMedium, res.Confidence)
	assert.Contains(t, res.Answer, "not medical advice")
	assert.NotEmpty(t, res.LLMInstruction)
}

func TestGroundedFailureIsFatal(t *testing.T) {
	s := NewSearcher(
		&fakeGrounded{err: errors.New("model down")},
		&fakeVerifier{res: verificationWith("nhs.uk")},
		time.Second, zap.NewNop(),
	)

	res := s.Search(context.Background(), "paracetamol dosage", "health")
	assert.False(t, res.Success)
	assert.Empty(t, res.Answer)
	assert.Equal(t, consistency.ConfidenceLow, res.Confidence)
	assert.Equal(t, consistency.AgreementConflict, res.Agreement)
	assert.NotEmpty(t, res.Error)
}

func TestShortGroundedAnswerIsFatal(t *testing.T) {
	s := NewSearcher(
		&fakeGrounded{res: &providers.GroundedResult{Answer: "Take some medicine."}},
		&fakeVerifier{},
		time.Second, zap.NewNop(),
	)
	res := s.Search(context.Background(), "paracetamol dosage", "health")
	assert.False(t, res.Success)
}

func TestVerifierFailureDegradesToConflict(t *testing.T) {
	s := NewSearcher(
		&fakeGrounded{res: groundedOK()},
		&fakeVerifier{err: errors.New("quota exceeded")},
		time.Second, zap.NewNop(),
	)

	res := s.Search(context.Background(), "paracetamol dosage", "health")
	require.True(t, res.Success, "verifier failure must not fail the request")
	assert.Equal(t, consistency.AgreementConflict, res.Agreement)
	assert.Equal(t, consistency.ConfidenceLow, res.Confidence)
}

func TestDisclaimerAlwaysPresentForSensitiveCategories(t *testing.T) {
	// Full overlap -> STRONG/HIGH, and the health disclaimer must still be
	// attached.
	s := NewSearcher(
		&fakeGrounded{res: groundedOK()},
		&fakeVerifier{res: verificationWith("nhs.uk", "1mg.com")},
		time.Second, zap.NewNop(),
	)

	res := s.Search(context.Background(), "paracetamol dosage", "health")
	require.True(t, res.Success)
	assert.Equal(t, consistency.AgreementStrong, res.Agreement)
	assert.Equal(t, consistency.ConfidenceHigh, res.Confidence)
	assert.NotEmpty(t, res.Disclaimer)
}

func TestSourcesDedupedAndCapped(t *testing.T) {
	verifier := &fakeVerifier{res: verificationWith("nhs.uk", "webmd.com", "mayoclinic.org", "healthline.com", "medlineplus.gov")}
	// Duplicate URL between grounded and verification.
	g := groundedOK()
	g.Sources = append(g.Sources, providers.GroundedSource{
		URL: "https://nhs.uk/page", Title: "dup", Domain: "nhs.uk",
	})

	s := NewSearcher(&fakeGrounded{res: g}, verifier, time.Second, zap.NewNop())
	res := s.Search(context.Background(), "paracetamol dosage", "health")

	require.True(t, res.Success)
	assert.LessOrEqual(t, len(res.Sources), 4)
	seen := map[string]bool{}
	for _, src := range res.Sources {
		assert.False(t, seen[src.URL], "duplicate source %s", src.URL)
		seen[src.URL] = true
	}
	// The domain both providers cite ranks first.
	assert.Equal(t, "nhs.uk", res.Sources[0].Domain)
	assert.True(t, res.Sources[0].Verified)
}
