package search

import (
	"strings"

	"github.com/Aman3189/soriva-backend-sub011/internal/routing"
)

// Tier is the verification intensity selected once per request. It is not
// user-visible and never changes for the request's lifetime.
type Tier string

const (
	TierNoVerify Tier = "NO_VERIFY"
	TierStandard Tier = "STANDARD"
	TierStrict   Tier = "STRICT"
)

// verifyMarkers are query phrases that explicitly ask for confirmation;
// they escalate any domain to STRICT.
var verifyMarkers = []string{
	"is it true", "fact check", "confirm", "verify", "sach hai", "sahi hai kya",
}

// standardTierDomains are fast-moving factual domains where a single
// provider's answer is too easy to get wrong: cross-check two.
var standardTierDomains = map[routing.Domain]bool{
	routing.DomainSports:  true,
	routing.DomainNews:    true,
	routing.DomainFinance: true,
}

// TierFor picks the verification tier from (domain, query).
func TierFor(domain routing.Domain, query string) Tier {
	q := strings.ToLower(query)
	for _, m := range verifyMarkers {
		if strings.Contains(q, m) {
			return TierStrict
		}
	}
	if standardTierDomains[domain] {
		return TierStandard
	}
	return TierNoVerify
}

// ProviderCount returns how many providers the tier fans out to.
func (t Tier) ProviderCount() int {
	switch t {
	case TierStandard:
		return 2
	case TierStrict:
		return 3
	default:
		return 1
	}
}
