package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/memoriesapp/memories/internal/common"
)

// ChallengePrompt is presented to clients when a custom challenge is opened.
const ChallengePrompt = "present a valid JWT token issued by a recognized provider"

// tokenSeparator splits the provider name from the token in a challenge
// answer: "Apple:::<jwt>".
const tokenSeparator = ":::"

// federatedClaims is the subset of the identity provider's token we rely on.
type federatedClaims struct {
	jwt.RegisteredClaims
}

// verifyChallengeAnswer checks a challenge answer of the form
// <provider>:::<token>. The provider match is case-insensitive and limited
// to the accepted set; the token signature and validity window are verified
// through keyfunc. Returns the token subject (the federated user id).
func verifyChallengeAnswer(answer string, providers []string, keyfunc jwt.Keyfunc) (string, error) {
	provider, token, found := strings.Cut(answer, tokenSeparator)
	if !found {
		return "", fmt.Errorf("%w: answer must be <provider>%s<token>", common.ErrorUnauthorized, tokenSeparator)
	}

	accepted := false
	for _, p := range providers {
		if strings.EqualFold(provider, p) {
			accepted = true
			break
		}
	}
	if !accepted {
		return "", fmt.Errorf("%w: provider %q is not accepted", common.ErrorUnauthorized, provider)
	}

	claims := &federatedClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, keyfunc)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: federated token rejected: %v", common.ErrorUnauthorized, err)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: federated token has no subject", common.ErrorUnauthorized)
	}

	return claims.Subject, nil
}
