// Package federated verifies identity assertions issued by an external
// identity provider for federated sign-in.
package federated

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"

	dErrors "storefront/pkg/domain-errors"
)

// Assertion is the verified identity carried by a provider token.
type Assertion struct {
	Subject string
	Email   string
	Name    string
}

type assertionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Verifier checks provider tokens signed with a shared HMAC key.
type Verifier struct {
	key    []byte
	issuer string
}

// NewVerifier returns nil when no key is configured; a nil Verifier rejects
// every assertion.
func NewVerifier(key, issuer string) *Verifier {
	if key == "" {
		return nil
	}
	return &Verifier{key: []byte(key), issuer: issuer}
}

func (v *Verifier) Verify(token string) (Assertion, error) {
	if v == nil {
		return Assertion{}, dErrors.New(dErrors.CodePreconditionFailed, "federated sign-in is not configured")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	var claims assertionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return Assertion{}, dErrors.New(dErrors.CodeUnauthorized, "invalid identity assertion")
	}
	if claims.Subject == "" || strings.TrimSpace(claims.Email) == "" {
		return Assertion{}, dErrors.New(dErrors.CodeUnauthorized, "identity assertion is missing subject or email")
	}
	return Assertion{
		Subject: claims.Subject,
		Email:   strings.TrimSpace(claims.Email),
		Name:    strings.TrimSpace(claims.Name),
	}, nil
}
