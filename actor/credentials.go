package actor

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-actor-client/identities"
	"github.com/pkg/errors"
)

// CallClaims are carried by the per-call credential. The token is signed with
// the caller's identity key and embeds the public key, so the receiver can check
// that the subject principal is derived from the key that signed it.
type CallClaims struct {
	jwt.RegisteredClaims
	Operation string `json:"op"`
	PublicKey string `json:"pub"`
}

// IssueCallToken signs a credential binding caller to a single call of op.
func IssueCallToken(caller *identities.Identity, audience, op, requestID string, now time.Time, ttl time.Duration) (string, error) {
	claims := CallClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.Principal(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        requestID,
		},
		Operation: op,
		PublicKey: base64.RawURLEncoding.EncodeToString(caller.PublicKey()),
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	token.Header["kid"] = caller.Principal()

	signed, err := token.SignedString(caller.Signer())
	if err != nil {
		return "", errors.Wrap(err, "failed to sign call token")
	}
	return signed, nil
}

// VerifyCallToken validates a credential produced by IssueCallToken and returns
// its claims. The subject is the authenticated caller principal.
func VerifyCallToken(tokenString, audience string) (*CallClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()})}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &CallClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		pub, err := base64.RawURLEncoding.DecodeString(claims.PublicKey)
		if err != nil || len(pub) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("invalid caller public key")
		}
		principal, err := identities.PrincipalFromPublicKey(pub)
		if err != nil {
			return nil, err
		}
		if principal != claims.Subject {
			return nil, fmt.Errorf("subject %s does not match caller key", claims.Subject)
		}
		return ed25519.PublicKey(pub), nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid call token")
	}
	return claims, nil
}
