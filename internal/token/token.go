// Package token implements the session token service. Tokens are compact
// signed credentials binding a user identity to the fixed "auth" access tag.
// A token's signature can be checked without touching storage; whether the
// token is still live (not revoked by logout) is a separate question answered
// by the credential store, which keeps every issued token on its owner's
// record until revocation.
//
// Tokens deliberately carry no expiry claim: a session lasts until the user
// logs out. There is no refresh flow.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pocketlist/pocketlist/internal/apperror"
	"github.com/pocketlist/pocketlist/internal/ident"
)

// AccessAuth is the access tag embedded in every session token. The system
// has a single access level; the tag exists so a token's purpose is explicit
// and verifiable.
const AccessAuth = "auth"

// signingMethod is pinned so a forged token cannot downgrade verification
// (e.g., alg=none).
var signingMethod = jwt.SigningMethodHS256

// Claims is the verified content of a session token.
type Claims struct {
	// UserID is the identity the token was issued to.
	UserID string

	// Access is the access tag, always AccessAuth for valid tokens.
	Access string
}

// sessionClaims is the wire-level claims structure used for signing/parsing.
type sessionClaims struct {
	jwt.RegisteredClaims
	Access string `json:"access"`
}

// Service signs and verifies session tokens with a shared secret.
type Service struct {
	secret []byte
}

// NewService creates a token service signing with the given secret.
func NewService(secret string) *Service {
	return &Service{secret: []byte(secret)}
}

// Issue produces a new signed token bound to the given user identity and the
// "auth" access tag. Issue has no side effects; the caller is responsible for
// appending the token to the user's live-token collection.
//
// Each token carries a random jti, so two logins by the same user always
// mint distinct strings. Revocation matches on the exact string, meaning
// sessions would collide without it: logging out one device would delete
// every row holding the shared token.
func (s *Service) Issue(userID string) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			ID:       ident.New(),
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		Access: AccessAuth,
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Verify checks a presented token's signature and structure and returns its
// claims. It does NOT check revocation -- a verified token may still be dead
// if its owner logged out; the credential store layers that check on top.
func (s *Service) Verify(tok string) (Claims, error) {
	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(tok, &parsed, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil {
		return Claims{}, apperror.NewUnauthorized("invalid session token")
	}

	if parsed.Subject == "" || parsed.Access != AccessAuth {
		return Claims{}, apperror.NewUnauthorized("invalid session token")
	}

	return Claims{UserID: parsed.Subject, Access: parsed.Access}, nil
}
