// internal/app/system/authn/authn.go

// Package authn verifies bearer credentials and exposes the caller's
// identity to handlers.
//
// Identity issuance lives in the platform's account service; this package
// only verifies the tokens it mints. A verified request carries an Identity
// in its context, retrievable with CurrentIdentity.
package authn

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the verified caller: the stable user ID the rest of the
// system keys on, plus the display name carried in the token.
type Identity struct {
	UID  string
	Name string
}

type ctxKey string

const currentIdentityKey ctxKey = "currentIdentity"

// Claims is the payload of an access token. The user ID rides in the
// registered "sub" claim; the display name in "name".
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Verifier checks HS256 access tokens against the shared signing secret.
type Verifier struct {
	secret []byte
	issuer string
}

// NewVerifier constructs a Verifier. issuer may be empty, in which case the
// token's issuer claim is not checked.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// Verify validates the signature, expiry, and issuer of a token string and
// returns the identity it asserts.
func (v *Verifier) Verify(tokenString string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	return &Identity{UID: claims.Subject, Name: claims.Name}, nil
}

// CurrentIdentity returns the verified caller and a "found?" flag.
func CurrentIdentity(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(currentIdentityKey).(*Identity)
	return id, ok
}

// CallerUID returns the verified caller's user ID, or "" when the request
// is unauthenticated. Convenient for rate limit keys and log fields.
func CallerUID(r *http.Request) string {
	if id, ok := CurrentIdentity(r); ok {
		return id.UID
	}
	return ""
}

// BearerToken extracts the credential from an Authorization: Bearer header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header || token == "" {
		return "", false
	}
	return token, true
}

// withIdentity returns a shallow copy of r carrying id in its context.
func withIdentity(r *http.Request, id *Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentIdentityKey, id))
}

// WithTestIdentity injects an identity directly into the request context,
// bypassing token verification. For handler tests only.
func WithTestIdentity(r *http.Request, id *Identity) *http.Request {
	return withIdentity(r, id)
}
