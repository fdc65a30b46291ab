// Package credentials resolves and applies the play.ht authentication pair.
//
// Every play.ht request carries two headers: the secret key in Authorization
// and the user id in X-USER-ID. The pair is resolved once, when a client is
// built, and never modified afterwards, so a Credential can be shared by any
// number of concurrent requests.
package credentials

import (
	"context"
	"net/http"
)

// Header names used for play.ht authentication.
const (
	AuthorizationHeader = "Authorization"
	UserIDHeader        = "X-USER-ID"
)

// Credential applies authentication to HTTP requests.
type Credential interface {
	// Apply adds authentication to the HTTP request.
	Apply(ctx context.Context, req *http.Request) error

	// Type returns the credential type identifier.
	Type() string
}

// KeyPairCredential carries a play.ht secret key and user id.
type KeyPairCredential struct {
	secretKey string
	userID    string
	prefix    string // Optional prefix like "Bearer "
}

// KeyPairOption configures a KeyPairCredential.
type KeyPairOption func(*KeyPairCredential)

// WithBearerPrefix sends the secret key as "Bearer <key>".
func WithBearerPrefix() KeyPairOption {
	return func(c *KeyPairCredential) {
		c.prefix = "Bearer "
	}
}

// WithPrefix sets a custom prefix for the secret key.
func WithPrefix(prefix string) KeyPairOption {
	return func(c *KeyPairCredential) {
		c.prefix = prefix
	}
}

// NewKeyPairCredential creates a credential from a secret key and user id.
// By default the secret key is sent verbatim in the Authorization header.
func NewKeyPairCredential(secretKey, userID string, opts ...KeyPairOption) *KeyPairCredential {
	c := &KeyPairCredential{
		secretKey: secretKey,
		userID:    userID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Apply sets the Authorization and X-USER-ID headers.
func (c *KeyPairCredential) Apply(_ context.Context, req *http.Request) error {
	req.Header.Set(AuthorizationHeader, c.prefix+c.secretKey)
	req.Header.Set(UserIDHeader, c.userID)
	return nil
}

// Type returns "key_pair".
func (c *KeyPairCredential) Type() string {
	return "key_pair"
}

// SecretKey returns the raw secret key.
func (c *KeyPairCredential) SecretKey() string {
	return c.secretKey
}

// UserID returns the user id.
func (c *KeyPairCredential) UserID() string {
	return c.userID
}

// Secrets returns the values that must never appear in logs.
func (c *KeyPairCredential) Secrets() []string {
	return []string{c.secretKey, c.userID}
}
