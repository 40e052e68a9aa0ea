package blobstore

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// tokenTTL bounds how long a minted upload token is accepted by the publisher.
const tokenTTL = 5 * time.Minute

// PublisherAuth mints short-lived HS256 tokens for publishers that require
// JWT authentication on uploads.
type PublisherAuth struct {
	secret []byte
	now    func() time.Time
}

func NewPublisherAuth(secret string) *PublisherAuth {
	return &PublisherAuth{secret: []byte(secret), now: time.Now}
}

// Token returns a bearer token scoped to one upload of size bytes for epochs.
func (a *PublisherAuth) Token(epochs int, size int64) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"iat":    now.Unix(),
		"exp":    now.Add(tokenTTL).Unix(),
		"jti":    uuid.NewString(),
		"epochs": epochs,
		"size":   size,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}
