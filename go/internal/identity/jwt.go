// Package identity maps a caller's bearer token to an athlete id.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/recruit/go/internal/apperr"
	"github.com/mcdev12/recruit/go/internal/store"
)

// Claims are the access-token claims. The athlete id travels in sub.
type Claims struct {
	jwt.RegisteredClaims
}

// JWT verifies HS256 tokens and confirms the subject is a known athlete.
type JWT struct {
	signingKey []byte
	issuer     string
	store      store.Store
	clock      clockwork.Clock
}

func NewJWT(signingKey, issuer string, st store.Store, clock clockwork.Clock) *JWT {
	return &JWT{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		store:      st,
		clock:      clock,
	}
}

// Issue mints a token for athleteID valid for ttl.
func (j *JWT) Issue(athleteID uuid.UUID, ttl time.Duration) (string, error) {
	now := j.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   athleteID.String(),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(j.signingKey)
}

// Resolve returns the athlete id behind token. Every failure, including an
// unknown athlete, is Unauthenticated.
func (j *JWT) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, apperr.Unauthenticated("Missing credentials")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return j.signingKey, nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, apperr.Unauthenticated("Token has expired")
		}
		return uuid.Nil, apperr.Unauthenticated("Invalid token")
	}
	if !parsed.Valid {
		return uuid.Nil, apperr.Unauthenticated("Invalid token")
	}

	athleteID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, apperr.Unauthenticated("Invalid token subject")
	}

	err = j.store.RunInTx(ctx, func(tx store.Tx) error {
		_, err := tx.GetAthlete(ctx, athleteID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return uuid.Nil, apperr.Unauthenticated("Unknown athlete")
	}
	if err != nil {
		return uuid.Nil, apperr.From(err)
	}
	return athleteID, nil
}
