package registrations

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for malformed, tampered or expired check-in tokens.
var ErrInvalidToken = errors.New("invalid check-in token")

// CheckinClaims identify the registration a check-in token admits.
type CheckinClaims struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	EventID        uuid.UUID `json:"event_id"`
	jwt.RegisteredClaims
}

// Tickets signs and verifies check-in tokens.
type Tickets struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTickets creates a check-in token signer valid for expireHours.
func NewTickets(secret string, expireHours int) *Tickets {
	return &Tickets{
		secret: []byte(secret),
		ttl:    time.Duration(expireHours) * time.Hour,
		now:    time.Now,
	}
}

// Issue returns a signed token for a registration.
func (t *Tickets) Issue(registrationID, eventID uuid.UUID) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := CheckinClaims{
		RegistrationID: registrationID,
		EventID:        eventID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   registrationID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its claims.
func (t *Tickets) Parse(token string) (*CheckinClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &CheckinClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*CheckinClaims)
	if !ok || !parsed.Valid || claims.RegistrationID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
