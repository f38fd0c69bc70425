// Package token mints and validates the signed token pair issued on
// login. Access and refresh tokens are signed with independent secrets,
// so compromising one cannot forge the other.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"sigil/internal/platform/config"
	"sigil/pkg/domain"
	dErrors "sigil/pkg/domain-errors"
)

// Kind discriminates the two token flavors. Access tokens authenticate
// API calls; refresh tokens may only be exchanged for new access tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	ErrTokenExpired   = dErrors.New(dErrors.CodeUnauthorized, "token has expired")
	ErrTokenInvalid   = dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	ErrWrongTokenKind = dErrors.New(dErrors.CodeUnauthorized, "wrong token kind")
)

// Claims is the JWT payload shared by both token kinds. The token ID is
// unique per issuance and doubles as the revocation key.
type Claims struct {
	Address string `json:"address"`
	Kind    Kind   `json:"kind"`
	jwt.RegisteredClaims
}

type keyMaterial struct {
	secret []byte
	ttl    time.Duration
}

// Issuer signs and validates tokens for both kinds.
type Issuer struct {
	access  keyMaterial
	refresh keyMaterial
	issuer  string
	now     func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(cfg config.AuthConfig, opts ...Option) *Issuer {
	i := &Issuer{
		access:  keyMaterial{secret: []byte(cfg.AccessTokenSecret), ttl: cfg.AccessTokenTTL},
		refresh: keyMaterial{secret: []byte(cfg.RefreshTokenSecret), ttl: cfg.RefreshTokenTTL},
		issuer:  cfg.Issuer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) material(kind Kind) (keyMaterial, bool) {
	switch kind {
	case KindAccess:
		return i.access, true
	case KindRefresh:
		return i.refresh, true
	default:
		return keyMaterial{}, false
	}
}

// TTL reports the configured lifetime for a token kind.
func (i *Issuer) TTL(kind Kind) time.Duration {
	km, _ := i.material(kind)
	return km.ttl
}

// Issue mints a signed token of the given kind for address.
func (i *Issuer) Issue(address domain.Address, kind Kind) (string, error) {
	km, ok := i.material(kind)
	if !ok {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "unknown token kind")
	}

	now := i.now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Address: address.String(),
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(km.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Subject:   address.String(),
			ID:        uuid.NewString(),
		},
	})

	signed, err := tok.SignedString(km.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate parses raw and checks it is a live, well-formed token of the
// wanted kind. A token from the pair presented as the wrong half is
// reported as ErrWrongTokenKind so callers can distinguish a swapped
// token from garbage.
func (i *Issuer) Validate(raw string, want Kind) (*Claims, error) {
	km, ok := i.material(want)
	if !ok {
		return nil, ErrTokenInvalid
	}

	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return km.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if i.signedForOtherKind(raw, want) {
			return nil, ErrWrongTokenKind
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != want {
		return nil, ErrWrongTokenKind
	}
	return claims, nil
}

// signedForOtherKind re-parses raw with the opposite kind's secret,
// skipping claim validation. A clean signature there means the caller
// holds a real token from the pair, just the wrong half.
func (i *Issuer) signedForOtherKind(raw string, want Kind) bool {
	other := KindRefresh
	if want == KindRefresh {
		other = KindAccess
	}
	km, ok := i.material(other)
	if !ok {
		return false
	}

	_, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return km.secret, nil
	}, jwt.WithoutClaimsValidation())
	return err == nil
}
