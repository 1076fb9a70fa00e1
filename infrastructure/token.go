package infrastructure

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"jobselect/config"
	"jobselect/domain"
)

// sessionClaims is the internal claims type used for JWT encoding.
type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TokenIssuer signs and verifies HS256 session tokens.
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		ttl:    cfg.SessionTTL,
		now:    time.Now,
	}
}

// Issue mints a token bound to user and returns it with its issuance time.
func (t *TokenIssuer) Issue(user domain.User) (string, time.Time, error) {
	if len(t.secret) == 0 {
		return "", time.Time{}, domain.NewError(domain.KindTokenIssuanceFailed, "token secret is not configured", nil)
	}
	now := t.now().UTC().Truncate(time.Second)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		Email: user.Email,
		Name:  user.Name,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, domain.NewError(domain.KindTokenIssuanceFailed, "sign session token", err)
	}
	return signed, now, nil
}

// Verify checks signature, issuer and expiry. Every failure is Unauthorized.
func (t *TokenIssuer) Verify(token string) (domain.TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.TokenClaims{}, domain.Unauthorized("missing session token")
	}

	var parsed sessionClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.TokenClaims{}, domain.NewError(domain.KindUnauthorized, "session token expired", err)
		}
		return domain.TokenClaims{}, domain.NewError(domain.KindUnauthorized, "invalid session token", err)
	}
	if parsed.Subject == "" || parsed.Email == "" {
		return domain.TokenClaims{}, domain.Unauthorized("session token is missing its subject")
	}

	var issuedAt time.Time
	if parsed.IssuedAt != nil {
		issuedAt = parsed.IssuedAt.Time
	}
	return domain.TokenClaims{
		UserID:   parsed.Subject,
		Email:    parsed.Email,
		Name:     parsed.Name,
		IssuedAt: issuedAt,
	}, nil
}
