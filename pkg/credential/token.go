package credential

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Config struct {
	TokenSecret  string        `env:"TOKEN_SECRET,required"`
	TokenIssuer  string        `env:"TOKEN_ISSUER"  envDefault:"glossary"`
	TokenTTL     time.Duration `env:"TOKEN_TTL"     envDefault:"168h"`
	PasswordCost int           `env:"PASSWORD_COST" envDefault:"10"`
}

// ConfigFromEnv reads token and password settings from env vars.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse credential config: %w", err)
	}
	return cfg, nil
}

// TokenUser is the user projection embedded in every token.
type TokenUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Claims is the token payload: { user: { id, name } } plus iss/iat/exp.
type Claims struct {
	User TokenUser `json:"user"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies HS256 tokens.
type TokenSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenSigner(cfg Config) *TokenSigner {
	return &TokenSigner{
		secret: []byte(cfg.TokenSecret),
		issuer: cfg.TokenIssuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// WithClock returns a copy of the signer that reads time from now.
func (s *TokenSigner) WithClock(now func() time.Time) *TokenSigner {
	c := *s
	c.now = now
	return &c
}

func (s *TokenSigner) Sign(u TokenUser) (string, error) {
	now := s.now()
	claims := Claims{
		User: u,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature, algorithm, issuer and expiry. Expired tokens
// yield ErrTokenExpired; anything else that fails yields ErrTokenInvalid.
func (s *TokenSigner) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.User.ID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrTokenInvalid)
	}
	return claims, nil
}
