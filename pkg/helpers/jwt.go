package helpers

import (
	"errors"
	"expvar"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oksasatya/go-diagram-workspace/internal/domain/entity"
	"github.com/oksasatya/go-diagram-workspace/internal/domain/errs"
)

// tokenFailures counts rejected tokens by cause, exposed on /api/debug/vars.
var tokenFailures = expvar.NewMap("token_failures")

// JWTManager mints and verifies HS256 session tokens.
// The subject is the username; tokens carry no other identity data.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type JWTOption func(*JWTManager)

// WithClock replaces time.Now for both minting and verification.
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

func NewJWTManager(secret string, ttl time.Duration, opts ...JWTOption) (*JWTManager, error) {
	if secret == "" {
		return nil, &errs.ConfigurationError{Key: "JWT_SECRET", Reason: "must not be empty"}
	}
	if ttl <= 0 {
		return nil, &errs.ConfigurationError{Key: "JWT_TTL", Reason: "must be positive"}
	}
	m := &JWTManager{secret: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

func (m *JWTManager) TTL() time.Duration { return m.ttl }

// Mint issues a token for p valid for exactly TTL from now.
func (m *JWTManager) Mint(p *entity.Principal) (string, time.Time, error) {
	if p == nil || p.Username == "" {
		return "", time.Time{}, errors.New("mint: principal without username")
	}
	// NumericDate has second precision, so truncate first to keep exp-iat == ttl.
	iat := m.now().Truncate(time.Second)
	exp := iat.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   p.Username,
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, exp, nil
}

// Verify checks signature and expiry and returns the subject. Every failure is
// an *errs.TokenError; a token is valid strictly before its exp instant.
func (m *JWTManager) Verify(token string) (string, error) {
	if token == "" {
		return "", m.fail(errs.CauseEmpty, nil)
	}

	// The alg header is inspected up front so "none" and foreign algorithms are
	// reported apart from signature mismatches.
	unverified, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenUnverifiable) {
			return "", m.fail(errs.CauseUnsupported, err)
		}
		return "", m.fail(errs.CauseMalformed, err)
	}
	if unverified.Method == nil || unverified.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return "", m.fail(errs.CauseUnsupported, nil)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", m.fail(errs.CauseBadSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", m.fail(errs.CauseExpired, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return "", m.fail(errs.CauseUnsupported, err)
	default:
		return "", m.fail(errs.CauseMalformed, err)
	}

	if claims.Subject == "" {
		return "", m.fail(errs.CauseMalformed, errors.New("missing subject"))
	}
	return claims.Subject, nil
}

func (m *JWTManager) fail(cause errs.TokenCause, err error) error {
	tokenFailures.Add(string(cause), 1)
	return &errs.TokenError{Cause: cause, Err: err}
}
