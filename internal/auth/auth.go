package auth

import (
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the session credential validity window.
const DefaultTTL = 15 * 24 * time.Hour

var (
	// ErrMissingCredential means no bearer token was supplied.
	ErrMissingCredential = errors.New("missing bearer credential")

	// ErrMalformedCredential covers undecodable tokens and signature mismatches.
	ErrMalformedCredential = errors.New("credential malformed or signature invalid")

	// ErrCredentialExpired means the token's validity window passed.
	ErrCredentialExpired = errors.New("credential expired")
)

// Claims binds a session token to a user and the device it was issued to.
type Claims struct {
	DeviceID string `json:"device_id,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and validates HS256 session credentials. Tokens are
// stateless: there is no server-side revocation, expiry is the only exit.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds a credential authority with the given signing secret.
func NewService(secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock overrides the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue produces a signed token embedding the user id, issue time, and expiry.
func (s *Service) Issue(userID, deviceID string) (string, error) {
	issued := s.now()
	claims := Claims{
		DeviceID: deviceID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate checks the token's signature and expiry and returns the
// embedded user id. It fails closed: anything other than a well-formed,
// correctly signed, unexpired token is rejected.
func (s *Service) Validate(token string) (string, error) {
	if token == "" {
		return "", ErrMissingCredential
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrMalformedCredential
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrCredentialExpired
		}
		return "", ErrMalformedCredential
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrMalformedCredential
	}
	return claims.Subject, nil
}

// FromHeader extracts the bearer token from an Authorization header value.
func FromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", ErrMalformedCredential
	}
	return strings.TrimSpace(header[len("bearer "):]), nil
}
