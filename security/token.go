package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleDelimiter joins authorities into the flat roles claim.
const RoleDelimiter = ","

var (
	errUnexpectedSigningMethod = errors.New("unexpected signing method")
	errInvalidSubject          = errors.New("subject is not a valid identifier")
)

// SigningConfig is the shared secret and validity window used for every token.
// It is loaded once at start-up and only read afterwards.
type SigningConfig struct {
	Secret   []byte
	Validity time.Duration
}

// TokenClaims is the claim set carried by a token.
type TokenClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Roles    string `json:"roles"`
}

// Authorities splits the roles claim back into authority strings.
func (c *TokenClaims) Authorities() []string {
	if c.Roles == "" {
		return nil
	}
	return strings.Split(c.Roles, RoleDelimiter)
}

// Codec issues and parses HS512 signed identity tokens.
type Codec struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithClock replaces time.Now as the codec's time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec creates a Codec for cfg.
func NewCodec(cfg SigningConfig, opts ...CodecOption) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("signing secret is required")
	}
	if cfg.Validity <= 0 {
		return nil, errors.New("token validity must be positive")
	}

	c := &Codec{
		secret:   append([]byte(nil), cfg.Secret...),
		validity: cfg.Validity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Validity returns the configured validity window.
func (c *Codec) Validity() time.Duration {
	return c.validity
}

// Issue signs a token for p. The subject is p's identifier, the roles claim is
// p's authorities joined by RoleDelimiter. Authorities containing the
// delimiter are rejected.
func (c *Codec) Issue(p *Principal) (string, error) {
	if p == nil {
		return "", errors.New("principal is required")
	}
	if p.ID == uuid.Nil {
		return "", errors.New("principal identifier is required")
	}
	for _, a := range p.Authorities {
		if a == "" || strings.Contains(a, RoleDelimiter) {
			return "", fmt.Errorf("authority %q cannot be encoded in the roles claim", a)
		}
	}

	// NumericDate has second precision; truncating here keeps exp - iat exact.
	issuedAt := c.now().Truncate(time.Second)

	claims := &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.validity)),
		},
		Username: p.Username,
		Roles:    strings.Join(p.Authorities, RoleDelimiter),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies structure, signature and expiration of token and returns its
// claims. Errors are *Failure values tagged with the failure kind.
func (c *Codec) Parse(token string) (*TokenClaims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newFailure(FailureMalformedToken, errors.New("token is empty"))
	}

	parser := jwt.NewParser(
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	claims := &TokenClaims{}
	_, err := parser.ParseWithClaims(token, claims, c.keyFunc)
	if err != nil {
		return nil, classifyParseError(err)
	}

	if claims.Subject == "" {
		return nil, newFailure(FailureUnsupportedTokenStructure, errors.New("subject claim is missing"))
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, newFailure(FailureUnsupportedTokenStructure, errInvalidSubject)
	}

	return claims, nil
}

// ExtractSubject verifies token and returns its subject claim.
func (c *Codec) ExtractSubject(token string) (string, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (any, error) {
	if t.Method == nil || t.Method.Alg() != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("%w: %v", errUnexpectedSigningMethod, t.Header["alg"])
	}
	return c.secret, nil
}

func classifyParseError(err error) *Failure {
	switch {
	case errors.Is(err, errUnexpectedSigningMethod):
		return newFailure(FailureUnsupportedTokenStructure, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return newFailure(FailureExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return newFailure(FailureInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return newFailure(FailureMalformedToken, err)
	default:
		return newFailure(FailureUnsupportedTokenStructure, err)
	}
}
