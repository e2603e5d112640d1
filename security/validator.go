package security

import (
	"go.uber.org/zap"
)

// TokenParser parses and fully verifies a token.
type TokenParser interface {
	Parse(token string) (*TokenClaims, error)
}

// Validator is a boolean gate over token trustworthiness. It never returns an
// error: every failure is converted to false and logged with its kind.
type Validator struct {
	parser TokenParser
	logger *zap.Logger
}

// NewValidator creates a Validator backed by parser.
func NewValidator(parser TokenParser, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{
		parser: parser,
		logger: logger,
	}
}

// IsValid returns true only when token parses, its signature matches and it
// has not expired.
func (v *Validator) IsValid(token string) bool {
	return v.Check(token) == FailureNone
}

// Check returns the failure kind for token, or FailureNone when it is valid.
func (v *Validator) Check(token string) FailureKind {
	if _, err := v.parser.Parse(token); err != nil {
		kind := KindOf(err)
		// Never log the raw token.
		v.logger.Warn("token rejected",
			zap.String("failure", string(kind)),
			zap.Error(err))
		return kind
	}
	return FailureNone
}
