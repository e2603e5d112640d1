package security

import (
	"errors"
	"fmt"
)

// FailureKind classifies why authentication of a request did not succeed.
type FailureKind string

const (
	FailureNone                      FailureKind = ""
	FailureMalformedToken            FailureKind = "malformed_token"
	FailureInvalidSignature          FailureKind = "invalid_signature"
	FailureExpired                   FailureKind = "expired"
	FailureUnsupportedTokenStructure FailureKind = "unsupported_token_structure"
	FailurePrincipalNotFound         FailureKind = "principal_not_found"
	FailureMissingOrMalformedHeader  FailureKind = "missing_or_malformed_header"
	FailurePrincipalLookup           FailureKind = "principal_lookup_failed"
)

var (
	ErrMalformedToken            = errors.New("malformed token")
	ErrInvalidSignature          = errors.New("invalid token signature")
	ErrExpired                   = errors.New("token expired")
	ErrUnsupportedTokenStructure = errors.New("unsupported token structure")
	ErrPrincipalNotFound         = errors.New("principal not found")
	ErrMissingOrMalformedHeader  = errors.New("missing or malformed authorization header")
	ErrPrincipalLookup           = errors.New("principal lookup failed")
)

var sentinels = map[FailureKind]error{
	FailureMalformedToken:            ErrMalformedToken,
	FailureInvalidSignature:          ErrInvalidSignature,
	FailureExpired:                   ErrExpired,
	FailureUnsupportedTokenStructure: ErrUnsupportedTokenStructure,
	FailurePrincipalNotFound:         ErrPrincipalNotFound,
	FailureMissingOrMalformedHeader:  ErrMissingOrMalformedHeader,
	FailurePrincipalLookup:           ErrPrincipalLookup,
}

// Failure is an authentication error tagged with its FailureKind.
// errors.Is matches both the kind's sentinel and the underlying cause.
type Failure struct {
	Kind FailureKind
	Err  error
}

func newFailure(kind FailureKind, cause error) *Failure {
	return &Failure{Kind: kind, Err: cause}
}

// Error implements the error interface
func (f *Failure) Error() string {
	msg := string(f.Kind)
	if s, ok := sentinels[f.Kind]; ok {
		msg = s.Error()
	}
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

// Unwrap exposes the sentinel for the kind and the underlying cause.
func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinels[f.Kind]; ok {
		errs = append(errs, s)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// KindOf returns the FailureKind carried by err, or FailureNone when err is
// nil. Errors that are not a *Failure are reported as malformed tokens.
func KindOf(err error) FailureKind {
	if err == nil {
		return FailureNone
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return FailureMalformedToken
}
