package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ead/authuser/internal/observability"
	"github.com/ead/authuser/security"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// sessionCookieName is the cookie whose value is recorded as the session id
const sessionCookieName = "session"

const bearerScheme = "bearer"

// TokenValidator is the boolean gate run before any principal lookup
type TokenValidator interface {
	IsValid(token string) bool
}

type failureChecker interface {
	Check(token string) security.FailureKind
}

var (
	errTokenRejected = errors.New("token rejected by validator")
	errFilterPanic   = errors.New("panic during authentication")
)

// SubjectExtractor returns the verified subject of a token
type SubjectExtractor interface {
	ExtractSubject(token string) (string, error)
}

// PrincipalResolver loads the principal for a subject identifier
type PrincipalResolver interface {
	ResolveByID(ctx context.Context, id uuid.UUID) (*security.Principal, error)
}

// authResult is the outcome of authenticating one request.
// principal is set on success, failure is set on every other path except
// the anonymous one where both are empty.
type authResult struct {
	principal *security.Principal
	failure   security.FailureKind
	err       error
}

// AuthenticationFilter binds the principal of a bearer token to the request
// context. It never rejects a request: on any failure the request continues
// as anonymous and authorization decides what it may reach.
type AuthenticationFilter struct {
	validator TokenValidator
	subjects  SubjectExtractor
	resolver  PrincipalResolver
	logger    *zap.Logger
}

// NewAuthenticationFilter creates a new AuthenticationFilter
func NewAuthenticationFilter(
	validator TokenValidator,
	subjects SubjectExtractor,
	resolver PrincipalResolver,
	logger *zap.Logger,
) *AuthenticationFilter {
	return &AuthenticationFilter{
		validator: validator,
		subjects:  subjects,
		resolver:  resolver,
		logger:    logger,
	}
}

// Authenticate is the per-request filter. The next handler is always called.
func (f *AuthenticationFilter) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := observability.ForRequest(ctx, f.logger)

		result := f.authenticate(r)
		switch {
		case result.principal != nil:
			sc := security.NewSecurityContext(result.principal, r.RemoteAddr, sessionID(r))
			ctx = security.WithSecurityContext(ctx, sc)
			logger.Debug("request authenticated",
				zap.String("user_id", result.principal.ID.String()),
				zap.Strings("authorities", result.principal.Authorities))
		case result.failure == security.FailureMissingOrMalformedHeader:
			logger.Debug("authorization header ignored",
				zap.String("failure", string(result.failure)))
		case result.failure != security.FailureNone:
			logger.Warn("authentication failed, continuing as anonymous",
				zap.String("failure", string(result.failure)),
				zap.Error(result.err))
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// check runs the validator, using the failure kind when the validator
// reports one.
func (f *AuthenticationFilter) check(token string) security.FailureKind {
	if kc, ok := f.validator.(failureChecker); ok {
		return kc.Check(token)
	}
	if f.validator.IsValid(token) {
		return security.FailureNone
	}
	return security.FailureMalformedToken
}

func (f *AuthenticationFilter) authenticate(r *http.Request) (result authResult) {
	defer func() {
		if rec := recover(); rec != nil {
			result = authResult{
				failure: security.FailureUnsupportedTokenStructure,
				err:     errFilterPanic,
			}
		}
	}()

	token, present, ok := bearerToken(r)
	if !present {
		return authResult{}
	}
	if !ok {
		return authResult{
			failure: security.FailureMissingOrMalformedHeader,
			err:     security.ErrMissingOrMalformedHeader,
		}
	}

	if kind := f.check(token); kind != security.FailureNone {
		return authResult{failure: kind, err: errTokenRejected}
	}

	subject, err := f.subjects.ExtractSubject(token)
	if err != nil {
		return authResult{failure: security.KindOf(err), err: err}
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		return authResult{failure: security.FailureUnsupportedTokenStructure, err: err}
	}

	principal, err := f.resolver.ResolveByID(r.Context(), id)
	if err != nil {
		kind := security.KindOf(err)
		if kind == security.FailureMalformedToken {
			kind = security.FailurePrincipalLookup
		}
		return authResult{failure: kind, err: err}
	}
	if principal == nil {
		return authResult{failure: security.FailurePrincipalNotFound, err: security.ErrPrincipalNotFound}
	}

	return authResult{principal: principal}
}

// bearerToken reads the Authorization header. present is false when the
// header is absent; ok is false when it is present but is not a non-empty
// bearer credential.
func bearerToken(r *http.Request) (token string, present, ok bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false, false
	}

	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", true, false
	}

	token = strings.TrimSpace(value)
	if token == "" {
		return "", true, false
	}
	return token, true, true
}

func sessionID(r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
