package security

import (
	"context"
)

// SecurityContext holds the authenticated principal of a single request and
// the metadata of the request it arrived on.
type SecurityContext struct {
	Principal   *Principal
	Authorities []string
	RemoteAddr  string
	SessionID   string
}

// NewSecurityContext binds p to the given request metadata.
func NewSecurityContext(p *Principal, remoteAddr, sessionID string) *SecurityContext {
	return &SecurityContext{
		Principal:   p,
		Authorities: append([]string(nil), p.Authorities...),
		RemoteAddr:  remoteAddr,
		SessionID:   sessionID,
	}
}

// HasAuthority reports whether the bound principal was granted authority.
func (sc *SecurityContext) HasAuthority(authority string) bool {
	for _, a := range sc.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

type securityContextKey struct{}

// WithSecurityContext returns a copy of ctx carrying sc.
func WithSecurityContext(ctx context.Context, sc *SecurityContext) context.Context {
	return context.WithValue(ctx, securityContextKey{}, sc)
}

// FromContext returns the SecurityContext installed on ctx. The boolean is
// false for anonymous requests.
func FromContext(ctx context.Context) (*SecurityContext, bool) {
	sc, ok := ctx.Value(securityContextKey{}).(*SecurityContext)
	if !ok || sc == nil || sc.Principal == nil {
		return nil, false
	}
	return sc, true
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	sc, ok := FromContext(ctx)
	if !ok {
		return nil, false
	}
	return sc.Principal, true
}
