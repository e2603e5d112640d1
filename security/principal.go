package security

import (
	"github.com/google/uuid"
)

// Principal is an authenticated identity and the authorities granted to it.
// It is built once per request by the Resolver and must not be mutated.
type Principal struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Authorities []string  `json:"authorities"`

	credential string
}

// NewPrincipal builds a Principal. The authorities slice is copied so the
// caller's slice can be reused; order is preserved.
func NewPrincipal(id uuid.UUID, username string, authorities []string, credential string) *Principal {
	return &Principal{
		ID:          id,
		Username:    username,
		Authorities: append([]string(nil), authorities...),
		credential:  credential,
	}
}

// Credential returns the stored credential hash. It is never written into a
// token or serialized.
func (p *Principal) Credential() string {
	return p.credential
}

// HasAuthority reports whether the principal was granted authority.
func (p *Principal) HasAuthority(authority string) bool {
	for _, a := range p.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// HasAnyAuthority reports whether the principal holds at least one of authorities.
func (p *Principal) HasAnyAuthority(authorities ...string) bool {
	for _, a := range authorities {
		if p.HasAuthority(a) {
			return true
		}
	}
	return false
}
