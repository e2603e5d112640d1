package security

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// UserRecord is the slice of a stored user the authentication core needs.
type UserRecord struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	Roles        []string
}

// UserStore is the read side of the user store. A missing record is reported
// with found == false and a nil error.
type UserStore interface {
	FindByIdentity(ctx context.Context, id uuid.UUID) (*UserRecord, bool, error)
	FindByUsername(ctx context.Context, username string) (*UserRecord, bool, error)
}

// Resolver turns a trusted identifier into a Principal.
type Resolver struct {
	store UserStore
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store UserStore) *Resolver {
	return &Resolver{store: store}
}

// ResolveByID loads the principal identified by id.
func (r *Resolver) ResolveByID(ctx context.Context, id uuid.UUID) (*Principal, error) {
	rec, found, err := r.store.FindByIdentity(ctx, id)
	return r.build(rec, found, err, fmt.Sprintf("id %s", id))
}

// ResolveByUsername loads the principal with the given username. The result
// has the same shape as ResolveByID.
func (r *Resolver) ResolveByUsername(ctx context.Context, username string) (*Principal, error) {
	rec, found, err := r.store.FindByUsername(ctx, username)
	return r.build(rec, found, err, fmt.Sprintf("username %q", username))
}

func (r *Resolver) build(rec *UserRecord, found bool, err error, key string) (*Principal, error) {
	if err != nil {
		return nil, newFailure(FailurePrincipalLookup, err)
	}
	if !found || rec == nil {
		return nil, newFailure(FailurePrincipalNotFound, errors.New("no user with "+key))
	}
	// Roles map 1:1 onto authorities; nothing is filtered or renamed.
	return NewPrincipal(rec.ID, rec.Username, rec.Roles, rec.PasswordHash), nil
}
