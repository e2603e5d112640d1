// Package security is the authentication core of the service.
//
// It issues and verifies HS512-signed bearer tokens (Codec, Validator),
// resolves a token's subject into a Principal through the user store
// (Resolver), and carries the resolved identity through a request as a
// SecurityContext stored on the request's context.Context.
//
// Nothing in this package writes HTTP responses. Failures are classified
// with a FailureKind so callers can log them and degrade to anonymous.
package security
