// Package observability builds the service's structured logger.
//
// Logs are emitted through zap. Request-scoped fields such as the request id
// assigned by the router are attached with ForRequest so every line written
// while handling a request can be correlated.
package observability
