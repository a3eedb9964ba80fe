// Package rental provides an HTTP client for the six-cities rental API.
//
// # Overview
//
// The package defines the wire types (Offer, OfferDetails, Feedback, UserAuth)
// and a Client that performs every remote call the application needs. The
// Client is the only place that knows about URLs, headers and status codes;
// everything above it talks to the API interface.
//
// # Endpoints
//
//   - GET    /offers                  → []Offer
//   - GET    /offers/{id}             → OfferDetails
//   - GET    /offers/{id}/nearby      → []Offer
//   - GET    /comments/{id}           → []Feedback
//   - POST   /comments/{id}           → Feedback
//   - GET    /login                   → UserAuth (session check)
//   - POST   /login                   → UserAuth
//   - DELETE /logout                  → success iff 204
//   - GET    /favorite                → []Offer
//   - POST   /favorite/{id}/{0|1}     → OfferDetails
//
// # Request Handling
//
// Every request:
//   - carries the persisted token in the X-Token header when a TokenSource is set
//   - carries a fresh X-Request-ID (uuid) that also appears in the debug log
//   - uses the caller's context for cancellation
//
// A 401 response clears the TokenSource, so later requests go out
// unauthenticated until the user logs in again.
//
// # Error Handling
//
// Status codes >= 400 return *APIError with the decoded validation body.
// errors.Is(err, ErrUnauthorized) matches 401. Transport and decode failures
// are wrapped with "execute request" and "decode response".
//
// The Client never retries; callers decide when to re-issue a request.
package rental
