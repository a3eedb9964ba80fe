// Package gateway wraps every remote six-cities call as an operation with
// three phases: requested, succeeded and failed.
//
// A Gateway is built over an injected rental.API so tests can substitute a
// fake. Each method either returns the typed payload or a *Rejection whose
// Reason is short enough to show to the user. Login reasons come from the
// first validation message in the server's error body when one is present.
//
// Phases are logged through slog and passed to an optional Observer, which
// the terminal UI uses to drive its activity log. Nothing is retried.
package gateway
