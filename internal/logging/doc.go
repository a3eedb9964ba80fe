// Package logging sets up structured logging for the six-cities client.
//
// Records are written as JSON by log/slog to a log file and, when an address
// is configured, mirrored to a Logstash TCP input. The mirror drops records
// while the collector is unreachable. The terminal owns stdout while the UI
// runs, so nothing is logged there.
//
// Tail and ParseEntry read the log file back for the activity view.
package logging
