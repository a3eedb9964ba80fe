// Package app wires the six-cities client together.
//
// # Components
//
//   - app.go: Run, the composition root
//   - actions.go: Actions, which run gateway operations and feed their
//     outcomes into the stores
//
// # Data Flow
//
//	Run()
//	  ├─> config.Load()        settings from TOML, .env and environment
//	  ├─> logging.New()        slog JSON to file, optional Logstash mirror
//	  ├─> session.Open()       persisted auth token
//	  ├─> rental.NewClient()   HTTP transport, attaches X-Token
//	  ├─> gateway.New()        tri-phase operations, events to the UI
//	  ├─> state.New*Store()    offers and auth stores
//	  └─> ui.Run()             Bubble Tea program (blocks)
//
// # Actions
//
// Every action follows the same shape: Begin on the store to get a ticket,
// call the gateway, then Complete or Fail with that ticket. A late response
// whose ticket has been superseded is dropped by the store.
//
// Favorite, review and favorites actions require a signed-in user and return
// ErrNotAuthorized otherwise. A 401 from any of them signs the user out
// locally and clears every favorite flag, as does a successful Logout.
//
// Nothing is retried. Refreshing is always a user decision.
package app
