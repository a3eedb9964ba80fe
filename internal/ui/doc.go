// Package ui provides the terminal interface for browsing six-cities offers.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds read-only snapshots of the
// offers and auth stores; it never mutates them directly. Key presses become
// commands that call Actions on a goroutine, and every finished action or
// gateway event makes the model take fresh snapshots.
//
// # Views
//
//   - Offers: the offer list of the selected city, with city tabs and sorting
//   - Offer: one offer with its host, goods, latest reviews and nearby offers
//   - Favorites: the signed-in user's saved offers grouped by city
//   - Activity: gateway requests of this session and the tail of the log file
//
// Sign-in and review entry are modal forms. Both stay open with the user's
// input on a failed submit and show the reason inline.
//
// # Event Flow
//
//  1. Init checks the stored session, loads offers and subscribes to gateway events
//  2. Keys map to actions through keyMap; actions run as tea.Cmd
//  3. actionDoneMsg and eventMsg trigger a snapshot refresh
//  4. Theme, city and sort changes are saved to the preferences file
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context: ctx,
//		Actions: actions,
//		Events:  events,
//		LogPath: cfg.LogFile,
//	})
package ui
