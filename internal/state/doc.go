// Package state holds the in-memory view state of the six-cities client.
//
// # Overview
//
// Two stores live here. OffersStore owns everything offer-related: the
// offers-by-city cache, the selected city and its list, the open offer with
// its nearby offers and reviews, and the favorites list. AuthStore tracks
// whether a user is signed in.
//
// Both are constructed explicitly and handed to their consumers; there is no
// package-level instance.
//
// # Transitions
//
// Every exported method is one atomic transition under a sync.RWMutex.
// Readers call Snapshot and get a deep copy they may keep or mutate freely.
//
// Asynchronous loads are split into Begin, Complete and Fail calls:
//
//	t := offers.BeginOffers()
//	list, err := api.FetchOffers(ctx)
//	if err != nil {
//		offers.FailOffers(t, "Failed to load offers")
//		return
//	}
//	offers.CompleteOffers(t, list)
//
// # Stale responses
//
// Begin returns a Ticket. Each request slot keeps a sequence number and a
// newer Begin on the same slot retires older tickets, so a late response is
// dropped instead of overwriting newer state. Complete and Fail report
// whether the ticket was still current.
//
// Favorite toggles use an epoch rather than a sequence: toggles of different
// offers may overlap and all of them apply, until a logout ends the epoch.
//
// # Loaded versus empty
//
// Per-request slices are wrapped in Resource, which carries a Status of
// NotRequested, Loading, Loaded or Failed. Consumers can tell a missing offer
// (Failed) from one that was never requested, and an offer with no reviews
// (Loaded, empty) from a failed review load (Failed, empty).
//
// # Favorites
//
// ApplyFavorite patches the favorite flag of one offer in every list that
// holds it and keeps the favorites list free of duplicate ids. Only the
// latest toggle of an offer applies. Toggles applied while the favorites list
// is loading are replayed onto the loaded list. OnLogout clears every flag
// and the favorites list.
package state
