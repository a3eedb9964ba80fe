package state

// Status is the load state of one slice of store data.
type Status int

const (
	// NotRequested means no request has been issued for the slice yet.
	NotRequested Status = iota
	// Loading means a request is in flight.
	Loading
	// Loaded means the last request succeeded and Value holds its result.
	Loaded
	// Failed means the last request was rejected; Reason says why.
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "not-requested"
	}
}

// Resource pairs a value with the state of the request that produced it.
// Key names the entity the value belongs to (an offer id) when the slice is
// scoped to one offer.
type Resource[T any] struct {
	Status Status
	Value  T
	Reason string
	Key    string
}

// IsLoading reports whether a request is in flight.
func (r Resource[T]) IsLoading() bool {
	return r.Status == Loading
}

// Ready returns the value when the last request succeeded.
func (r Resource[T]) Ready() (T, bool) {
	if r.Status != Loaded {
		var zero T
		return zero, false
	}
	return r.Value, true
}

type slot int

const (
	slotOffers slot = iota
	slotOfferDetails
	slotNearby
	slotReviews
	slotReviewSubmit
	slotFavorites
	slotFavoriteToggle
	slotSession
	slotCount
)

// Ticket identifies one issued request. A completion carrying a ticket that
// is no longer current is discarded, so a late response never overwrites
// state belonging to a newer request.
type Ticket struct {
	slot slot
	seq  uint64
	key  string
	// sub orders requests that share an epoch but target the same key.
	sub uint64
}

// Key returns the entity id the request was issued for.
func (t Ticket) Key() string {
	return t.key
}

type sequencer [slotCount]uint64

func (s *sequencer) next(sl slot, key string) Ticket {
	s[sl]++
	return Ticket{slot: sl, seq: s[sl], key: key}
}

func (s *sequencer) current(t Ticket) bool {
	return t.seq != 0 && s[t.slot] == t.seq
}

func (s *sequencer) invalidate(sl slot) {
	s[sl]++
}

// epoch returns a ticket for the slot's current generation without starting a
// new one. Several requests can hold the same epoch; invalidate ends all of them.
func (s *sequencer) epoch(sl slot, key string) Ticket {
	if s[sl] == 0 {
		s[sl] = 1
	}
	return Ticket{slot: sl, seq: s[sl], key: key}
}
