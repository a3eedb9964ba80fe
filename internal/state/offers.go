package state

import (
	"maps"
	"slices"
	"sync"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/rental"
)

// OffersSnapshot is an independent copy of the offers store.
type OffersSnapshot struct {
	CurrentCity       rental.City
	Cities            map[string]rental.City
	OffersByCity      map[string][]rental.Offer
	CurrentCityOffers []rental.Offer
	ActiveOfferID     string

	// Offers is the load state of the offers-by-city cache. Error holds the
	// reason of the last failed load and survives until the next success.
	Offers Status
	Error  string

	CurrentOffer     Resource[rental.OfferDetails]
	Nearby           Resource[[]rental.Offer]
	Reviews          Resource[[]rental.Feedback]
	ReviewSubmitting bool
	Favorites        Resource[[]rental.Offer]
}

// IsOffersLoading reports whether the offers list is being fetched.
func (s OffersSnapshot) IsOffersLoading() bool { return s.Offers == Loading }

// IsOfferDetailLoading reports whether the current offer is being fetched.
func (s OffersSnapshot) IsOfferDetailLoading() bool { return s.CurrentOffer.IsLoading() }

// IsReviewsLoading reports whether reviews are being fetched.
func (s OffersSnapshot) IsReviewsLoading() bool { return s.Reviews.IsLoading() }

// IsFavoritesLoading reports whether favorites are being fetched.
func (s OffersSnapshot) IsFavoritesLoading() bool { return s.Favorites.IsLoading() }

// OfferNotFound reports that the offer page has nothing to show: the detail
// request finished without a result.
func (s OffersSnapshot) OfferNotFound() bool { return s.CurrentOffer.Status == Failed }

// OffersStore is the single source of truth for offer-related view state.
// Every method is one atomic transition; readers take snapshots.
type OffersStore struct {
	mu  sync.RWMutex
	seq sequencer

	currentCity  rental.City
	cities       map[string]rental.City
	byCity       map[string][]rental.Offer
	cityOffers   []rental.Offer
	activeID     string
	offersStatus Status
	offersErr    string

	current          Resource[rental.OfferDetails]
	nearby           Resource[[]rental.Offer]
	reviews          Resource[[]rental.Feedback]
	reviewSubmitting bool
	favorites        Resource[[]rental.Offer]

	// toggleSeq is the latest toggle issued per offer id.
	toggleSeq map[string]uint64
	// togglesDuringLoad holds toggles applied while a favorites load was in
	// flight; the load's result is patched with them.
	togglesDuringLoad []rental.OfferDetails
}

// NewOffersStore returns an empty store with city selected.
func NewOffersStore(city rental.City) *OffersStore {
	return &OffersStore{
		currentCity: city,
		cities:      map[string]rental.City{},
		byCity:      map[string][]rental.Offer{},
	}
}

// Snapshot returns a deep copy of the store.
func (s *OffersStore) Snapshot() OffersSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCity := make(map[string][]rental.Offer, len(s.byCity))
	for name, list := range s.byCity {
		byCity[name] = slices.Clone(list)
	}
	current := s.current
	current.Value = cloneDetails(s.current.Value)
	nearby := s.nearby
	nearby.Value = slices.Clone(s.nearby.Value)
	reviews := s.reviews
	reviews.Value = slices.Clone(s.reviews.Value)
	favorites := s.favorites
	favorites.Value = slices.Clone(s.favorites.Value)

	return OffersSnapshot{
		CurrentCity:       s.currentCity,
		Cities:            maps.Clone(s.cities),
		OffersByCity:      byCity,
		CurrentCityOffers: slices.Clone(s.cityOffers),
		ActiveOfferID:     s.activeID,
		Offers:            s.offersStatus,
		Error:             s.offersErr,
		CurrentOffer:      current,
		Nearby:            nearby,
		Reviews:           reviews,
		ReviewSubmitting:  s.reviewSubmitting,
		Favorites:         favorites,
	}
}

// SelectCity makes city current and shows its cached offers, or none.
func (s *OffersStore) SelectCity(city rental.City) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentCity = city
	s.cityOffers = slices.Clone(s.byCity[city.Name])
}

// SortCurrentCity reorders the displayed list from the current city's cached
// offers. The cache keeps server order, so SortPopular restores it.
func (s *OffersStore) SortCurrentCity(criterion catalog.SortCriterion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cityOffers = catalog.SortOffers(s.byCity[s.currentCity.Name], criterion)
}

// SetActiveOffer marks the hovered offer; "" clears it.
func (s *OffersStore) SetActiveOffer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.activeID = id
}

// BeginOffers records that the offers list is being fetched.
func (s *OffersStore) BeginOffers() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offersStatus = Loading
	return s.seq.next(slotOffers, "")
}

// CompleteOffers replaces the cache with offers grouped by city and
// recomputes the current city's list. It reports false for a stale ticket.
func (s *OffersStore) CompleteOffers(t Ticket, offers []rental.Offer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.byCity = catalog.GroupOffersByCity(offers)
	s.cities = catalog.ExtractCities(offers)
	if c, ok := s.cities[s.currentCity.Name]; ok {
		s.currentCity = c
	}
	s.cityOffers = slices.Clone(s.byCity[s.currentCity.Name])
	s.offersStatus = Loaded
	s.offersErr = ""
	return true
}

// FailOffers keeps the cached offers and records reason.
func (s *OffersStore) FailOffers(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.offersStatus = Failed
	s.offersErr = reason
	return true
}

// BeginOfferDetails clears the current offer and marks it loading.
func (s *OffersStore) BeginOfferDetails(offerID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Resource[rental.OfferDetails]{Status: Loading, Key: offerID}
	return s.seq.next(slotOfferDetails, offerID)
}

// CompleteOfferDetails stores the fetched offer.
func (s *OffersStore) CompleteOfferDetails(t Ticket, details rental.OfferDetails) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.current = Resource[rental.OfferDetails]{Status: Loaded, Value: cloneDetails(details), Key: t.key}
	return true
}

// FailOfferDetails leaves the current offer empty.
func (s *OffersStore) FailOfferDetails(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.current = Resource[rental.OfferDetails]{Status: Failed, Reason: reason, Key: t.key}
	return true
}

// BeginNearby marks nearby offers loading. The previous list stays visible.
func (s *OffersStore) BeginNearby(offerID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nearby.Status = Loading
	s.nearby.Reason = ""
	return s.seq.next(slotNearby, offerID)
}

// CompleteNearby replaces the nearby list wholesale.
func (s *OffersStore) CompleteNearby(t Ticket, offers []rental.Offer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.nearby = Resource[[]rental.Offer]{Status: Loaded, Value: slices.Clone(offers), Key: t.key}
	return true
}

// FailNearby keeps the previous, now stale, nearby list.
func (s *OffersStore) FailNearby(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.nearby.Status = Failed
	s.nearby.Reason = reason
	return true
}

// BeginReviews marks reviews loading.
func (s *OffersStore) BeginReviews(offerID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviews.Status = Loading
	s.reviews.Reason = ""
	if s.reviews.Key != offerID {
		s.reviews.Value = nil
		s.reviews.Key = offerID
	}
	return s.seq.next(slotReviews, offerID)
}

// CompleteReviews replaces the review list.
func (s *OffersStore) CompleteReviews(t Ticket, reviews []rental.Feedback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.reviews = Resource[[]rental.Feedback]{Status: Loaded, Value: slices.Clone(reviews), Key: t.key}
	return true
}

// FailReviews clears the review list; consumers see the same empty list as
// for an offer without reviews.
func (s *OffersStore) FailReviews(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.reviews = Resource[[]rental.Feedback]{Status: Failed, Reason: reason, Key: t.key}
	return true
}

// BeginReviewSubmit disables the review form.
func (s *OffersStore) BeginReviewSubmit(offerID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reviewSubmitting = true
	return s.seq.next(slotReviewSubmit, offerID)
}

// CompleteReviewSubmit appends the stored review when the review list still
// belongs to the reviewed offer.
func (s *OffersStore) CompleteReviewSubmit(t Ticket, review rental.Feedback) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.reviewSubmitting = false
	if s.reviews.Key == t.key {
		s.reviews.Value = append(s.reviews.Value, review)
	}
	return true
}

// FailReviewSubmit re-enables the review form and leaves reviews untouched.
func (s *OffersStore) FailReviewSubmit(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.reviewSubmitting = false
	return true
}

// BeginFavorites marks favorites loading.
func (s *OffersStore) BeginFavorites() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites.Status = Loading
	s.favorites.Reason = ""
	s.togglesDuringLoad = nil
	return s.seq.next(slotFavorites, "")
}

// CompleteFavorites replaces favorites with the server's list.
func (s *OffersStore) CompleteFavorites(t Ticket, offers []rental.Offer) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.favorites = Resource[[]rental.Offer]{Status: Loaded, Value: slices.Clone(offers)}
	for _, updated := range s.togglesDuringLoad {
		s.applyToFavorites(updated)
	}
	s.togglesDuringLoad = nil
	return true
}

// FailFavorites keeps the previous favorites list.
func (s *OffersStore) FailFavorites(t Ticket, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) {
		return false
	}
	s.favorites.Status = Failed
	s.favorites.Reason = reason
	s.togglesDuringLoad = nil
	return true
}

// BeginFavoriteToggle returns a ticket valid until the next logout or the next
// toggle of the same offer. Toggles of different offers may overlap; all of
// them apply.
func (s *OffersStore) BeginFavoriteToggle(offerID string) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.toggleSeq == nil {
		s.toggleSeq = make(map[string]uint64)
	}
	s.toggleSeq[offerID]++
	t := s.seq.epoch(slotFavoriteToggle, offerID)
	t.sub = s.toggleSeq[offerID]
	return t
}

// ApplyFavorite reconciles the updated offer into every list it appears in:
// the open offer, the offers-by-city cache, the current city list, the nearby
// list and the favorites list. The favorites list never holds an id twice.
func (s *OffersStore) ApplyFavorite(t Ticket, updated rental.OfferDetails) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.seq.current(t) || s.toggleSeq[t.key] != t.sub {
		return false
	}
	id, fav := updated.ID, updated.IsFavorite

	if s.current.Status == Loaded && s.current.Value.ID == id {
		s.current.Value.IsFavorite = fav
	}
	for _, list := range s.byCity {
		setFavorite(list, id, fav)
	}
	setFavorite(s.cityOffers, id, fav)
	setFavorite(s.nearby.Value, id, fav)

	s.applyToFavorites(updated)
	if s.favorites.Status == Loading {
		s.togglesDuringLoad = append(s.togglesDuringLoad, cloneDetails(updated))
	}
	return true
}

// applyToFavorites adds, replaces or removes updated in the favorites list.
func (s *OffersStore) applyToFavorites(updated rental.OfferDetails) {
	id := updated.ID
	idx := slices.IndexFunc(s.favorites.Value, func(o rental.Offer) bool { return o.ID == id })
	switch {
	case updated.IsFavorite && idx >= 0:
		s.favorites.Value[idx] = updated.Summary()
	case updated.IsFavorite:
		s.favorites.Value = append(s.favorites.Value, updated.Summary())
	default:
		s.favorites.Value = slices.DeleteFunc(s.favorites.Value, func(o rental.Offer) bool { return o.ID == id })
	}
}

// OnLogout drops every favorite flag and the favorites list. Outstanding
// favorite loads, toggles and review submissions are discarded.
func (s *OffersStore) OnLogout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.invalidate(slotFavorites)
	s.seq.invalidate(slotFavoriteToggle)
	s.seq.invalidate(slotReviewSubmit)

	if s.current.Status == Loaded {
		s.current.Value.IsFavorite = false
	}
	clearFavorites(s.nearby.Value)
	for _, list := range s.byCity {
		clearFavorites(list)
	}
	clearFavorites(s.cityOffers)

	s.favorites = Resource[[]rental.Offer]{}
	s.togglesDuringLoad = nil
	s.reviewSubmitting = false
}

func setFavorite(offers []rental.Offer, id string, fav bool) {
	for i := range offers {
		if offers[i].ID == id {
			offers[i].IsFavorite = fav
		}
	}
}

func clearFavorites(offers []rental.Offer) {
	for i := range offers {
		offers[i].IsFavorite = false
	}
}

func cloneDetails(d rental.OfferDetails) rental.OfferDetails {
	d.Goods = slices.Clone(d.Goods)
	d.Images = slices.Clone(d.Images)
	return d
}
