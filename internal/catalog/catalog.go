// Package catalog holds pure helpers that shape offer lists for display.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/five82/sixcities/internal/rental"
)

// DefaultCity is selected before the user picks one.
var DefaultCity = rental.City{
	Name:     "Amsterdam",
	Location: rental.Location{Latitude: 52.37454, Longitude: 4.897976, Zoom: 13},
}

// CityNames is the fixed tab order of the cities the service covers.
var CityNames = []string{"Paris", "Cologne", "Brussels", "Amsterdam", "Hamburg", "Dusseldorf"}

// Display limits on the offer page.
const (
	MaxNearbyOffers = 3
	MaxReviews      = 10
	MaxImages       = 6
)

// ExtractCities maps city name to City. The first offer seen for a name fixes
// that city's location; later offers with the same name do not override it.
func ExtractCities(offers []rental.Offer) map[string]rental.City {
	cities := make(map[string]rental.City)
	for _, offer := range offers {
		if _, ok := cities[offer.City.Name]; ok {
			continue
		}
		cities[offer.City.Name] = offer.City
	}
	return cities
}

// GroupOffersByCity partitions offers by city name, keeping input order inside each group.
func GroupOffersByCity(offers []rental.Offer) map[string][]rental.Offer {
	grouped := make(map[string][]rental.Offer)
	for _, offer := range offers {
		grouped[offer.City.Name] = append(grouped[offer.City.Name], offer)
	}
	return grouped
}

// CityByName resolves a city from the known set, falling back to a city with
// only the name set.
func CityByName(cities map[string]rental.City, name string) rental.City {
	if city, ok := cities[name]; ok {
		return city
	}
	if strings.EqualFold(name, DefaultCity.Name) {
		return DefaultCity
	}
	return rental.City{Name: name}
}

// SortCriterion selects the ordering of an offer list.
type SortCriterion string

const (
	SortPopular    SortCriterion = "popular"
	SortPriceAsc   SortCriterion = "price-ascending"
	SortPriceDesc  SortCriterion = "price-descending"
	SortRatingDesc SortCriterion = "rating-descending"
)

// SortCriteria lists every criterion in menu order.
var SortCriteria = []SortCriterion{SortPopular, SortPriceAsc, SortPriceDesc, SortRatingDesc}

// Label returns the menu text for the criterion.
func (c SortCriterion) Label() string {
	switch c {
	case SortPriceAsc:
		return "Price: low to high"
	case SortPriceDesc:
		return "Price: high to low"
	case SortRatingDesc:
		return "Top rated first"
	default:
		return "Popular"
	}
}

// Next returns the criterion after c in menu order, wrapping around.
func (c SortCriterion) Next() SortCriterion {
	i := slices.Index(SortCriteria, c)
	return SortCriteria[(i+1)%len(SortCriteria)]
}

// ParseSortCriterion maps a stored value back to a criterion; unknown values are popular.
func ParseSortCriterion(value string) SortCriterion {
	c := SortCriterion(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(SortCriteria, c) {
		return c
	}
	return SortPopular
}

// SortOffers returns a sorted copy of offers. Ties keep their input order.
func SortOffers(offers []rental.Offer, criterion SortCriterion) []rental.Offer {
	sorted := slices.Clone(offers)
	switch criterion {
	case SortPriceAsc:
		slices.SortStableFunc(sorted, func(a, b rental.Offer) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(sorted, func(a, b rental.Offer) int { return cmp.Compare(b.Price, a.Price) })
	case SortRatingDesc:
		slices.SortStableFunc(sorted, func(a, b rental.Offer) int { return cmp.Compare(b.Rating, a.Rating) })
	}
	return sorted
}

// LatestReviews returns at most limit reviews, newest first.
func LatestReviews(reviews []rental.Feedback, limit int) []rental.Feedback {
	sorted := slices.Clone(reviews)
	slices.SortStableFunc(sorted, func(a, b rental.Feedback) int {
		return b.ParsedDate().Compare(a.ParsedDate())
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Limit truncates offers to at most n entries without copying.
func Limit(offers []rental.Offer, n int) []rental.Offer {
	if n >= 0 && len(offers) > n {
		return offers[:n]
	}
	return offers
}

