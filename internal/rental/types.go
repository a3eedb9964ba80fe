package rental

import (
	"time"
	"unicode/utf8"
)

// Location is a point on the map with the zoom level the map should use for it.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Zoom      int     `json:"zoom"`
}

// City is a named group of offers with one canonical map location.
type City struct {
	Name     string   `json:"name"`
	Location Location `json:"location"`
}

// PlaceType is the kind of accommodation an offer describes.
type PlaceType string

const (
	PlaceApartment PlaceType = "apartment"
	PlaceRoom      PlaceType = "room"
	PlaceHouse     PlaceType = "house"
	PlaceHotel     PlaceType = "hotel"
)

// Label returns the capitalized display form of the place type.
func (p PlaceType) Label() string {
	switch p {
	case PlaceApartment:
		return "Apartment"
	case PlaceRoom:
		return "Room"
	case PlaceHouse:
		return "House"
	case PlaceHotel:
		return "Hotel"
	case "":
		return ""
	default:
		return string(p)
	}
}

// Offer mirrors the listing summary returned by /offers, /offers/{id}/nearby and /favorite.
type Offer struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Type         PlaceType `json:"type"`
	Price        float64   `json:"price"`
	City         City      `json:"city"`
	Location     Location  `json:"location"`
	IsFavorite   bool      `json:"isFavorite"`
	IsPremium    bool      `json:"isPremium"`
	Rating       float64   `json:"rating"`
	PreviewImage string    `json:"previewImage"`
}

// User is the public identity attached to reviews and hosts.
type User struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	IsPro     bool   `json:"isPro"`
}

// OfferDetails is the full listing record returned by /offers/{id} and /favorite/{id}/{status}.
type OfferDetails struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Type        PlaceType `json:"type"`
	Price       float64   `json:"price"`
	City        City      `json:"city"`
	Location    Location  `json:"location"`
	IsFavorite  bool      `json:"isFavorite"`
	IsPremium   bool      `json:"isPremium"`
	Rating      float64   `json:"rating"`
	Description string    `json:"description"`
	Bedrooms    int       `json:"bedrooms"`
	Goods       []string  `json:"goods"`
	Host        User      `json:"host"`
	Images      []string  `json:"images"`
	MaxAdults   int       `json:"maxAdults"`
}

// Summary builds the listing summary for the offer, using the first image as preview.
func (d OfferDetails) Summary() Offer {
	var preview string
	if len(d.Images) > 0 {
		preview = d.Images[0]
	}
	return Offer{
		ID:           d.ID,
		Title:        d.Title,
		Type:         d.Type,
		Price:        d.Price,
		City:         d.City,
		Location:     d.Location,
		IsFavorite:   d.IsFavorite,
		IsPremium:    d.IsPremium,
		Rating:       d.Rating,
		PreviewImage: preview,
	}
}

// Feedback is a review left on an offer.
type Feedback struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	User    User   `json:"user"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// ParsedDate returns the review date as time.Time, or the zero time when unparsable.
func (f Feedback) ParsedDate() time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, f.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Review bounds enforced by the API.
const (
	CommentMinLength = 50
	CommentMaxLength = 300
	RatingMin        = 1
	RatingMax        = 5
)

// CommentInput is the body of POST /comments/{id}.
type CommentInput struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// Valid reports whether the comment length and rating are within the API bounds.
func (c CommentInput) Valid() bool {
	n := utf8.RuneCountInString(c.Comment)
	return n >= CommentMinLength && n <= CommentMaxLength &&
		c.Rating >= RatingMin && c.Rating <= RatingMax
}

// Credentials is the body of POST /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserAuth is the authenticated identity returned by GET/POST /login.
type UserAuth struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl"`
	IsPro     bool   `json:"isPro"`
	Token     string `json:"token"`
}

// ValidationDetail is one entry of an API validation error body.
type ValidationDetail struct {
	Property string   `json:"property"`
	Value    any      `json:"value"`
	Messages []string `json:"messages"`
}

// ErrorBody mirrors the structured error payload the API returns on 4xx.
type ErrorBody struct {
	ErrorType string             `json:"errorType"`
	Message   string             `json:"message"`
	Details   []ValidationDetail `json:"details"`
}
