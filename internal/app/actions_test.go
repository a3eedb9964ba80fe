package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/session"
	"github.com/five82/sixcities/internal/state"
)

var errDown = errors.New("connection refused")

type fakeAPI struct {
	mu sync.Mutex

	offers      []rental.Offer
	offersErr   error
	details     map[string]rental.OfferDetails
	nearby      []rental.Offer
	nearbyErr   error
	reviews     []rental.Feedback
	reviewsErr  error
	posted      rental.Feedback
	postErr     error
	favorites   []rental.Offer
	favErr      error
	user        rental.UserAuth
	checkErr    error
	loginErr    error
	logoutErr   error
	checkCalls  int
	favoriteSet map[string]bool
}

func (f *fakeAPI) FetchOffers(context.Context) ([]rental.Offer, error) {
	return f.offers, f.offersErr
}

func (f *fakeAPI) FetchOffer(_ context.Context, id string) (rental.OfferDetails, error) {
	d, ok := f.details[id]
	if !ok {
		return rental.OfferDetails{}, &rental.APIError{Status: http.StatusNotFound, Path: "/offers/" + id}
	}
	return d, nil
}

func (f *fakeAPI) FetchNearby(context.Context, string) ([]rental.Offer, error) {
	return f.nearby, f.nearbyErr
}

func (f *fakeAPI) FetchComments(context.Context, string) ([]rental.Feedback, error) {
	return f.reviews, f.reviewsErr
}

func (f *fakeAPI) PostComment(context.Context, string, rental.CommentInput) (rental.Feedback, error) {
	return f.posted, f.postErr
}

func (f *fakeAPI) CheckSession(context.Context) (rental.UserAuth, error) {
	f.mu.Lock()
	f.checkCalls++
	f.mu.Unlock()
	return f.user, f.checkErr
}

func (f *fakeAPI) Login(context.Context, rental.Credentials) (rental.UserAuth, error) {
	return f.user, f.loginErr
}

func (f *fakeAPI) Logout(context.Context) error { return f.logoutErr }

func (f *fakeAPI) FetchFavorites(context.Context) ([]rental.Offer, error) {
	return f.favorites, f.favErr
}

func (f *fakeAPI) SetFavorite(_ context.Context, id string, fav bool) (rental.OfferDetails, error) {
	if f.favErr != nil {
		return rental.OfferDetails{}, f.favErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.favoriteSet == nil {
		f.favoriteSet = map[string]bool{}
	}
	f.favoriteSet[id] = fav
	d := f.details[id]
	d.ID = id
	d.IsFavorite = fav
	return d, nil
}

var (
	paris     = rental.City{Name: "Paris", Location: rental.Location{Latitude: 48.85661, Longitude: 2.351499, Zoom: 13}}
	amsterdam = catalog.DefaultCity
)

func offer(id string, city rental.City, price float64) rental.Offer {
	return rental.Offer{ID: id, City: city, Price: price}
}

func newActions(api *fakeAPI, tokens TokenStore) *Actions {
	if tokens == nil {
		tokens = &session.MemoryStore{}
	}
	return NewActions(gateway.New(api), state.NewOffersStore(amsterdam), state.NewAuthStore(), tokens, nil)
}

func signedIn(t *testing.T, api *fakeAPI) (*Actions, *session.MemoryStore) {
	t.Helper()
	api.user = rental.UserAuth{Name: "Oliver", Email: "oliver@example.com", Token: "T1"}
	tokens := &session.MemoryStore{}
	a := newActions(api, tokens)
	require.NoError(t, a.Login(context.Background(), rental.Credentials{Email: "oliver@example.com", Password: "secret1"}))
	return a, tokens
}

func ids(offers []rental.Offer) []string {
	out := make([]string, len(offers))
	for i, o := range offers {
		out[i] = o.ID
	}
	return out
}

func TestLoadOffers_GroupsAndSelects(t *testing.T) {
	api := &fakeAPI{offers: []rental.Offer{
		offer("1", paris, 100),
		offer("2", amsterdam, 80),
		offer("3", paris, 60),
	}}
	a := newActions(api, nil)

	require.NoError(t, a.LoadOffers(context.Background()))
	snap := a.Offers().Snapshot()
	assert.Equal(t, []string{"2"}, ids(snap.CurrentCityOffers))
	assert.Equal(t, []string{"1", "3"}, ids(snap.OffersByCity["Paris"]))

	city := a.SelectCity("Paris")
	assert.Equal(t, paris, city)
	assert.Equal(t, []string{"1", "3"}, ids(a.Offers().Snapshot().CurrentCityOffers))
}

func TestLoadOffers_FailureRecordsReason(t *testing.T) {
	api := &fakeAPI{offers: []rental.Offer{offer("1", amsterdam, 10)}}
	a := newActions(api, nil)
	require.NoError(t, a.LoadOffers(context.Background()))

	api.offersErr = errDown
	err := a.LoadOffers(context.Background())
	require.Error(t, err)

	snap := a.Offers().Snapshot()
	assert.Equal(t, "Failed to load offers", snap.Error)
	assert.False(t, snap.IsOffersLoading())
	assert.Equal(t, []string{"1"}, ids(snap.CurrentCityOffers))
}

func TestSortCurrentCity(t *testing.T) {
	api := &fakeAPI{offers: []rental.Offer{
		offer("a", amsterdam, 300),
		offer("b", amsterdam, 100),
		offer("c", amsterdam, 100),
	}}
	a := newActions(api, nil)
	require.NoError(t, a.LoadOffers(context.Background()))

	a.SortCurrentCity(catalog.SortPriceAsc)
	assert.Equal(t, []string{"b", "c", "a"}, ids(a.Offers().Snapshot().CurrentCityOffers))
	assert.Equal(t, []string{"a", "b", "c"}, ids(a.Offers().Snapshot().OffersByCity["Amsterdam"]))

	a.SortCurrentCity(catalog.SortPopular)
	assert.Equal(t, []string{"a", "b", "c"}, ids(a.Offers().Snapshot().CurrentCityOffers))
}

func TestLoadOfferPage(t *testing.T) {
	api := &fakeAPI{
		details:    map[string]rental.OfferDetails{"1": {ID: "1", Title: "Canal view"}},
		nearby:     []rental.Offer{offer("2", amsterdam, 50)},
		reviewsErr: errDown,
	}
	a := newActions(api, nil)

	require.NoError(t, a.LoadOfferPage(context.Background(), "1"))
	snap := a.Offers().Snapshot()
	got, ok := snap.CurrentOffer.Ready()
	require.True(t, ok)
	assert.Equal(t, "Canal view", got.Title)
	assert.Equal(t, []string{"2"}, ids(snap.Nearby.Value))
	assert.Equal(t, state.Failed, snap.Reviews.Status)
	assert.Empty(t, snap.Reviews.Value)
}

func TestLoadOfferPage_NotFound(t *testing.T) {
	a := newActions(&fakeAPI{
		nearby:  []rental.Offer{offer("2", amsterdam, 50)},
		reviews: []rental.Feedback{{ID: "r1"}},
	}, nil)

	err := a.LoadOfferPage(context.Background(), "missing")
	require.Error(t, err)
	snap := a.Offers().Snapshot()
	assert.True(t, snap.OfferNotFound())
	assert.Equal(t, "Failed to load offer details", snap.CurrentOffer.Reason)
	assert.Equal(t, state.Loaded, snap.Nearby.Status, "siblings still land")
	assert.Equal(t, state.Loaded, snap.Reviews.Status)
}

func TestSubmitReview(t *testing.T) {
	api := &fakeAPI{
		reviews: []rental.Feedback{{ID: "r1"}},
		posted:  rental.Feedback{ID: "r2", Rating: 5},
	}
	a, _ := signedIn(t, api)
	require.NoError(t, a.LoadReviews(context.Background(), "1"))

	input := rental.CommentInput{Comment: strings.Repeat("lovely ", 10), Rating: 5}
	require.NoError(t, a.SubmitReview(context.Background(), "1", input))
	assert.Len(t, a.Offers().Snapshot().Reviews.Value, 2)

	api.postErr = errDown
	err := a.SubmitReview(context.Background(), "1", input)
	assert.Equal(t, "Failed to submit offer comment", gateway.Reason(err))
	snap := a.Offers().Snapshot()
	assert.Len(t, snap.Reviews.Value, 2)
	assert.False(t, snap.ReviewSubmitting)
}

func TestSubmitReview_RequiresAuth(t *testing.T) {
	a := newActions(&fakeAPI{}, nil)
	err := a.SubmitReview(context.Background(), "1", rental.CommentInput{})
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestToggleFavorite_RequiresAuth(t *testing.T) {
	api := &fakeAPI{}
	a := newActions(api, nil)

	err := a.ToggleFavorite(context.Background(), "1", true)
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.Empty(t, api.favoriteSet)
}

func TestToggleFavorite_ReconcilesAndLogoutClears(t *testing.T) {
	api := &fakeAPI{
		offers:  []rental.Offer{offer("5", amsterdam, 100), offer("6", amsterdam, 90)},
		details: map[string]rental.OfferDetails{"5": {ID: "5", City: amsterdam, Images: []string{"a.jpg", "b.jpg"}}},
	}
	a, tokens := signedIn(t, api)
	ctx := context.Background()
	require.NoError(t, a.LoadOffers(ctx))
	require.NoError(t, a.LoadOfferDetails(ctx, "5"))

	require.NoError(t, a.ToggleFavorite(ctx, "5", true))
	snap := a.Offers().Snapshot()
	assert.True(t, snap.CurrentOffer.Value.IsFavorite)
	assert.True(t, snap.CurrentCityOffers[0].IsFavorite)
	require.Len(t, snap.Favorites.Value, 1)
	assert.Equal(t, "a.jpg", snap.Favorites.Value[0].PreviewImage)

	require.NoError(t, a.Logout(ctx))
	snap = a.Offers().Snapshot()
	assert.False(t, snap.CurrentOffer.Value.IsFavorite)
	assert.False(t, snap.CurrentCityOffers[0].IsFavorite)
	assert.Empty(t, snap.Favorites.Value)
	assert.Equal(t, state.AuthNoAuth, a.Auth().Snapshot().Status)
	assert.Empty(t, tokens.Token())
}

func TestToggleFavorite_FailureLeavesState(t *testing.T) {
	api := &fakeAPI{offers: []rental.Offer{offer("5", amsterdam, 100)}}
	a, _ := signedIn(t, api)
	ctx := context.Background()
	require.NoError(t, a.LoadOffers(ctx))

	api.favErr = errDown
	err := a.ToggleFavorite(ctx, "5", true)
	assert.Equal(t, "Failed to change favorite status", gateway.Reason(err))
	snap := a.Offers().Snapshot()
	assert.False(t, snap.CurrentCityOffers[0].IsFavorite)
	assert.Empty(t, snap.Favorites.Value)
	assert.True(t, a.Auth().Snapshot().Authorized())
}

func TestToggleFavorite_UnauthorizedSignsOut(t *testing.T) {
	api := &fakeAPI{favorites: []rental.Offer{offer("5", amsterdam, 100)}}
	a, tokens := signedIn(t, api)
	ctx := context.Background()
	require.NoError(t, a.LoadFavorites(ctx))

	api.favErr = &rental.APIError{Status: http.StatusUnauthorized}
	require.Error(t, a.ToggleFavorite(ctx, "5", false))

	assert.Equal(t, state.AuthNoAuth, a.Auth().Snapshot().Status)
	assert.Empty(t, a.Offers().Snapshot().Favorites.Value)
	assert.Empty(t, tokens.Token())
}

func TestLoadFavorites(t *testing.T) {
	api := &fakeAPI{favorites: []rental.Offer{offer("1", paris, 10)}}
	a, _ := signedIn(t, api)

	require.NoError(t, a.LoadFavorites(context.Background()))
	assert.Equal(t, []string{"1"}, ids(a.Offers().Snapshot().Favorites.Value))
}

func TestCheckSession_NoToken(t *testing.T) {
	api := &fakeAPI{}
	a := newActions(api, nil)

	require.NoError(t, a.CheckSession(context.Background()))
	assert.Equal(t, state.AuthNoAuth, a.Auth().Snapshot().Status)
	assert.Zero(t, api.checkCalls)
}

func TestCheckSession_ExpiredJWTIsDropped(t *testing.T) {
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	tokens := &session.MemoryStore{}
	require.NoError(t, tokens.Save(token))
	api := &fakeAPI{}
	a := newActions(api, tokens)

	require.NoError(t, a.CheckSession(context.Background()))
	assert.Equal(t, state.AuthNoAuth, a.Auth().Snapshot().Status)
	assert.Empty(t, tokens.Token())
	assert.Zero(t, api.checkCalls)
}

func TestCheckSession_Valid(t *testing.T) {
	tokens := &session.MemoryStore{}
	require.NoError(t, tokens.Save("opaque-token"))
	api := &fakeAPI{user: rental.UserAuth{Name: "Oliver", Email: "oliver@example.com"}}
	a := newActions(api, tokens)

	require.NoError(t, a.CheckSession(context.Background()))
	snap := a.Auth().Snapshot()
	assert.True(t, snap.Authorized())
	assert.Equal(t, "opaque-token", snap.User.Token)
	assert.Equal(t, 1, api.checkCalls)
}

func TestCheckSession_Rejected(t *testing.T) {
	tokens := &session.MemoryStore{}
	require.NoError(t, tokens.Save("opaque-token"))

	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "unauthorized", err: &rental.APIError{Status: http.StatusUnauthorized}, wantErr: false},
		{name: "network", err: errDown, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newActions(&fakeAPI{checkErr: tt.err}, tokens)
			err := a.CheckSession(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, state.AuthNoAuth, a.Auth().Snapshot().Status)
		})
	}
}

func TestLogin_Failure(t *testing.T) {
	api := &fakeAPI{loginErr: &rental.APIError{
		Status: http.StatusBadRequest,
		Body: rental.ErrorBody{Details: []rental.ValidationDetail{
			{Property: "password", Messages: []string{"password must contain a letter and a digit"}},
		}},
	}}
	tokens := &session.MemoryStore{}
	a := newActions(api, tokens)

	err := a.Login(context.Background(), rental.Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	snap := a.Auth().Snapshot()
	assert.Equal(t, state.AuthNoAuth, snap.Status)
	assert.Equal(t, "password must contain a letter and a digit", snap.Error)
	assert.Empty(t, tokens.Token())
}

func TestLogin_MissingCredentials(t *testing.T) {
	a := newActions(&fakeAPI{}, nil)
	err := a.Login(context.Background(), rental.Credentials{Email: "  "})
	assert.Equal(t, "Email and password are required", gateway.Reason(err))
}

func TestLogin_PersistsToken(t *testing.T) {
	a, tokens := signedIn(t, &fakeAPI{})
	assert.Equal(t, "T1", tokens.Token())
	assert.Equal(t, "Oliver", a.Auth().Snapshot().User.Name)
}

func TestLogout_FailureKeepsSession(t *testing.T) {
	api := &fakeAPI{}
	a, tokens := signedIn(t, api)

	api.logoutErr = errDown
	require.Error(t, a.Logout(context.Background()))
	snap := a.Auth().Snapshot()
	assert.True(t, snap.Authorized())
	assert.Equal(t, "Failed to logout", snap.Error)
	assert.Equal(t, "T1", tokens.Token())
}
