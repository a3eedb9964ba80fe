package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/session"
	"github.com/five82/sixcities/internal/state"
)

// ErrNotAuthorized is returned by actions that need a signed-in user.
var ErrNotAuthorized = gateway.ErrNotAuthorized

// TokenStore persists the auth token between runs.
type TokenStore interface {
	Token() string
	Save(token string) error
	Clear() error
}

// Actions issue gateway operations and feed their outcomes into the stores.
// Each action is safe to call from any goroutine.
type Actions struct {
	gw     *gateway.Gateway
	offers *state.OffersStore
	auth   *state.AuthStore
	tokens TokenStore
	logger *slog.Logger
	now    func() time.Time
}

// NewActions wires the gateway to the stores.
func NewActions(gw *gateway.Gateway, offers *state.OffersStore, auth *state.AuthStore, tokens TokenStore, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Actions{
		gw:     gw,
		offers: offers,
		auth:   auth,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Offers returns the offers store.
func (a *Actions) Offers() *state.OffersStore { return a.offers }

// Auth returns the auth store.
func (a *Actions) Auth() *state.AuthStore { return a.auth }

// LoadOffers fetches every offer and regroups the cache by city.
func (a *Actions) LoadOffers(ctx context.Context) error {
	t := a.offers.BeginOffers()
	list, err := a.gw.Offers(ctx)
	if err != nil {
		a.offers.FailOffers(t, gateway.Reason(err))
		return err
	}
	a.offers.CompleteOffers(t, list)
	return nil
}

// SelectCity switches to the named city. Unknown names fall back to the
// default city's location.
func (a *Actions) SelectCity(name string) rental.City {
	city := catalog.CityByName(a.offers.Snapshot().Cities, name)
	a.offers.SelectCity(city)
	return city
}

// SortCurrentCity reorders the displayed list.
func (a *Actions) SortCurrentCity(criterion catalog.SortCriterion) {
	a.offers.SortCurrentCity(criterion)
}

// LoadOfferPage fetches the offer, its nearby offers and its reviews
// concurrently. Each part lands in the store independently. Only the offer
// failure is returned, since a page without its offer is not found; the
// group has no shared context so that failure does not cancel the others.
func (a *Actions) LoadOfferPage(ctx context.Context, offerID string) error {
	var g errgroup.Group
	g.Go(func() error { return a.LoadOfferDetails(ctx, offerID) })
	g.Go(func() error {
		// Failures are recorded on the store's nearby resource.
		_ = a.LoadNearby(ctx, offerID)
		return nil
	})
	g.Go(func() error {
		_ = a.LoadReviews(ctx, offerID)
		return nil
	})
	return g.Wait()
}

// LoadOfferDetails fetches one offer.
func (a *Actions) LoadOfferDetails(ctx context.Context, offerID string) error {
	t := a.offers.BeginOfferDetails(offerID)
	details, err := a.gw.Offer(ctx, offerID)
	if err != nil {
		a.offers.FailOfferDetails(t, gateway.Reason(err))
		return err
	}
	a.offers.CompleteOfferDetails(t, details)
	return nil
}

// LoadNearby fetches offers near offerID.
func (a *Actions) LoadNearby(ctx context.Context, offerID string) error {
	t := a.offers.BeginNearby(offerID)
	list, err := a.gw.Nearby(ctx, offerID)
	if err != nil {
		a.offers.FailNearby(t, gateway.Reason(err))
		return err
	}
	a.offers.CompleteNearby(t, list)
	return nil
}

// LoadReviews fetches the reviews of offerID.
func (a *Actions) LoadReviews(ctx context.Context, offerID string) error {
	t := a.offers.BeginReviews(offerID)
	list, err := a.gw.Reviews(ctx, offerID)
	if err != nil {
		a.offers.FailReviews(t, gateway.Reason(err))
		return err
	}
	a.offers.CompleteReviews(t, list)
	return nil
}

// SubmitReview posts a review. On failure the review list is untouched and
// the error is returned for display; the caller decides whether to resubmit.
func (a *Actions) SubmitReview(ctx context.Context, offerID string, input rental.CommentInput) error {
	if a.auth.Snapshot().Status != state.AuthAuthorized {
		return ErrNotAuthorized
	}
	t := a.offers.BeginReviewSubmit(offerID)
	review, err := a.gw.SubmitReview(ctx, offerID, input)
	if err != nil {
		a.offers.FailReviewSubmit(t)
		a.expireOn(err)
		return err
	}
	a.offers.CompleteReviewSubmit(t, review)
	return nil
}

// LoadFavorites replaces the favorites list with the server's.
func (a *Actions) LoadFavorites(ctx context.Context) error {
	if a.auth.Snapshot().Status != state.AuthAuthorized {
		return ErrNotAuthorized
	}
	t := a.offers.BeginFavorites()
	list, err := a.gw.Favorites(ctx)
	if err != nil {
		a.offers.FailFavorites(t, gateway.Reason(err))
		a.expireOn(err)
		return err
	}
	a.offers.CompleteFavorites(t, list)
	return nil
}

// ToggleFavorite sets the favorite status of offerID and reconciles the
// server's answer into every list. Nothing changes locally on failure.
func (a *Actions) ToggleFavorite(ctx context.Context, offerID string, favorite bool) error {
	if a.auth.Snapshot().Status != state.AuthAuthorized {
		return ErrNotAuthorized
	}
	t := a.offers.BeginFavoriteToggle(offerID)
	updated, err := a.gw.SetFavorite(ctx, offerID, favorite)
	if err != nil {
		a.expireOn(err)
		return err
	}
	a.offers.ApplyFavorite(t, updated)
	return nil
}

// CheckSession resolves the initial auth status. Without a stored token, or
// with an expired JWT, the server is not asked.
func (a *Actions) CheckSession(ctx context.Context) error {
	t := a.auth.Begin()
	token := a.tokens.Token()
	switch {
	case token == "":
		a.auth.FailCheck(t)
		return nil
	case session.Expired(token, a.now()):
		a.logger.Info("stored token expired")
		if err := a.tokens.Clear(); err != nil {
			a.logger.Warn("clear expired token", "error", err)
		}
		a.auth.FailCheck(t)
		return nil
	}

	user, err := a.gw.CheckSession(ctx)
	if err != nil {
		a.auth.FailCheck(t)
		if errors.Is(err, rental.ErrUnauthorized) {
			return nil
		}
		return err
	}
	if user.Token == "" {
		user.Token = token
	} else if user.Token != token {
		a.saveToken(user.Token)
	}
	a.auth.CompleteCheck(t, user)
	return nil
}

// Login signs in and persists the new token.
func (a *Actions) Login(ctx context.Context, creds rental.Credentials) error {
	creds.Email = strings.TrimSpace(creds.Email)
	t := a.auth.Begin()
	if creds.Email == "" || creds.Password == "" {
		err := &gateway.Rejection{Op: gateway.OpLogin, Reason: "Email and password are required"}
		a.auth.FailLogin(t, err.Reason)
		return err
	}

	user, err := a.gw.Login(ctx, creds)
	if err != nil {
		a.auth.FailLogin(t, gateway.Reason(err))
		return err
	}
	if !a.auth.CompleteLogin(t, user) {
		return nil
	}
	a.saveToken(user.Token)
	a.logger.Info("signed in", "email", user.Email)
	return nil
}

// Logout ends the session. On success the token is forgotten and every
// favorite flag is cleared.
func (a *Actions) Logout(ctx context.Context) error {
	t := a.auth.Begin()
	if err := a.gw.Logout(ctx); err != nil {
		if errors.Is(err, rental.ErrUnauthorized) {
			a.expireOn(err)
			return nil
		}
		a.auth.FailLogout(t, gateway.Reason(err))
		return err
	}
	if !a.auth.CompleteLogout(t) {
		return nil
	}
	if err := a.tokens.Clear(); err != nil {
		a.logger.Warn("clear token", "error", err)
	}
	a.offers.OnLogout()
	a.logger.Info("signed out")
	return nil
}

// expireOn signs the user out locally when the server rejected the token.
func (a *Actions) expireOn(err error) {
	if !errors.Is(err, rental.ErrUnauthorized) {
		return
	}
	a.logger.Info("session expired")
	if err := a.tokens.Clear(); err != nil {
		a.logger.Warn("clear token", "error", err)
	}
	a.auth.Expire()
	a.offers.OnLogout()
}

func (a *Actions) saveToken(token string) {
	if err := a.tokens.Save(token); err != nil {
		a.logger.Warn("persist token", "error", fmt.Errorf("save: %w", err))
	}
}
