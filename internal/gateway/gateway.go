package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/five82/sixcities/internal/rental"
)

// Op names one remote operation.
type Op string

const (
	OpFetchOffers    Op = "offers/fetch"
	OpFetchOffer     Op = "offer/fetch"
	OpFetchNearby    Op = "offer/nearby"
	OpFetchReviews   Op = "comments/fetch"
	OpSubmitReview   Op = "comments/submit"
	OpFetchFavorites Op = "favorites/fetch"
	OpSetFavorite    Op = "favorites/set"
	OpCheckSession   Op = "user/check"
	OpLogin          Op = "user/login"
	OpLogout         Op = "user/logout"
)

// fallbackReasons are shown when the server gives nothing more specific.
var fallbackReasons = map[Op]string{
	OpFetchOffers:    "Failed to load offers",
	OpFetchOffer:     "Failed to load offer details",
	OpFetchNearby:    "Failed to load offers nearby",
	OpFetchReviews:   "Failed to load offer comments",
	OpSubmitReview:   "Failed to submit offer comment",
	OpFetchFavorites: "Failed to load favorites",
	OpSetFavorite:    "Failed to change favorite status",
	OpCheckSession:   "Failed to check authorization",
	OpLogin:          "Unknown login error",
	OpLogout:         "Failed to logout",
}

// Phase is the lifecycle stage of one operation.
type Phase int

const (
	Requested Phase = iota
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Requested:
		return "requested"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Event reports one phase of one operation. Key is the offer id for
// offer-scoped operations.
type Event struct {
	Op      Op
	Phase   Phase
	Key     string
	Reason  string
	Elapsed time.Duration
}

// Observer receives operation events. It is called synchronously from the
// goroutine running the operation and must not block.
type Observer func(Event)

// ErrInvalidReview is returned without a network call when a review is out
// of the API bounds.
var ErrInvalidReview = errors.New("review must have 50-300 characters and a rating of 1-5")

// ErrNotAuthorized is returned by operations that need a signed-in user
// when nobody is signed in.
var ErrNotAuthorized = errors.New("sign in required")

// Rejection is the failure outcome of an operation. Reason is short and fit
// for display; Err is the underlying cause.
type Rejection struct {
	Op     Op
	Reason string
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err == nil {
		return fmt.Sprintf("%s: %s", r.Op, r.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", r.Op, r.Reason, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

// Reason extracts the display reason from err, or returns err's text when it
// is not a Rejection.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return err.Error()
}

// Gateway runs remote operations against an injected API and reports the
// requested, succeeded and failed phase of each. It never retries.
type Gateway struct {
	api      rental.API
	logger   *slog.Logger
	observer Observer
	now      func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger for operation phases.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithObserver registers fn to receive every operation event.
func WithObserver(fn Observer) Option {
	return func(g *Gateway) {
		g.observer = fn
	}
}

// New returns a Gateway over api.
func New(api rental.API, opts ...Option) *Gateway {
	g := &Gateway{
		api:    api,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Offers fetches every offer.
func (g *Gateway) Offers(ctx context.Context) ([]rental.Offer, error) {
	return run(ctx, g, OpFetchOffers, "", g.api.FetchOffers)
}

// Offer fetches the full record of offerID.
func (g *Gateway) Offer(ctx context.Context, offerID string) (rental.OfferDetails, error) {
	return run(ctx, g, OpFetchOffer, offerID, func(ctx context.Context) (rental.OfferDetails, error) {
		return g.api.FetchOffer(ctx, offerID)
	})
}

// Nearby fetches offers near offerID.
func (g *Gateway) Nearby(ctx context.Context, offerID string) ([]rental.Offer, error) {
	return run(ctx, g, OpFetchNearby, offerID, func(ctx context.Context) ([]rental.Offer, error) {
		return g.api.FetchNearby(ctx, offerID)
	})
}

// Reviews fetches the reviews of offerID.
func (g *Gateway) Reviews(ctx context.Context, offerID string) ([]rental.Feedback, error) {
	return run(ctx, g, OpFetchReviews, offerID, func(ctx context.Context) ([]rental.Feedback, error) {
		return g.api.FetchComments(ctx, offerID)
	})
}

// SubmitReview posts a review for offerID. Input outside the API bounds is
// rejected locally with ErrInvalidReview.
func (g *Gateway) SubmitReview(ctx context.Context, offerID string, input rental.CommentInput) (rental.Feedback, error) {
	return run(ctx, g, OpSubmitReview, offerID, func(ctx context.Context) (rental.Feedback, error) {
		if !input.Valid() {
			return rental.Feedback{}, ErrInvalidReview
		}
		return g.api.PostComment(ctx, offerID, input)
	})
}

// Favorites fetches the signed-in user's favorites.
func (g *Gateway) Favorites(ctx context.Context) ([]rental.Offer, error) {
	return run(ctx, g, OpFetchFavorites, "", g.api.FetchFavorites)
}

// SetFavorite changes the favorite status of offerID and returns the updated offer.
func (g *Gateway) SetFavorite(ctx context.Context, offerID string, favorite bool) (rental.OfferDetails, error) {
	return run(ctx, g, OpSetFavorite, offerID, func(ctx context.Context) (rental.OfferDetails, error) {
		return g.api.SetFavorite(ctx, offerID, favorite)
	})
}

// CheckSession asks the server who the stored token belongs to.
func (g *Gateway) CheckSession(ctx context.Context) (rental.UserAuth, error) {
	return run(ctx, g, OpCheckSession, "", g.api.CheckSession)
}

// Login signs in with creds.
func (g *Gateway) Login(ctx context.Context, creds rental.Credentials) (rental.UserAuth, error) {
	return run(ctx, g, OpLogin, "", func(ctx context.Context) (rental.UserAuth, error) {
		return g.api.Login(ctx, creds)
	})
}

// Logout ends the session.
func (g *Gateway) Logout(ctx context.Context) error {
	_, err := run(ctx, g, OpLogout, "", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.api.Logout(ctx)
	})
	return err
}

func run[T any](ctx context.Context, g *Gateway, op Op, key string, call func(context.Context) (T, error)) (T, error) {
	started := g.now()
	g.emit(Event{Op: op, Phase: Requested, Key: key})

	result, err := call(ctx)
	elapsed := g.now().Sub(started)
	if err != nil {
		reason := reasonFor(op, err)
		g.logger.Warn("operation failed",
			"op", string(op),
			"key", key,
			"reason", reason,
			"elapsed", elapsed,
			"error", err)
		g.emit(Event{Op: op, Phase: Failed, Key: key, Reason: reason, Elapsed: elapsed})
		var zero T
		return zero, &Rejection{Op: op, Reason: reason, Err: err}
	}

	g.logger.Debug("operation succeeded", "op", string(op), "key", key, "elapsed", elapsed)
	g.emit(Event{Op: op, Phase: Succeeded, Key: key, Elapsed: elapsed})
	return result, nil
}

func (g *Gateway) emit(ev Event) {
	if g.observer != nil {
		g.observer(ev)
	}
}

func reasonFor(op Op, err error) string {
	if errors.Is(err, ErrInvalidReview) {
		return ErrInvalidReview.Error()
	}
	if op == OpLogin {
		var apiErr *rental.APIError
		if errors.As(err, &apiErr) {
			if msg, ok := apiErr.FirstValidationMessage(); ok {
				return msg
			}
		}
	}
	if reason := strings.TrimSpace(fallbackReasons[op]); reason != "" {
		return reason
	}
	return "Request failed"
}
