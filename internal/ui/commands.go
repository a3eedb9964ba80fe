package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/logging"
	"github.com/five82/sixcities/internal/rental"
)

type actionKind int

const (
	actionLoadOffers actionKind = iota
	actionOfferPage
	actionFavorites
	actionToggleFavorite
	actionCheckSession
	actionLogin
	actionLogout
	actionSubmitReview
)

// actionDoneMsg reports that an action finished. The stores already hold
// its outcome; err is kept for display.
type actionDoneMsg struct {
	kind    actionKind
	offerID string
	err     error
}

// eventMsg carries a gateway lifecycle event.
type eventMsg gateway.Event

type loginSubmitMsg struct {
	creds rental.Credentials
}

type reviewSubmitMsg struct {
	offerID string
	input   rental.CommentInput
}

type logTailMsg struct {
	lines []string
	err   error
}

// waitForEvent blocks until the next gateway event. A closed channel stops
// the subscription.
func waitForEvent(events <-chan gateway.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func loadOffersCmd(ctx context.Context, a Actions) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionLoadOffers, err: a.LoadOffers(ctx)}
	}
}

func loadOfferPageCmd(ctx context.Context, a Actions, offerID string) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionOfferPage, offerID: offerID, err: a.LoadOfferPage(ctx, offerID)}
	}
}

func loadFavoritesCmd(ctx context.Context, a Actions) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionFavorites, err: a.LoadFavorites(ctx)}
	}
}

func toggleFavoriteCmd(ctx context.Context, a Actions, offerID string, favorite bool) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionToggleFavorite, offerID: offerID, err: a.ToggleFavorite(ctx, offerID, favorite)}
	}
}

func checkSessionCmd(ctx context.Context, a Actions) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionCheckSession, err: a.CheckSession(ctx)}
	}
}

func loginCmd(ctx context.Context, a Actions, creds rental.Credentials) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionLogin, err: a.Login(ctx, creds)}
	}
}

func logoutCmd(ctx context.Context, a Actions) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionLogout, err: a.Logout(ctx)}
	}
}

func submitReviewCmd(ctx context.Context, a Actions, offerID string, input rental.CommentInput) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{kind: actionSubmitReview, offerID: offerID, err: a.SubmitReview(ctx, offerID, input)}
	}
}

func tailLogCmd(path string) tea.Cmd {
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		lines, err := logging.Tail(path, LogTailLines)
		return logTailMsg{lines: lines, err: err}
	}
}
