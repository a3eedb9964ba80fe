package ui

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/prefs"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewOffers View = iota
	ViewOffer
	ViewFavorites
	ViewActivity
)

// Actions is what the UI needs from the application layer.
type Actions interface {
	Offers() *state.OffersStore
	Auth() *state.AuthStore
	LoadOffers(ctx context.Context) error
	SelectCity(name string) rental.City
	SortCurrentCity(criterion catalog.SortCriterion)
	LoadOfferPage(ctx context.Context, offerID string) error
	SubmitReview(ctx context.Context, offerID string, input rental.CommentInput) error
	LoadFavorites(ctx context.Context) error
	ToggleFavorite(ctx context.Context, offerID string, favorite bool) error
	CheckSession(ctx context.Context) error
	Login(ctx context.Context, creds rental.Credentials) error
	Logout(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Actions   Actions
	Events    <-chan gateway.Event
	LogPath   string
	ThemeName string
	Sort      catalog.SortCriterion
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	actions   Actions
	events    <-chan gateway.Event
	logPath   string
	prefsPath string

	// UI state
	theme       Theme
	keys        keyMap
	spinner     spinner.Model
	currentView View
	returnView  View
	width       int
	height      int
	ready       bool

	// Data state
	offers state.OffersSnapshot
	auth   state.AuthSnapshot
	sort   catalog.SortCriterion

	// List state
	selectedRow int
	favoriteRow int

	// Offer page state
	openOfferID    string
	detailViewport viewport.Model

	// Activity state
	activity         []activityEntry
	logLines         []string
	activityViewport viewport.Model

	// Overlays
	modal    Modal
	showHelp bool

	// One-line status message replacing the command bar until the next action.
	flash        string
	flashIsError bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	sort := opts.Sort
	if sort == "" {
		sort = catalog.SortPopular
	}

	theme := GetTheme(themeName)
	spin := spinner.New(spinner.WithSpinner(spinner.MiniDot))
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Accent))

	m := Model{
		ctx:         ctx,
		actions:     opts.Actions,
		events:      opts.Events,
		logPath:     opts.LogPath,
		prefsPath:   prefsPath,
		theme:       theme,
		keys:        DefaultKeyMap(),
		spinner:     spin,
		currentView: ViewOffers,
		returnView:  ViewOffers,
		sort:        sort,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		checkSessionCmd(m.ctx, m.actions),
		loadOffersCmd(m.ctx, m.actions),
		waitForEvent(m.events),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.detailViewport = viewport.New(m.width, m.contentHeight())
			m.activityViewport = viewport.New(m.width, m.contentHeight())
		}
		m.ready = true
		m.resizeViewports()
		m.updateDetailViewport()
		m.updateActivityViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.currentView == ViewOffer {
			m.updateDetailViewport()
		}
		return m, cmd

	case eventMsg:
		m.recordEvent(gateway.Event(msg))
		m.refresh()
		m.updateDetailViewport()
		m.updateActivityViewport()
		return m, waitForEvent(m.events)

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case loginSubmitMsg:
		return m, loginCmd(m.ctx, m.actions, msg.creds)

	case reviewSubmitMsg:
		return m, submitReviewCmd(m.ctx, m.actions, msg.offerID, msg.input)

	case logTailMsg:
		if msg.err == nil {
			m.logLines = msg.lines
		}
		m.updateActivityViewport()
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}

	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var (
			cmd    tea.Cmd
			closed bool
		)
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	// A key press dismisses the previous flash message.
	m.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Accent))
		m.savePrefs()
		m.updateDetailViewport()
		m.updateActivityViewport()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.nextView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.nextView(-1))

	case key.Matches(msg, m.keys.ViewOffers):
		return m.switchView(ViewOffers)

	case key.Matches(msg, m.keys.ViewFavorites):
		return m.switchView(ViewFavorites)

	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)

	case key.Matches(msg, m.keys.Login):
		if m.auth.Authorized() {
			return m, nil
		}
		cmd := m.openModal(newLoginForm())
		return m, cmd

	case key.Matches(msg, m.keys.Logout):
		if !m.auth.Authorized() || m.auth.Pending {
			return m, nil
		}
		return m, logoutCmd(m.ctx, m.actions)

	case key.Matches(msg, m.keys.Escape):
		if m.currentView == ViewOffer {
			m.currentView = m.returnView
		}
		return m, nil
	}

	switch m.currentView {
	case ViewOffers:
		return m.handleOffersKey(msg)
	case ViewOffer:
		return m.handleOfferKey(msg)
	case ViewFavorites:
		return m.handleFavoritesKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

// switchView moves to a top-level view, loading what it shows on first visit.
func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.currentView = v
	switch v {
	case ViewFavorites:
		if m.auth.Authorized() && m.offers.Favorites.Status == state.NotRequested {
			return m, loadFavoritesCmd(m.ctx, m.actions)
		}
	case ViewActivity:
		return m, tailLogCmd(m.logPath)
	}
	return m, nil
}

var cycleOrder = []View{ViewOffers, ViewFavorites, ViewActivity}

// nextView steps through the top-level views; the offer page counts as the
// view it was opened from.
func (m Model) nextView(step int) View {
	current := m.currentView
	if current == ViewOffer {
		current = m.returnView
	}
	i := slices.Index(cycleOrder, current)
	n := len(cycleOrder)
	return cycleOrder[((i+step)%n+n)%n]
}

// openOffer shows the offer page and loads everything on it.
func (m Model) openOffer(offerID string) (tea.Model, tea.Cmd) {
	if offerID == "" {
		return m, nil
	}
	if m.currentView != ViewOffer {
		m.returnView = m.currentView
	}
	m.currentView = ViewOffer
	m.openOfferID = offerID
	m.updateDetailViewport()
	m.detailViewport.GotoTop()
	return m, loadOfferPageCmd(m.ctx, m.actions, offerID)
}

// toggleFavorite flips the favorite flag of an offer, or asks the user to
// sign in.
func (m Model) toggleFavorite(offerID string, isFavorite bool) (tea.Model, tea.Cmd) {
	if offerID == "" {
		return m, nil
	}
	if !m.auth.Authorized() {
		m.setFlash("Sign in to save favorites", true)
		cmd := m.openModal(newLoginForm())
		return m, cmd
	}
	return m, toggleFavoriteCmd(m.ctx, m.actions, offerID, !isFavorite)
}

// handleActionDone folds the outcome of a finished action into the model.
func (m Model) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg.kind {
	case actionLoadOffers:
		if msg.err == nil && m.sort != catalog.SortPopular {
			m.actions.SortCurrentCity(m.sort)
		}

	case actionCheckSession:
		m.refresh()
		if m.auth.Authorized() {
			cmds = append(cmds, loadFavoritesCmd(m.ctx, m.actions))
		}

	case actionLogin:
		form, _ := m.modal.(*loginForm)
		if msg.err != nil {
			if form != nil {
				form.fail(gateway.Reason(msg.err))
			} else {
				m.setFlash(gateway.Reason(msg.err), true)
			}
			break
		}
		m.modal = nil
		m.refresh()
		m.setFlash("Signed in as "+m.auth.User.Email, false)
		cmds = append(cmds, loadFavoritesCmd(m.ctx, m.actions))

	case actionLogout:
		if msg.err == nil {
			m.setFlash("Signed out", false)
		}

	case actionSubmitReview:
		form, _ := m.modal.(*reviewForm)
		if msg.err != nil {
			if form != nil {
				form.fail(reviewFailure(msg.err))
			} else {
				m.setFlash(reviewFailure(msg.err), true)
			}
			break
		}
		if form != nil {
			m.modal = nil
		}
		m.setFlash("Review posted", false)

	case actionToggleFavorite:
		if errors.Is(msg.err, gateway.ErrNotAuthorized) {
			m.setFlash("Sign in to save favorites", true)
			cmds = append(cmds, m.openModal(newLoginForm()))
		}
	}

	switch {
	case msg.err == nil, errors.Is(msg.err, gateway.ErrNotAuthorized):
	case msg.kind == actionLogin, msg.kind == actionSubmitReview, msg.kind == actionOfferPage:
		// shown in the form or on the page
	default:
		m.setFlash(gateway.Reason(msg.err), true)
	}

	m.refresh()
	m.updateDetailViewport()
	return m, tea.Batch(cmds...)
}

// refresh pulls fresh snapshots from the stores and clamps the selections.
func (m *Model) refresh() {
	if m.actions == nil {
		return
	}
	m.offers = m.actions.Offers().Snapshot()
	m.auth = m.actions.Auth().Snapshot()
	m.selectedRow = clampRow(m.selectedRow, len(m.offers.CurrentCityOffers))
	m.favoriteRow = clampRow(m.favoriteRow, len(m.favoriteRows()))
}

func (m *Model) setFlash(text string, isError bool) {
	m.flash = strings.TrimSpace(text)
	m.flashIsError = isError
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme: m.theme.Name,
		City:  m.offers.CurrentCity.Name,
		Sort:  string(m.sort),
	})
}

func (m Model) contentHeight() int {
	// header, command bar, footer
	return max(m.height-3, 1)
}

func (m *Model) resizeViewports() {
	m.detailViewport.Width = m.width
	m.detailViewport.Height = m.contentHeight()
	m.activityViewport.Width = m.width
	m.activityViewport.Height = m.contentHeight()
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")

	content := lipgloss.NewStyle().
		Width(m.width).
		Height(m.contentHeight()).
		MaxHeight(m.contentHeight()).
		Render(m.renderContent())
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewOffers:
		return m.renderOffers()
	case ViewOffer:
		return m.detailViewport.View()
	case ViewFavorites:
		return m.renderFavorites()
	case ViewActivity:
		return m.activityViewport.View()
	default:
		return ""
	}
}

func clampRow(row, count int) int {
	if count == 0 {
		return 0
	}
	return max(0, min(row, count-1))
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
