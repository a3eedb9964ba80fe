package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Refresh    key.Binding

	// View switching
	ViewOffers    key.Binding
	ViewFavorites key.Binding
	ViewActivity  key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Open     key.Binding

	// Offers
	NextCity       key.Binding
	PrevCity       key.Binding
	CycleSort      key.Binding
	ToggleFavorite key.Binding
	WriteReview    key.Binding

	// Account
	Login  key.Binding
	Logout key.Binding

	// Forms
	Submit    key.Binding
	NextField key.Binding
	Cancel    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "Back"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Reload"),
		),

		// View switching
		ViewOffers: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Offers"),
		),
		ViewFavorites: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Favorites"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Activity"),
		),

		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open offer"),
		),

		// Offers
		NextCity: key.NewBinding(
			key.WithKeys("l", "right", "]"),
			key.WithHelp("l/right", "Next city"),
		),
		PrevCity: key.NewBinding(
			key.WithKeys("h", "left", "["),
			key.WithHelp("h/left", "Previous city"),
		),
		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		ToggleFavorite: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle favorite"),
		),
		WriteReview: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Write review"),
		),

		// Account
		Login: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Sign in"),
		),
		Logout: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "Sign out"),
		),

		// Forms
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s", "enter"),
			key.WithHelp("enter", "Submit"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "Next field"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		// Navigation
		{k.Tab, k.ViewOffers, k.ViewFavorites, k.ViewActivity, k.Escape},
		{k.Up, k.Down, k.Top, k.Bottom, k.Open},
		// Offers
		{k.PrevCity, k.NextCity, k.CycleSort, k.ToggleFavorite, k.WriteReview, k.Refresh},
		// Account
		{k.Login, k.Logout},
		// General
		{k.CycleTheme, k.Help, k.Quit},
	}
}
