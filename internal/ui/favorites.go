package ui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/state"
)

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.favoriteRows()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.favoriteRow--
	case key.Matches(msg, m.keys.Down):
		m.favoriteRow++
	case key.Matches(msg, m.keys.Top):
		m.favoriteRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.favoriteRow = len(rows) - 1

	case key.Matches(msg, m.keys.Open):
		if m.favoriteRow < len(rows) {
			return m.openOffer(rows[m.favoriteRow].ID)
		}

	case key.Matches(msg, m.keys.ToggleFavorite):
		if m.favoriteRow < len(rows) {
			o := rows[m.favoriteRow]
			return m.toggleFavorite(o.ID, o.IsFavorite)
		}

	case key.Matches(msg, m.keys.Refresh):
		if m.auth.Authorized() {
				return m, loadFavoritesCmd(m.ctx, m.actions)
		}
	}

	m.favoriteRow = clampRow(m.favoriteRow, len(rows))
	return m, nil
}

// favoriteRows returns the favorites in display order: cities in tab order,
// then any other city by name, server order within a city.
func (m Model) favoriteRows() []rental.Offer {
	groups := catalog.GroupOffersByCity(m.offers.Favorites.Value)
	if len(groups) == 0 {
		return nil
	}
	rows := make([]rental.Offer, 0, len(m.offers.Favorites.Value))
	for _, name := range favoriteCityOrder(groups) {
		rows = append(rows, groups[name]...)
	}
	return rows
}

func favoriteCityOrder(groups map[string][]rental.Offer) []string {
	names := make([]string, 0, len(groups))
	for _, name := range catalog.CityNames {
		if _, ok := groups[name]; ok {
			names = append(names, name)
		}
	}
	var extra []string
	for name := range groups {
		if !slices.Contains(catalog.CityNames, name) {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// renderFavorites renders the saved listings grouped by city.
func (m Model) renderFavorites() string {
	bg := newSurface(m.theme.Background)
	styles := m.theme.Styles().WithBackground(m.theme.Background)

	message := func(text string) string {
		return bg.fill(bg.gap(2)+bg.text(text, styles.MutedText), m.width)
	}

	switch {
	case m.auth.Status == state.AuthUnknown:
		return message(m.spinner.View() + " Checking session...")
	case !m.auth.Authorized():
		return message("Sign in to see your saved listings. Press L to sign in.")
	case m.offers.Favorites.Status == state.NotRequested || (m.offers.IsFavoritesLoading() && len(m.offers.Favorites.Value) == 0):
		return message(m.spinner.View() + " Loading favorites...")
	case len(m.offers.Favorites.Value) == 0:
		return message("Nothing yet saved. Save properties to narrow down search or plan your future trips.")
	}

	groups := catalog.GroupOffersByCity(m.offers.Favorites.Value)
	var lines []string
	row := 0
	for _, name := range favoriteCityOrder(groups) {
		lines = append(lines, bg.fill(bg.gap(1)+bg.text(name, styles.AccentText.Bold(true)), m.width))
		for _, o := range groups[name] {
			lines = append(lines, m.renderOfferRow(o, row == m.favoriteRow))
			row++
		}
	}

	height := m.contentHeight()
	if len(lines) > height {
		// Keep the selected row on screen; headings shift it down by one per city.
		target := m.favoriteRow + len(favoriteCityOrder(groups))
		offset := max(0, min(target-height+1, len(lines)-height))
		lines = lines[offset : offset+height]
	}
	return strings.Join(lines, "\n")
}
