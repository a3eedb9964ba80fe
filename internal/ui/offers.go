package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/state"
)

func (m Model) handleOffersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.offers.CurrentCityOffers)
	page := max(m.contentHeight()-2, 1)

	switch {
	case key.Matches(msg, m.keys.Up):
		m.selectedRow--
	case key.Matches(msg, m.keys.Down):
		m.selectedRow++
	case key.Matches(msg, m.keys.Top):
		m.selectedRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.selectedRow = count - 1
	case key.Matches(msg, m.keys.PageUp):
		m.selectedRow -= page
	case key.Matches(msg, m.keys.PageDown):
		m.selectedRow += page

	case key.Matches(msg, m.keys.NextCity):
		return m.selectCity(1)
	case key.Matches(msg, m.keys.PrevCity):
		return m.selectCity(-1)

	case key.Matches(msg, m.keys.CycleSort):
		m.sort = m.sort.Next()
		m.actions.SortCurrentCity(m.sort)
		m.savePrefs()
		m.refresh()
		m.selectedRow = 0

	case key.Matches(msg, m.keys.Open):
		if o, ok := m.selectedOffer(); ok {
			return m.openOffer(o.ID)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleFavorite):
		if o, ok := m.selectedOffer(); ok {
			return m.toggleFavorite(o.ID, o.IsFavorite)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, loadOffersCmd(m.ctx, m.actions)

	default:
		return m, nil
	}

	m.selectedRow = clampRow(m.selectedRow, count)
	m.hoverSelected()
	return m, nil
}

// selectCity moves step tabs along the city list.
func (m Model) selectCity(step int) (tea.Model, tea.Cmd) {
	n := len(catalog.CityNames)
	i := slices.Index(catalog.CityNames, m.offers.CurrentCity.Name)
	if i < 0 && step < 0 {
		i = 0
	}
	next := catalog.CityNames[((i+step)%n+n)%n]

	m.actions.SelectCity(next)
	if m.sort != catalog.SortPopular {
		m.actions.SortCurrentCity(m.sort)
	}
	m.selectedRow = 0
	m.refresh()
	m.savePrefs()
	return m, nil
}

// hoverSelected marks the selected row as the offer to highlight.
func (m *Model) hoverSelected() {
	o, ok := m.selectedOffer()
	if !ok {
		return
	}
	m.actions.Offers().SetActiveOffer(o.ID)
	m.offers.ActiveOfferID = o.ID
}

func (m Model) selectedOffer() (rental.Offer, bool) {
	list := m.offers.CurrentCityOffers
	if m.selectedRow < 0 || m.selectedRow >= len(list) {
		return rental.Offer{}, false
	}
	return list[m.selectedRow], true
}

// renderOffers renders the offer list of the current city.
func (m Model) renderOffers() string {
	bg := newSurface(m.theme.Background)
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	height := m.contentHeight()

	list := m.offers.CurrentCityOffers
	if len(list) == 0 {
		var msg string
		switch {
		case m.offers.Offers == state.NotRequested || m.offers.IsOffersLoading():
			msg = m.spinner.View() + " Loading offers..."
		case m.offers.Offers == state.Failed:
			msg = m.offers.Error + ". Press R to try again."
		default:
			msg = fmt.Sprintf("No places to stay available. We could not find any property available at the moment in %s.", m.offers.CurrentCity.Name)
		}
		return bg.fill(bg.gap(2)+bg.text(msg, styles.MutedText), m.width)
	}

	offset := 0
	if m.selectedRow >= height {
		offset = m.selectedRow - height + 1
	}
	end := min(offset+height, len(list))

	lines := make([]string, 0, end-offset)
	for i := offset; i < end; i++ {
		lines = append(lines, m.renderOfferRow(list[i], i == m.selectedRow))
	}
	return strings.Join(lines, "\n")
}

// renderOfferRow renders one offer as a single line.
func (m Model) renderOfferRow(o rental.Offer, selected bool) string {
	bgColor := m.theme.Background
	if selected {
		bgColor = m.theme.SelectionBg
	}
	bg := newSurface(bgColor)
	styles := m.theme.Styles().WithBackground(bgColor)

	badge := bg.gap(10)
	if o.IsPremium {
		badge = styles.StatusStyle("premium").Render("Premium") + bg.gap(1)
	}

	fav := bg.text("♡", styles.FaintText)
	if o.IsFavorite {
		fav = bg.text("♥", styles.DangerText)
	}

	price := bg.text(padRight(formatPrice(o.Price), 6), styles.Text.Bold(true)) +
		bg.text("/night", styles.MutedText)
	stars := bg.text(ratingStars(o.Rating), styles.WarningText)

	titleWidth := m.width - 42
	typeCol := ""
	if m.width >= LayoutWideWidth {
		titleWidth -= 12
		typeCol = bg.text(padRight(o.Type.Label(), 11), styles.MutedText) + bg.gap(1)
	}
	titleWidth = max(titleWidth, 10)
	title := bg.text(padRight(truncate(o.Title, titleWidth), titleWidth), styles.Text)

	line := bg.gap(1) + fav + bg.gap(1) + badge + price + bg.gap(2) + stars + bg.gap(2) + typeCol + title
	return bg.fill(line, m.width)
}
