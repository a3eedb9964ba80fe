package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/state"
)

// renderHeader renders the top bar: logo, city tabs and the account.
func (m Model) renderHeader() string {
	bg := newSurface(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	logo := bg.text("6 cities", styles.Logo)

	labels := make([]string, len(catalog.CityNames))
	for i, name := range catalog.CityNames {
		labels[i] = name
		if m.width < LayoutCompactWidth {
			labels[i] = truncate(name, 4)
		}
	}
	active := slices.Index(catalog.CityNames, m.offers.CurrentCity.Name)
	tabs := bg.tabs(labels, active, styles.AccentText.Bold(true).Underline(true), styles.MutedText)

	left := logo + bg.gap(2) + tabs
	right := m.renderAccount(bg, styles)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return bg.fill(bg.gap(1)+left+bg.gap(gap)+right, m.width)
}

func (m Model) renderAccount(bg surface, styles Styles) string {
	switch m.auth.Status {
	case state.AuthAuthorized:
		parts := []string{bg.text(truncate(m.auth.User.Email, 28), styles.Text)}
		if m.auth.User.IsPro {
			parts = append(parts, styles.StatusStyle("pro").Render("PRO"))
		}
		if n := len(m.offers.Favorites.Value); n > 0 {
			parts = append(parts, bg.text(fmt.Sprintf("♥ %d", n), styles.DangerText))
		}
		return bg.join(parts, 1)
	case state.AuthNoAuth:
		return styles.StatusStyle("guest").Render("Guest") + bg.gap(1) + bg.text("L sign in", styles.FaintText)
	default:
		return bg.text(m.spinner.View(), styles.MutedText) + bg.gap(1) + bg.text("Checking session", styles.MutedText)
	}
}

// renderCommandBar shows the flash message, or what the current view is doing.
func (m Model) renderCommandBar() string {
	bg := newSurface(m.theme.SurfaceAlt)
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)

	var line string
	switch {
	case m.flash != "" && m.flashIsError:
		line = bg.text(m.flash, styles.DangerText)
	case m.flash != "":
		line = bg.text(m.flash, styles.SuccessText)
	default:
		line = m.statusLine(bg, styles)
	}
	return bg.fill(bg.gap(1)+line, m.width)
}

func (m Model) statusLine(bg surface, styles Styles) string {
	switch m.currentView {
	case ViewOffers:
		if m.offers.IsOffersLoading() || m.offers.Offers == state.NotRequested {
			return bg.text(m.spinner.View()+" Loading offers", styles.MutedText)
		}
		if m.offers.Error != "" {
			return bg.text(m.offers.Error, styles.DangerText)
		}
		count := len(m.offers.CurrentCityOffers)
		return bg.text(fmt.Sprintf("%s to stay in %s", plural(count, "place"), m.offers.CurrentCity.Name), styles.Text) +
			bg.text("  Sort: "+m.sort.Label(), styles.MutedText)
	case ViewOffer:
		if m.offers.IsOfferDetailLoading() {
			return bg.text(m.spinner.View()+" Loading offer", styles.MutedText)
		}
		if m.offers.ReviewSubmitting {
			return bg.text(m.spinner.View()+" Posting review", styles.MutedText)
		}
		return bg.text(m.offers.CurrentOffer.Value.Title, styles.Text)
	case ViewFavorites:
		if m.offers.IsFavoritesLoading() {
			return bg.text(m.spinner.View()+" Loading favorites", styles.MutedText)
		}
		if m.offers.Favorites.Reason != "" {
			return bg.text(m.offers.Favorites.Reason, styles.DangerText)
		}
		return bg.text("Saved listings", styles.Text)
	case ViewActivity:
		return bg.text(fmt.Sprintf("%s this session", plural(len(m.activity), "request")), styles.Text)
	}
	return ""
}

// renderFooter renders the key hints for the current view.
func (m Model) renderFooter() string {
	bg := newSurface(m.theme.Surface)
	styles := m.theme.Styles().WithBackground(m.theme.Surface)

	var hints []string
	switch m.currentView {
	case ViewOffers:
		hints = []string{"j/k move", "enter open", "h/l city", "s sort", "f favorite"}
	case ViewOffer:
		hints = []string{"esc back", "j/k scroll", "f favorite", "r review"}
	case ViewFavorites:
		hints = []string{"j/k move", "enter open", "f remove"}
	case ViewActivity:
		hints = []string{"j/k scroll", "R reload log"}
	}
	hints = append(hints, "tab views", "? help", "q quit")

	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		k, desc, _ := strings.Cut(h, " ")
		parts = append(parts, bg.text(k, styles.AccentText)+bg.gap(1)+bg.text(desc, styles.MutedText))
	}
	line := bg.join(parts, 2)
	if loc := m.mapFocus(); loc != "" && m.width >= LayoutWideWidth {
		line += bg.gap(3) + bg.text(loc, styles.FaintText)
	}
	return bg.fill(bg.gap(1)+line, m.width)
}

// mapFocus describes the point a map would center on: the hovered offer,
// or the current city.
func (m Model) mapFocus() string {
	if m.currentView != ViewOffers {
		return ""
	}
	for _, o := range m.offers.CurrentCityOffers {
		if o.ID == m.offers.ActiveOfferID {
			return fmt.Sprintf("@ %.4f, %.4f", o.Location.Latitude, o.Location.Longitude)
		}
	}
	loc := m.offers.CurrentCity.Location
	return fmt.Sprintf("@ %.4f, %.4f z%d", loc.Latitude, loc.Longitude, loc.Zoom)
}
