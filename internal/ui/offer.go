package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sixcities/internal/catalog"
	"github.com/five82/sixcities/internal/rental"
	"github.com/five82/sixcities/internal/state"
)

func (m Model) handleOfferKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.detailViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.detailViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.detailViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.detailViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.detailViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.detailViewport.HalfPageDown()

	case key.Matches(msg, m.keys.ToggleFavorite):
		if o, ok := m.offers.CurrentOffer.Ready(); ok {
			return m.toggleFavorite(o.ID, o.IsFavorite)
		}

	case key.Matches(msg, m.keys.WriteReview):
		o, ok := m.offers.CurrentOffer.Ready()
		if !ok {
			return m, nil
		}
		if !m.auth.Authorized() {
			m.setFlash("Sign in to write a review", true)
			cmd := m.openModal(newLoginForm())
			return m, cmd
		}
		cmd := m.openModal(newReviewForm(o))
		return m, cmd

	case key.Matches(msg, m.keys.Refresh):
		return m, loadOfferPageCmd(m.ctx, m.actions, m.openOfferID)
	}
	return m, nil
}

// updateDetailViewport re-renders the offer page into its viewport.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	m.detailViewport.SetContent(m.offerContent())
}

func (m Model) offerContent() string {
	styles := m.theme.Styles()
	width := max(m.width-4, 20)
	indent := "  "

	current := m.offers.CurrentOffer
	switch {
	case current.IsLoading() || current.Status == state.NotRequested || current.Key != m.openOfferID:
		return indent + styles.MutedText.Render(m.spinner.View()+" Loading offer...")
	case m.offers.OfferNotFound():
		var b strings.Builder
		b.WriteString(indent + styles.DangerText.Render("404 Not Found") + "\n\n")
		b.WriteString(indent + styles.Text.Render("The offer you are looking for does not exist.") + "\n")
		if current.Reason != "" {
			b.WriteString(indent + styles.FaintText.Render(current.Reason) + "\n")
		}
		b.WriteString("\n" + indent + styles.MutedText.Render("Press esc to go back."))
		return b.String()
	}

	o := current.Value
	var b strings.Builder
	section := func(title string) {
		b.WriteString("\n" + indent + styles.AccentText.Bold(true).Render(title) + "\n")
	}

	// Title block
	if o.IsPremium {
		b.WriteString(indent + styles.StatusStyle("premium").Render("Premium") + "\n")
	}
	fav := styles.FaintText.Render("♡ To bookmarks")
	if o.IsFavorite {
		fav = styles.DangerText.Render("♥ In bookmarks")
	}
	b.WriteString(indent + styles.Text.Bold(true).Render(o.Title) + "  " + fav + "\n")
	b.WriteString(indent + styles.WarningText.Render(ratingStars(o.Rating)) + " " +
		styles.Text.Render(fmt.Sprintf("%.1f", o.Rating)) + "\n")

	facts := []string{o.Type.Label(), plural(o.Bedrooms, "Bedroom"), fmt.Sprintf("Max %s", plural(o.MaxAdults, "adult"))}
	b.WriteString(indent + styles.MutedText.Render(strings.Join(facts, " · ")) + "\n")
	b.WriteString(indent + styles.Text.Bold(true).Render(formatPrice(o.Price)) + styles.MutedText.Render(" night") + "\n")

	if len(o.Images) > 0 {
		section("Photos")
		for _, img := range o.Images[:min(len(o.Images), catalog.MaxImages)] {
			b.WriteString(indent + styles.FaintText.Render(truncateMiddle(img, width)) + "\n")
		}
	}

	if len(o.Goods) > 0 {
		section("What's inside")
		b.WriteString(indent + styles.Text.Width(width).Render(strings.Join(o.Goods, " · ")) + "\n")
	}

	section("Meet the host")
	host := styles.Text.Render(o.Host.Name)
	if o.Host.IsPro {
		host += " " + styles.StatusStyle("pro").Render("Pro")
	}
	b.WriteString(indent + host + "\n")
	if desc := strings.TrimSpace(o.Description); desc != "" {
		b.WriteString(indent + styles.MutedText.Width(width).Render(desc) + "\n")
	}

	m.writeReviews(&b, styles, width)
	m.writeNearby(&b, styles, width)

	return b.String()
}

func (m Model) writeReviews(b *strings.Builder, styles Styles, width int) {
	indent := "  "
	reviews := m.offers.Reviews

	title := "Reviews"
	if reviews.Status == state.Loaded {
		title = fmt.Sprintf("Reviews · %d", len(reviews.Value))
	}
	b.WriteString("\n" + indent + styles.AccentText.Bold(true).Render(title) + "\n")

	switch {
	case reviews.IsLoading():
		b.WriteString(indent + styles.MutedText.Render(m.spinner.View()+" Loading reviews...") + "\n")
	case reviews.Status == state.Failed:
		b.WriteString(indent + styles.DangerText.Render(reviews.Reason) + "\n")
	case len(reviews.Value) == 0:
		b.WriteString(indent + styles.MutedText.Render("No reviews yet.") + "\n")
	}

	for _, r := range catalog.LatestReviews(reviews.Value, catalog.MaxReviews) {
		b.WriteString(m.renderReview(r, styles, width))
	}

	if m.auth.Authorized() {
		b.WriteString(indent + styles.FaintText.Render("Press r to write a review.") + "\n")
	}
}

func (m Model) renderReview(r rental.Feedback, styles Styles, width int) string {
	indent := "  "
	head := styles.Text.Bold(true).Render(r.User.Name)
	if r.User.IsPro {
		head += " " + styles.StatusStyle("pro").Render("Pro")
	}
	head += "  " + styles.WarningText.Render(ratingStars(float64(r.Rating))) +
		"  " + styles.FaintText.Render(reviewDate(r))
	body := styles.Text.Width(width - 2).Render(r.Comment)
	return indent + head + "\n" + indentLines(body, indent+"  ") + "\n\n"
}

func (m Model) writeNearby(b *strings.Builder, styles Styles, width int) {
	indent := "  "
	nearby := m.offers.Nearby

	b.WriteString("\n" + indent + styles.AccentText.Bold(true).Render("Other places in the neighbourhood") + "\n")
	switch {
	case nearby.IsLoading() && len(nearby.Value) == 0:
		b.WriteString(indent + styles.MutedText.Render(m.spinner.View()+" Loading...") + "\n")
		return
	case nearby.Status == state.Failed && len(nearby.Value) == 0:
		b.WriteString(indent + styles.DangerText.Render(nearby.Reason) + "\n")
		return
	case len(nearby.Value) == 0:
		b.WriteString(indent + styles.MutedText.Render("Nothing nearby.") + "\n")
		return
	}

	for _, o := range catalog.Limit(nearby.Value, catalog.MaxNearbyOffers) {
		fav := styles.FaintText.Render("♡")
		if o.IsFavorite {
			fav = styles.DangerText.Render("♥")
		}
		line := fav + " " + styles.Text.Bold(true).Render(formatPrice(o.Price)) + "  " +
			styles.WarningText.Render(ratingStars(o.Rating)) + "  " +
			styles.Text.Render(truncate(o.Title, width-24))
		b.WriteString(indent + line + "\n")
	}
}

func indentLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
