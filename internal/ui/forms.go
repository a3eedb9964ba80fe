package ui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/rental"
)

const formWidth = 60

// loginForm asks for email and password. It stays open until the sign-in
// succeeds or the user cancels.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	err      string
	pending  bool
}

func newLoginForm() *loginForm {
	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 254
	email.Width = formWidth - 8
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.Width = formWidth - 8

	return &loginForm{email: email, password: password}
}

func (f *loginForm) focusCmd() tea.Cmd {
	return textinput.Blink
}

// fail shows reason under the fields and lets the user try again.
func (f *loginForm) fail(reason string) {
	f.pending = false
	f.err = reason
}

func (f *loginForm) credentials() rental.Credentials {
	return rental.Credentials{Email: f.email.Value(), Password: f.password.Value()}
}

func (f *loginForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Cancel):
			return f, nil, true
		case key.Matches(msg, keys.NextField):
			f.setFocus(1 - f.focus)
			return f, nil, false
		case key.Matches(msg, keys.Submit):
			if f.pending {
				return f, nil, false
			}
			if f.focus == 0 && f.password.Value() == "" {
				f.setFocus(1)
				return f, nil, false
			}
			f.pending = true
			f.err = ""
			creds := f.credentials()
			return f, func() tea.Msg { return loginSubmitMsg{creds: creds} }, false
		}
		if f.pending {
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return f, cmd, false
}

func (f *loginForm) setFocus(i int) {
	f.focus = i
	if i == 0 {
		f.email.Focus()
		f.password.Blur()
		return
	}
	f.password.Focus()
	f.email.Blur()
}

func (f *loginForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Sign in") + "\n\n")
	b.WriteString(styles.MutedText.Render("E-mail") + "\n")
	b.WriteString(f.email.View() + "\n\n")
	b.WriteString(styles.MutedText.Render("Password") + "\n")
	b.WriteString(f.password.View() + "\n\n")

	switch {
	case f.pending:
		b.WriteString(styles.MutedText.Render("Signing in..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("enter sign in · tab next field · esc cancel"))
	}

	return placeModal(theme, width, height, b.String())
}

// reviewForm collects a comment and a star rating for one offer. On failure
// it keeps what the user typed.
type reviewForm struct {
	offerID    string
	offerTitle string
	comment    textarea.Model
	rating     int
	focus      int
	err        string
	pending    bool
}

func newReviewForm(offer rental.OfferDetails) *reviewForm {
	ta := textarea.New()
	ta.Placeholder = "Tell how was your stay, what you like and what can be improved"
	ta.CharLimit = rental.CommentMaxLength
	ta.ShowLineNumbers = false
	ta.SetWidth(formWidth - 6)
	ta.SetHeight(6)
	ta.Focus()

	return &reviewForm{
		offerID:    offer.ID,
		offerTitle: offer.Title,
		comment:    ta,
	}
}

func (f *reviewForm) focusCmd() tea.Cmd {
	return textarea.Blink
}

func (f *reviewForm) fail(reason string) {
	f.pending = false
	f.err = reason
}

func (f *reviewForm) input() rental.CommentInput {
	return rental.CommentInput{Comment: f.comment.Value(), Rating: f.rating}
}

func (f *reviewForm) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Cancel):
			return f, nil, true
		case key.Matches(msg, keys.NextField):
			f.setFocus(1 - f.focus)
			return f, nil, false
		case msg.String() == "ctrl+s" || (f.focus == 1 && key.Matches(msg, keys.Submit)):
			return f, f.submit(), false
		}
		if f.pending {
			return f, nil, false
		}
		if f.focus == 1 {
			f.updateRating(msg)
			return f, nil, false
		}
	}

	var cmd tea.Cmd
	if f.focus == 0 {
		f.comment, cmd = f.comment.Update(msg)
	}
	return f, cmd, false
}

func (f *reviewForm) submit() tea.Cmd {
	if f.pending {
		return nil
	}
	input := f.input()
	if !input.Valid() {
		f.err = gateway.ErrInvalidReview.Error()
		return nil
	}
	f.pending = true
	f.err = ""
	offerID := f.offerID
	return func() tea.Msg { return reviewSubmitMsg{offerID: offerID, input: input} }
}

func (f *reviewForm) updateRating(msg tea.KeyMsg) {
	switch s := msg.String(); s {
	case "left", "h", "-":
		f.rating = max(f.rating-1, rental.RatingMin)
	case "right", "l", "+":
		f.rating = min(f.rating+1, rental.RatingMax)
	case "1", "2", "3", "4", "5":
		f.rating = int(s[0] - '0')
	}
}

func (f *reviewForm) setFocus(i int) {
	f.focus = i
	if i == 0 {
		f.comment.Focus()
		return
	}
	f.comment.Blur()
}

func (f *reviewForm) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Your review") + "\n")
	b.WriteString(styles.MutedText.Render(truncate(f.offerTitle, formWidth-6)) + "\n\n")

	ratingLabel := styles.MutedText.Render("Rating ")
	if f.focus == 1 {
		ratingLabel = styles.AccentText.Render("Rating ")
	}
	stars := styles.WarningText.Render(strings.Repeat("★", f.rating)) +
		styles.FaintText.Render(strings.Repeat("☆", rental.RatingMax-f.rating))
	b.WriteString(ratingLabel + stars + "\n\n")

	b.WriteString(f.comment.View() + "\n")

	count := utf8.RuneCountInString(f.comment.Value())
	counter := fmt.Sprintf("%d/%d", count, rental.CommentMaxLength)
	counterStyle := styles.FaintText
	if count < rental.CommentMinLength {
		counterStyle = styles.WarningText
	}
	b.WriteString(counterStyle.Render(counter) + styles.FaintText.Render(
		fmt.Sprintf("  at least %d characters", rental.CommentMinLength)) + "\n\n")

	switch {
	case f.pending:
		b.WriteString(styles.MutedText.Render("Posting review..."))
	case f.err != "":
		b.WriteString(styles.DangerText.Render(f.err))
	default:
		b.WriteString(styles.FaintText.Render("ctrl+s submit · tab rating · 1-5 stars · esc cancel"))
	}

	return placeModal(theme, width, height, b.String())
}

// reviewFailure is the text shown in the review form after a rejected submit.
func reviewFailure(err error) string {
	if errors.Is(err, gateway.ErrNotAuthorized) {
		return "Sign in to write a review"
	}
	return gateway.Reason(err)
}
