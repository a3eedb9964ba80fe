package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sixcities/internal/gateway"
	"github.com/five82/sixcities/internal/logging"
)

// activityEntry is a gateway event stamped with its arrival time.
type activityEntry struct {
	at    time.Time
	event gateway.Event
}

// recordEvent appends ev to the activity list, dropping the oldest entries
// past ActivityLimit.
func (m *Model) recordEvent(ev gateway.Event) {
	m.activity = append(m.activity, activityEntry{at: time.Now(), event: ev})
	if over := len(m.activity) - ActivityLimit; over > 0 {
		m.activity = append(m.activity[:0:0], m.activity[over:]...)
	}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.activityViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.activityViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Top):
		m.activityViewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.activityViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageUp):
		m.activityViewport.HalfPageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.activityViewport.HalfPageDown()
	case key.Matches(msg, m.keys.Refresh):
		return m, tailLogCmd(m.logPath)
	}
	return m, nil
}

// updateActivityViewport re-renders requests and log lines, keeping the
// view pinned to the bottom when it already was.
func (m *Model) updateActivityViewport() {
	if !m.ready {
		return
	}
	atBottom := m.activityViewport.AtBottom()
	m.activityViewport.SetContent(m.activityContent())
	if atBottom {
		m.activityViewport.GotoBottom()
	}
}

func (m Model) activityContent() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(" " + styles.AccentText.Bold(true).Render("Requests") + "\n")
	if len(m.activity) == 0 {
		b.WriteString(" " + styles.MutedText.Render("No requests yet.") + "\n")
	}
	for _, entry := range m.activity {
		b.WriteString(" " + m.renderEvent(entry, styles) + "\n")
	}

	if m.logPath == "" {
		return b.String()
	}

	b.WriteString("\n " + styles.AccentText.Bold(true).Render("Log") + " " +
		styles.FaintText.Render(truncateMiddle(m.logPath, max(m.width-8, 10))) + "\n")
	if len(m.logLines) == 0 {
		b.WriteString(" " + styles.MutedText.Render("Log is empty.") + "\n")
	}
	for _, line := range m.logLines {
		b.WriteString(" " + m.renderLogLine(logging.ParseEntry(line), styles) + "\n")
	}
	return b.String()
}

func (m Model) renderEvent(entry activityEntry, styles Styles) string {
	ev := entry.event
	phase := ev.Phase.String()
	badge := styles.StatusStyle(phase).Render(padRight(phase, 9))

	parts := []string{
		styles.FaintText.Render(entry.at.Format("15:04:05")),
		badge,
		styles.Text.Render(padRight(string(ev.Op), 16)),
	}
	if ev.Key != "" {
		parts = append(parts, styles.MutedText.Render(truncate(ev.Key, 24)))
	}
	if ev.Phase != gateway.Requested {
		parts = append(parts, styles.FaintText.Render(ev.Elapsed.Round(time.Millisecond).String()))
	}
	if ev.Reason != "" {
		parts = append(parts, styles.DangerText.Render(ev.Reason))
	}
	return strings.Join(parts, " ")
}

func (m Model) renderLogLine(e logging.Entry, styles Styles) string {
	stamp := "--:--:--"
	if !e.Time.IsZero() {
		stamp = e.Time.Local().Format("15:04:05")
	}

	levelStyle := styles.MutedText
	switch e.Level {
	case "WARN":
		levelStyle = styles.WarningText
	case "ERROR":
		levelStyle = styles.DangerText
	case "DEBUG":
		levelStyle = styles.FaintText
	}

	line := fmt.Sprintf("%s %s %s",
		styles.FaintText.Render(stamp),
		levelStyle.Render(padRight(e.Level, 5)),
		styles.Text.Render(e.Message))
	if attrs := e.AttrString("app"); attrs != "" {
		line += " " + styles.FaintText.Render(truncate(attrs, max(m.width-len(e.Message)-24, 10)))
	}
	return line
}
