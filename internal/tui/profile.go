package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parkwatch/parkwatch/internal/browser"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

// profileModel shows the signed-in user and the notifications received
// during this run.
type profileModel struct {
	user        *domain.User
	webURL      string
	pushEnabled bool
	notes       []domain.Message
	statusMsg   string
	width       int
	height      int
}

func newProfileModel(user *domain.User, webURL string, pushEnabled bool) profileModel {
	return profileModel{user: user, webURL: webURL, pushEnabled: pushEnabled}
}

func (m profileModel) Init() tea.Cmd {
	return nil
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case NotificationMsg:
		m.notes = append(m.notes, msg.Message)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if msg.String() == "o" {
			url := m.openTarget()
			return m, func() tea.Msg {
				browser.Open(url) //nolint:errcheck // best-effort open
				return nil
			}
		}
	}
	return m, nil
}

// openTarget is the URL the "o" key opens: the latest notification's
// target when one arrived this session, otherwise the web app root.
// Absolute targets are opened as-is.
func (m profileModel) openTarget() string {
	if len(m.notes) == 0 {
		return m.webURL
	}
	target := m.notes[len(m.notes)-1].TargetURL()
	if strings.Contains(target, "://") {
		return target
	}
	return strings.TrimRight(m.webURL, "/") + target
}

func (m profileModel) View() string {
	var b strings.Builder

	b.WriteString(" " + searchStyle.Render("PROFILE") + "\n\n")

	if m.user != nil {
		b.WriteString(" " + selectedStyle.Render(m.user.Name+" "+m.user.Surname) + "\n")
		if m.user.Email != "" {
			b.WriteString(" " + dimStyle.Render(m.user.Email) + "\n")
		}
	} else {
		b.WriteString(" " + dimStyle.Render("signed in") + "\n")
	}

	b.WriteString("\n")
	if m.pushEnabled {
		b.WriteString(" " + metaStyle.Render("notifications") + "  " + okStyle.Render("on") + "\n")
	} else {
		b.WriteString(" " + metaStyle.Render("notifications") + "  " + dimStyle.Render("off (no push gateway configured)") + "\n")
	}
	b.WriteString(" " + metaStyle.Render("web app      ") + "  " + dimStyle.Render(m.webURL) + "  " + helpEntry("o", "open") + "\n")

	b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("RECEIVED THIS SESSION (%d)", len(m.notes))) + "\n")
	if len(m.notes) == 0 {
		b.WriteString(" " + dimStyle.Render("nothing yet") + "\n")
	}
	// Newest first.
	for i := len(m.notes) - 1; i >= 0; i-- {
		n := m.notes[i]
		b.WriteString(" " + noteStyle.Render("●") + " " + normalStyle.Render(n.Title()) + "  " + dimStyle.Render(truncStr(n.Body(), 50)) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + statusStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
