// Package tui is the interactive terminal interface: a tabbed board
// over the ticket backend with an add/edit form, search, and a profile
// screen that mirrors incoming notifications.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parkwatch/parkwatch/internal/browser"
	"github.com/parkwatch/parkwatch/pkg/client"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

type view int

const (
	viewTickets view = iota
	viewSearch
	viewProfile
	viewForm
)

// NotificationMsg is sent into the program from outside when a push
// message arrives while the TUI is running.
type NotificationMsg struct {
	Message domain.Message
}

// App is the root Bubbletea model.
type App struct {
	client     *client.Client
	view       view
	tickets    ticketsModel
	search     searchModel
	profile    profileModel
	form       formModel
	helpOpen   bool
	helpCursor int
	banner     string // transient notification banner
	width      int
	height     int
	frame      int // logo shimmer animation frame

	// onTicketSaved runs after a successful create or update; wired to
	// push token re-registration so a fresh account gets notifications
	// without a restart.
	onTicketSaved func()
}

// NewApp creates the TUI application. onTicketSaved may be nil.
func NewApp(c *client.Client, user *domain.User, webURL string, pushEnabled bool, onTicketSaved func()) App {
	return App{
		client:        c,
		tickets:       newTicketsModel(c),
		search:        newSearchModel(c),
		profile:       newProfileModel(user, webURL, pushEnabled),
		form:          newFormModel(c),
		onTicketSaved: onTicketSaved,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.tickets.Init(), shimmerTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + banner(1) + help(1) = 5 lines
		bodyHeight := msg.Height - 5
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: bodyHeight}
		a.tickets, _ = a.tickets.Update(bodyMsg)
		a.search, _ = a.search.Update(bodyMsg)
		a.profile, _ = a.profile.Update(bodyMsg)

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case NotificationMsg:
		a.banner = msg.Message.Title()
		a.profile, _ = a.profile.Update(msg)
		return a, nil

	case editTicketMsg:
		a.form = a.form.prefill(msg.ticket)
		a.view = viewForm
		return a, nil

	case ticketSavedMsg:
		// Route to the form for error display; on success jump back to
		// the list and reconcile the push token.
		var cmd tea.Cmd
		a.form, cmd = a.form.Update(msg)
		if msg.err == nil {
			a.view = viewTickets
			cmds := []tea.Cmd{cmd, a.tickets.load()}
			if saved := a.onTicketSaved; saved != nil {
				cmds = append(cmds, func() tea.Msg {
					saved()
					return nil
				})
			}
			return a, tea.Batch(cmds...)
		}
		return a, cmd

	case tea.KeyMsg:
		a.banner = ""

		// Help overlay captures all keys when open
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc":
				a.helpOpen = false
			case "q", "ctrl+c":
				return a, tea.Quit
			case "j", "down":
				if a.helpCursor < len(helpItems)-1 {
					a.helpCursor++
				}
			case "k", "up":
				if a.helpCursor > 0 {
					a.helpCursor--
				}
			case "enter":
				item := helpItems[a.helpCursor]
				if item.url != "" {
					browser.Open(item.url) //nolint:errcheck // best-effort browser open
				}
			}
			return a, nil
		}

		// Global keys (only when not editing)
		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				if a.view != viewTickets {
					a.view = viewTickets
					return a, a.tickets.Init()
				}
				return a, nil
			case "2":
				if a.view != viewSearch {
					a.view = viewSearch
					return a, a.search.Init()
				}
				return a, nil
			case "3":
				if a.view != viewProfile {
					a.view = viewProfile
					return a, a.profile.Init()
				}
				return a, nil
			case "n":
				if a.view != viewForm {
					a.form = a.form.reset()
					a.view = viewForm
					return a, nil
				}
			case "esc":
				if a.view == viewForm {
					a.view = viewTickets
					return a, a.tickets.Init()
				}
			}
		} else if msg.String() == "esc" && a.view == viewForm {
			a.view = viewTickets
			return a, a.tickets.Init()
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewTickets:
		a.tickets, cmd = a.tickets.Update(msg)
	case viewSearch:
		a.search, cmd = a.search.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	case viewForm:
		a.form, cmd = a.form.Update(msg)
	}

	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewForm:
		return true
	case viewSearch:
		return a.search.editing
	}
	return false
}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)

	logoWidth := lipgloss.Width(logo)
	logoPad := (a.width - logoWidth) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo + "\n"

	// Tab bar: 1 Tickets  2 Search  3 Profile
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Tickets", viewTickets},
		{"2", "Search", viewSearch},
		{"3", "Profile", viewProfile},
	}

	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		active := t.v == a.view || (a.view == viewForm && t.v == viewTickets)
		if active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}
	centeredTabs := tabBar.String()

	// Body + per-view help bar
	var body string
	var help string
	switch a.view {
	case viewTickets:
		body = a.tickets.View()
		if a.tickets.detail {
			help = " " + helpEntry("p", "photo") + "  " + helpEntry("e", "edit") + "  " + helpEntry("d", "delete") + "  " + helpEntry("c", "copy") + "  " + helpEntry("esc", "back")
		} else {
			help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("n", "new") + "  " + helpEntry("e", "edit") + "  " + helpEntry("d", "delete") + "  " + helpEntry("c", "copy") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
		}
	case viewSearch:
		body = a.search.View()
		if a.search.editing {
			help = " " + helpEntry("tab", "next field") + "  " + helpEntry("enter", "search") + "  " + helpEntry("esc", "results")
		} else {
			help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "edit criteria") + "  " + helpEntry("x", "clear") + "  " + helpEntry("q", "quit")
		}
	case viewProfile:
		body = a.profile.View()
		help = " " + helpEntry("1-3", "tabs") + "  " + helpEntry("o", "open web app") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewForm:
		body = a.form.View()
		help = " " + helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "save") + "  " + helpEntry("esc", "cancel")
	}

	// Help overlay
	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	// Notification banner line
	bannerLine := ""
	if a.banner != "" {
		bannerLine = " " + noteStyle.Render("🔔 "+truncStr(a.banner, max(a.width-4, 10)))
	}

	// Chrome budget: header(2) + tabs(1) + banner(1) + help(1) = 5 lines + body
	chrome := 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, centeredTabs, body, bannerLine, help)
}
