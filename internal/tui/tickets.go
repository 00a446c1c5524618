package tui

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/parkwatch/parkwatch/internal/browser"
	"github.com/parkwatch/parkwatch/pkg/client"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

type ticketsModel struct {
	client    *client.Client
	tickets   []domain.Ticket
	cursor    int
	detail    bool
	current   *domain.Ticket
	err       error
	loading   bool
	statusMsg string
	width     int
	height    int
}

type ticketsLoadedMsg struct {
	tickets []domain.Ticket
	err     error
}

type ticketLoadedMsg struct {
	ticket *domain.Ticket
	err    error
}

type ticketDeletedMsg struct {
	id  int
	err error
}

type copyResultMsg struct{ err error }

type imageSavedMsg struct {
	path string
	err  error
}

// editTicketMsg asks the root model to open the form prefilled with an
// existing ticket.
type editTicketMsg struct {
	ticket domain.Ticket
}

func newTicketsModel(c *client.Client) ticketsModel {
	return ticketsModel{client: c, loading: true}
}

func (m ticketsModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		tickets, err := c.SearchTickets(context.Background(), client.TicketFilter{})
		return ticketsLoadedMsg{tickets: tickets, err: err}
	}
}

func (m ticketsModel) loadDetail(id int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ticket, err := c.GetTicket(context.Background(), id)
		return ticketLoadedMsg{ticket: ticket, err: err}
	}
}

func (m ticketsModel) Init() tea.Cmd {
	return m.load()
}

func (m ticketsModel) Update(msg tea.Msg) (ticketsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ticketsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.tickets = msg.tickets
		}
		if m.cursor >= len(m.tickets) {
			m.cursor = 0
		}
		return m, nil

	case ticketLoadedMsg:
		if msg.err != nil {
			m.statusMsg = client.Friendly(msg.err, "could not load ticket")
			m.detail = false
			return m, nil
		}
		m.current = msg.ticket
		return m, nil

	case ticketDeletedMsg:
		if msg.err != nil {
			m.statusMsg = client.Friendly(msg.err, "could not delete ticket")
			return m, nil
		}
		// Only a confirmed backend delete touches the local list.
		kept := m.tickets[:0]
		for _, t := range m.tickets {
			if t.ID != msg.id {
				kept = append(kept, t)
			}
		}
		m.tickets = kept
		if m.cursor >= len(m.tickets) && m.cursor > 0 {
			m.cursor--
		}
		m.detail = false
		m.current = nil
		m.statusMsg = "ticket deleted"
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = "copy failed"
		} else {
			m.statusMsg = "copied!"
		}
		return m, nil

	case imageSavedMsg:
		if msg.err != nil {
			m.statusMsg = client.Friendly(msg.err, "could not fetch photo")
		} else {
			m.statusMsg = "photo saved to " + msg.path
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.detail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m ticketsModel) updateList(msg tea.KeyMsg) (ticketsModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.tickets)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.tickets) {
			m.detail = true
			m.current = nil
			return m, m.loadDetail(m.tickets[m.cursor].ID)
		}
	case "d":
		if m.cursor < len(m.tickets) {
			return m, m.deleteTicket(m.tickets[m.cursor].ID)
		}
	case "c":
		if m.cursor < len(m.tickets) {
			return m, copyVehicleNumber(m.tickets[m.cursor].VehicleNumber)
		}
	case "e":
		if m.cursor < len(m.tickets) {
			ticket := m.tickets[m.cursor]
			return m, func() tea.Msg { return editTicketMsg{ticket: ticket} }
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m ticketsModel) updateDetail(msg tea.KeyMsg) (ticketsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.detail = false
		m.current = nil
	case "d":
		if m.current != nil {
			return m, m.deleteTicket(m.current.ID)
		}
	case "c":
		if m.current != nil {
			return m, copyVehicleNumber(m.current.VehicleNumber)
		}
	case "e":
		if m.current != nil {
			ticket := *m.current
			return m, func() tea.Msg { return editTicketMsg{ticket: ticket} }
		}
	case "p":
		if m.current != nil {
			return m, m.fetchImage(m.current.ID)
		}
	}
	return m, nil
}

func (m ticketsModel) deleteTicket(id int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		err := c.DeleteTicket(context.Background(), id)
		return ticketDeletedMsg{id: id, err: err}
	}
}

func copyVehicleNumber(number string) tea.Cmd {
	return func() tea.Msg {
		err := clipboard.WriteAll(number)
		return copyResultMsg{err: err}
	}
}

// fetchImage downloads the ticket photo, writes it to a temp file, and
// opens it with the system viewer.
func (m ticketsModel) fetchImage(id int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		encoded, err := c.TicketImage(context.Background(), id)
		if err != nil {
			return imageSavedMsg{err: err}
		}
		if encoded == "" {
			return imageSavedMsg{err: fmt.Errorf("this ticket has no photo")}
		}
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return imageSavedMsg{err: fmt.Errorf("decode photo: %w", err)}
		}
		path := filepath.Join(os.TempDir(), fmt.Sprintf("parkwatch-ticket-%d%s", id, imageExt(data)))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			return imageSavedMsg{err: err}
		}
		browser.Open(path) //nolint:errcheck // best-effort open
		return imageSavedMsg{path: path}
	}
}

func imageExt(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	default:
		return ".jpg"
	}
}

func (m ticketsModel) View() string {
	if m.detail {
		return m.viewDetail()
	}

	var b strings.Builder

	b.WriteString(" " + searchStyle.Render("YOUR TICKETS") + "\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + statusStyle.Render(m.statusMsg) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(client.Friendly(m.err, "could not load tickets")))
		return b.String()
	}
	if len(m.tickets) == 0 {
		b.WriteString(" " + dimStyle.Render("no tickets yet — press n to add one"))
		return b.String()
	}

	maxVisible := m.height - 5
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}

	now := time.Now()
	for i := start; i < len(m.tickets) && i < start+maxVisible; i++ {
		t := m.tickets[i]

		cursor := "  "
		rowStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}

		date, tm := localExpiry(t)
		until := untilExpiry(t, now)

		vehicle := fmt.Sprintf("%-12s", truncStr(t.VehicleNumber, 12))
		expiry := fmt.Sprintf("%s %s", date, tm)
		label := untilStyle(until).Render(fmt.Sprintf("%-9s", untilLabel(until)))

		locWidth := m.width - 42
		if locWidth < 10 {
			locWidth = 10
		}
		loc := metaStyle.Render(truncStr(t.Location, locWidth))

		line := cursor + rowStyle.Render(vehicle) + " " + normalStyle.Render(expiry) + "  " + label + " " + loc
		if i == m.cursor {
			padded := line + strings.Repeat(" ", max(m.width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func (m ticketsModel) viewDetail() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")

	if m.current == nil {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	t := *m.current

	date, tm := localExpiry(t)
	until := untilExpiry(t, time.Now())

	b.WriteString(" " + selectedStyle.Render(t.VehicleNumber) + "  " + untilStyle(until).Render(untilLabel(until)) + "\n\n")
	b.WriteString(" " + metaStyle.Render("location") + "  " + normalStyle.Render(t.Location) + "\n")
	b.WriteString(" " + metaStyle.Render("expires ") + "  " + normalStyle.Render(date+" "+tm) + " " + dimStyle.Render("(local time)") + "\n")
	b.WriteString(" " + metaStyle.Render("ticket  ") + "  " + dimStyle.Render(fmt.Sprintf("#%d", t.ID)) + "\n")
	b.WriteString("\n " + dimStyle.Render("p to fetch the photo, e to edit, d to delete") + "\n")

	if m.statusMsg != "" {
		b.WriteString("\n " + statusStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
