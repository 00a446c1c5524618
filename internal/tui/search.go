package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parkwatch/parkwatch/pkg/client"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

type searchField int

const (
	searchVehicle searchField = iota
	searchLocation
	searchDate
	searchTime
	numSearchFields
)

// searchModel filters the caller's tickets. Every criterion is optional
// and matches partially; the time field also accepts a bare hour like
// "11" or "11:".
type searchModel struct {
	client    *client.Client
	fields    [numSearchFields]string
	focus     searchField
	editing   bool
	results   []domain.Ticket
	searched  bool
	cursor    int
	loading   bool
	statusMsg string
	width     int
	height    int
}

type searchResultsMsg struct {
	tickets []domain.Ticket
	err     error
}

func newSearchModel(c *client.Client) searchModel {
	return searchModel{client: c, editing: true}
}

func (m searchModel) Init() tea.Cmd {
	return nil
}

func (m searchModel) runSearch() tea.Cmd {
	c := m.client
	filter := client.TicketFilter{
		VehicleNumber: strings.TrimSpace(m.fields[searchVehicle]),
		Location:      strings.TrimSpace(m.fields[searchLocation]),
		Date:          strings.TrimSpace(m.fields[searchDate]),
		Time:          strings.TrimSpace(m.fields[searchTime]),
	}
	return func() tea.Msg {
		tickets, err := c.SearchTickets(context.Background(), filter)
		return searchResultsMsg{tickets: tickets, err: err}
	}
}

func (m searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultsMsg:
		m.loading = false
		m.searched = true
		if msg.err != nil {
			m.statusMsg = client.Friendly(msg.err, "search failed")
			return m, nil
		}
		m.results = msg.tickets
		m.cursor = 0
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.editing {
			return m.updateCriteria(msg)
		}
		return m.updateResults(msg)
	}
	return m, nil
}

func (m searchModel) updateCriteria(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		m.focus = (m.focus + 1) % numSearchFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numSearchFields) % numSearchFields
	case "enter":
		m.editing = false
		m.loading = true
		return m, m.runSearch()
	case "esc":
		m.editing = false
	default:
		f := &m.fields[m.focus]
		*f = editRune(*f, msg.String())
	}
	return m, nil
}

func (m searchModel) updateResults(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/", "enter":
		m.editing = true
	case "x":
		m.fields = [numSearchFields]string{}
		m.results = nil
		m.searched = false
		m.editing = true
		m.focus = searchVehicle
	}
	return m, nil
}

func (m searchModel) View() string {
	var b strings.Builder

	b.WriteString(" " + searchStyle.Render("SEARCH TICKETS") + "\n\n")

	labels := [numSearchFields]string{"vehicle ", "location", "date    ", "time    "}
	hints := [numSearchFields]string{"partial match", "partial match", "YYYY-MM-DD", "HH:MM or just the hour"}

	for i := searchField(0); i < numSearchFields; i++ {
		cursor := " "
		style := metaStyle
		if m.editing && i == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		value := m.fields[i]
		if value == "" && !(m.editing && i == m.focus) {
			fmt.Fprintf(&b, "%s %s  %s\n", cursor, style.Render(labels[i]), inputPlaceholderStyle.Render(hints[i]))
			continue
		}
		display := value
		if m.editing && i == m.focus {
			display += "█"
		}
		fmt.Fprintf(&b, "%s %s  %s\n", cursor, style.Render(labels[i]), normalStyle.Render(display))
	}

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString("\n " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.statusMsg) + "\n")
	}
	if m.loading {
		b.WriteString(" " + dimStyle.Render("searching..."))
		return b.String()
	}
	if !m.searched {
		b.WriteString(" " + dimStyle.Render("fill in any criteria and press enter"))
		return truncateToHeight(b.String(), m.height)
	}
	if len(m.results) == 0 {
		b.WriteString(" " + dimStyle.Render("no tickets matched"))
		return truncateToHeight(b.String(), m.height)
	}

	now := time.Now()
	for i, t := range m.results {
		cursor := "  "
		rowStyle := dimStyle
		if !m.editing && i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			rowStyle = normalStyle.Bold(true)
		}
		date, tm := localExpiry(t)
		until := untilExpiry(t, now)
		line := cursor + rowStyle.Render(fmt.Sprintf("%-12s", truncStr(t.VehicleNumber, 12))) +
			" " + normalStyle.Render(date+" "+tm) +
			"  " + untilStyle(until).Render(untilLabel(until)) +
			"  " + metaStyle.Render(truncStr(t.Location, 30))
		b.WriteString(line + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
