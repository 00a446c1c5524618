package tui

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parkwatch/parkwatch/pkg/client"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

type formField int

const (
	fieldVehicle formField = iota
	fieldLocation
	fieldDate
	fieldTime
	fieldImage
	numFields
)

// formModel is the add/edit ticket form. Date and time are entered in
// local time; conversion to UTC happens only after validation passes,
// immediately before the request goes out.
type formModel struct {
	client      *client.Client
	fields      [numFields]string
	focus       formField
	editID      int // 0 = creating a new ticket
	removeImage bool
	statusMsg   string
	submitting  bool
}

type ticketSavedMsg struct {
	id   int
	edit bool
	err  error
}

func newFormModel(c *client.Client) formModel {
	return formModel{client: c}
}

// reset clears the form for a fresh ticket.
func (m formModel) reset() formModel {
	m.fields = [numFields]string{}
	m.focus = fieldVehicle
	m.editID = 0
	m.removeImage = false
	m.statusMsg = ""
	m.submitting = false
	return m
}

// prefill loads an existing ticket for editing, converting its stored
// UTC expiry back to local time for the inputs.
func (m formModel) prefill(t domain.Ticket) formModel {
	m = m.reset()
	m.editID = t.ID
	m.fields[fieldVehicle] = t.VehicleNumber
	m.fields[fieldLocation] = t.Location
	date, tm := localExpiry(t)
	m.fields[fieldDate] = date
	m.fields[fieldTime] = tm
	return m
}

func (m formModel) Init() tea.Cmd {
	return nil
}

func (m formModel) Update(msg tea.Msg) (formModel, tea.Cmd) {
	switch msg := msg.(type) {
	case ticketSavedMsg:
		m.submitting = false
		if msg.err != nil {
			verb := "create"
			if msg.edit {
				verb = "update"
			}
			m.statusMsg = client.Friendly(msg.err, "could not "+verb+" ticket")
		}
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m formModel) updateKeys(msg tea.KeyMsg) (formModel, tea.Cmd) {
	m.statusMsg = ""

	switch msg.String() {
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numFields) % numFields
	case "enter":
		if m.focus == numFields-1 {
			return m.submit()
		}
		m.focus++
	case "ctrl+r":
		if m.editID != 0 {
			m.removeImage = !m.removeImage
			if m.removeImage {
				m.fields[fieldImage] = ""
			}
		}
	default:
		f := &m.fields[m.focus]
		*f = editRune(*f, msg.String())
	}
	return m, nil
}

// submit validates every field locally; nothing goes over the wire
// until all checks pass.
func (m formModel) submit() (formModel, tea.Cmd) {
	now := time.Now()
	vehicle := strings.TrimSpace(m.fields[fieldVehicle])
	location := strings.TrimSpace(m.fields[fieldLocation])
	date := strings.TrimSpace(m.fields[fieldDate])
	tm := strings.TrimSpace(m.fields[fieldTime])
	imagePath := strings.TrimSpace(m.fields[fieldImage])

	for _, check := range []error{
		domain.ValidateVehicleNumber(vehicle),
		domain.ValidateLocation(location),
		domain.ValidateExpiryDate(date, now),
		domain.ValidateExpiryTime(date, tm, now),
	} {
		if check != nil {
			m.statusMsg = check.Error()
			return m, nil
		}
	}

	var imageBase64 string
	if imagePath != "" {
		info, err := os.Stat(imagePath)
		if err != nil {
			m.statusMsg = "image: file not found"
			return m, nil
		}
		if err := domain.ValidateImageFile(info.Name(), info.Size()); err != nil {
			m.statusMsg = err.Error()
			return m, nil
		}
		data, err := os.ReadFile(imagePath)
		if err != nil {
			m.statusMsg = "image: " + err.Error()
			return m, nil
		}
		imageBase64 = base64.StdEncoding.EncodeToString(data)
	}

	utcDate, utcTime, err := domain.ExpiryToUTC(date, tm, now.Location())
	if err != nil {
		m.statusMsg = "could not convert expiry to UTC"
		return m, nil
	}

	m.submitting = true
	c := m.client

	if m.editID != 0 {
		id := m.editID
		req := client.UpdateTicketRequest{
			VehicleNumber: vehicle,
			Location:      location,
			Date:          utcDate,
			Time:          utcTime,
			ImageBase64:   imageBase64,
			RemoveImage:   m.removeImage,
		}
		return m, func() tea.Msg {
			err := c.UpdateTicket(context.Background(), id, req)
			return ticketSavedMsg{id: id, edit: true, err: err}
		}
	}

	req := client.CreateTicketRequest{
		VehicleNumber: vehicle,
		Location:      location,
		Date:          utcDate,
		Time:          utcTime,
		ImageBase64:   imageBase64,
	}
	return m, func() tea.Msg {
		id, err := c.CreateTicket(context.Background(), req)
		return ticketSavedMsg{id: id, err: err}
	}
}

func (m formModel) View() string {
	var b strings.Builder

	title := "NEW TICKET"
	if m.editID != 0 {
		title = fmt.Sprintf("EDIT TICKET #%d", m.editID)
	}
	b.WriteString(" " + searchStyle.Render(title) + "\n\n")

	labels := [numFields]string{"vehicle ", "location", "date    ", "time    ", "image   "}
	hints := [numFields]string{"e.g. AB 12345", "street or car park", "YYYY-MM-DD (local)", "HH:MM (local)", "path to photo, optional"}

	for i := formField(0); i < numFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}

		value := m.fields[i]
		if value == "" && i != m.focus {
			fmt.Fprintf(&b, "%s %s  %s\n", cursor, style.Render(labels[i]), inputPlaceholderStyle.Render(hints[i]))
			continue
		}
		display := value
		if i == m.focus {
			display += "█"
		}
		fmt.Fprintf(&b, "%s %s  %s\n", cursor, style.Render(labels[i]), normalStyle.Render(display))
	}

	if m.editID != 0 {
		b.WriteString("\n ")
		if m.removeImage {
			b.WriteString(accentStyle.Render("[x] remove current photo") + "  " + dimStyle.Render("ctrl+r"))
		} else {
			b.WriteString(dimStyle.Render("[ ] remove current photo  ctrl+r"))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.submitting {
		b.WriteString(" " + dimStyle.Render("saving..."))
	} else if m.statusMsg != "" {
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	}

	return b.String()
}
