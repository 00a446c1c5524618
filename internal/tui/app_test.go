package tui

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parkwatch/parkwatch/pkg/client"
	"github.com/parkwatch/parkwatch/pkg/domain"
)

var errTest = errors.New("HTTP 500: something broke")

func newTestApp() App {
	a := NewApp(nil, &domain.User{Name: "Jan", Surname: "Kowalski"}, "http://localhost:3000", true, nil)
	a.width = 80
	a.height = 30
	return a
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"2", viewSearch},
		{"3", viewProfile},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			app := newTestApp()
			model, _ := app.Update(keyMsg(tc.key))
			a := model.(App)
			if a.view != tc.wantView {
				t.Errorf("after key %q: expected view=%d, got %d", tc.key, tc.wantView, a.view)
			}
		})
	}
}

func TestAppNewTicketAndEscBack(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(keyMsg("n"))
	a = model.(App)
	if a.view != viewForm {
		t.Fatalf("expected viewForm after 'n', got %d", a.view)
	}

	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a = model.(App)
	if a.view != viewTickets {
		t.Errorf("expected viewTickets after Esc from form, got %d", a.view)
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	a := newTestApp()
	a.search.editing = false
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("expected quit command on 'q', got nil")
	}
}

func TestAppQNotFiredWhenEditing(t *testing.T) {
	a := newTestApp()
	a.view = viewSearch
	a.search.editing = true
	a.search.focus = searchVehicle

	// 'q' while editing goes into the focused field, not quit
	model, _ := a.Update(keyMsg("q"))
	a = model.(App)
	if a.search.fields[searchVehicle] != "q" {
		t.Errorf("expected search field to be 'q', got %q", a.search.fields[searchVehicle])
	}
}

func TestAppIsEditing(t *testing.T) {
	a := newTestApp()

	a.view = viewForm
	if !a.isEditing() {
		t.Error("expected isEditing=true when view=viewForm")
	}

	a.view = viewSearch
	a.search.editing = true
	if !a.isEditing() {
		t.Error("expected isEditing=true when search.editing=true")
	}

	a.search.editing = false
	if a.isEditing() {
		t.Error("expected isEditing=false when search.editing=false")
	}

	a.view = viewTickets
	if a.isEditing() {
		t.Error("expected isEditing=false on the ticket list")
	}
}

func TestAppNotificationSetsBannerAndProfileFeed(t *testing.T) {
	a := newTestApp()

	msg := NotificationMsg{Message: domain.Message{
		Notification: &domain.NotificationFields{Title: "Ticket expiring", Body: "AB 12345"},
	}}
	model, _ := a.Update(msg)
	a = model.(App)

	if a.banner != "Ticket expiring" {
		t.Errorf("banner = %q, want notification title", a.banner)
	}
	if len(a.profile.notes) != 1 {
		t.Fatalf("profile feed has %d entries, want 1", len(a.profile.notes))
	}

	// Any keypress clears the transient banner
	model, _ = a.Update(keyMsg("3"))
	a = model.(App)
	if a.banner != "" {
		t.Errorf("banner = %q after keypress, want empty", a.banner)
	}
	if len(a.profile.notes) != 1 {
		t.Errorf("profile feed changed on keypress")
	}
}

func TestAppEditTicketOpensPrefilled(t *testing.T) {
	a := newTestApp()

	model, _ := a.Update(editTicketMsg{ticket: domain.Ticket{
		ID: 7, VehicleNumber: "AB 12345", Location: "Main St 1",
		Date: "2026-09-01", Time: "10:00:00",
	}})
	a = model.(App)

	if a.view != viewForm {
		t.Fatalf("expected viewForm after editTicketMsg, got %d", a.view)
	}
	if a.form.editID != 7 {
		t.Errorf("form.editID = %d, want 7", a.form.editID)
	}
	if a.form.fields[fieldVehicle] != "AB 12345" {
		t.Errorf("vehicle field = %q", a.form.fields[fieldVehicle])
	}
}

func TestAppTicketSavedReturnsToListAndRunsHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`)) //nolint:errcheck
	}))
	defer srv.Close()

	hookCalled := false
	a := NewApp(client.New(srv.URL, "token"), nil, "http://localhost:3000", true, func() { hookCalled = true })
	a.width = 80
	a.height = 30
	a.view = viewForm

	model, cmd := a.Update(ticketSavedMsg{id: 3})
	a = model.(App)

	if a.view != viewTickets {
		t.Errorf("expected viewTickets after successful save, got %d", a.view)
	}
	if cmd == nil {
		t.Fatal("expected batched commands after save")
	}
	// The hook runs inside one of the batched commands; drain them.
	runCmds(t, cmd, 0)
	if !hookCalled {
		t.Error("onTicketSaved hook not invoked")
	}
}

func TestAppTicketSaveErrorStaysOnForm(t *testing.T) {
	a := newTestApp()
	a.view = viewForm

	model, _ := a.Update(ticketSavedMsg{edit: true, err: errTest})
	a = model.(App)

	if a.view != viewForm {
		t.Errorf("expected to stay on form after save error, got view=%d", a.view)
	}
	if a.form.statusMsg == "" {
		t.Error("expected an error status on the form")
	}
}

func TestAppViewRendersTabBar(t *testing.T) {
	a := newTestApp()
	model, _ := a.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	a = model.(App)

	view := a.View()
	for _, tab := range []string{"Tickets", "Search", "Profile"} {
		if !strings.Contains(view, tab) {
			t.Errorf("expected %q tab in app view, got:\n%s", tab, view)
		}
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a := newTestApp()
	initial := a.frame

	model, _ := a.Update(shimmerTickMsg{})
	a = model.(App)

	if a.frame != initial+1 {
		t.Errorf("expected frame=%d after shimmerTickMsg, got %d", initial+1, a.frame)
	}
}

// runCmds executes a command tree, recursing into batches, so tests can
// observe side effects without a running program.
func runCmds(t *testing.T, cmd tea.Cmd, depth int) {
	t.Helper()
	if cmd == nil || depth > 3 {
		return
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			runCmds(t, c, depth+1)
		}
	}
}
