package tui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"movix-cli/fakeapi"
	"movix-cli/model"
	"movix-cli/route"
	"movix-cli/service"
	"movix-cli/state"
	"movix-cli/store"
)

type testItem struct {
	value string
}

func (t testItem) Title() string       { return t.value }
func (t testItem) Description() string { return "" }
func (t testItem) FilterValue() string { return strings.ToLower(t.value) }

type backend struct {
	url     string
	storage *store.MemoryStorage
	store   *state.Store
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	api := fakeapi.New("tui-test", nil)
	if err := api.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	storage := store.NewMemoryStorage()
	client := service.NewClient(server.URL, server.Client(),
		service.WithTokenSource(func() string { return store.Token(storage) }),
		service.WithRetry(1, time.Millisecond, time.Millisecond),
	)
	st := state.New(storage, state.Services{
		Auth:     service.NewAuthService(client),
		Movies:   service.NewMovieService(client),
		Bookings: service.NewBookingService(client),
	}, nil)
	return &backend{url: server.URL, storage: storage, store: st}
}

func (b *backend) login(t *testing.T, username, password string) {
	t.Helper()
	b.store.Run(context.Background(), b.store.Login(model.LoginCredentials{Username: username, Password: password}))
	if !b.store.Auth().IsAuthenticated {
		t.Fatalf("login as %s failed: %q", username, b.store.Auth().Error)
	}
}

// start builds the model at path, sizes it and runs the mount requests.
func start(t *testing.T, b *backend, path string) appModel {
	t.Helper()
	m := New(b.store, Options{Path: path, ToastTTL: time.Millisecond, CursorMode: cursor.CursorStatic}).(appModel)
	m = drain(t, m, m.Init())
	return send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
}

// drain runs cmd and feeds every resulting request completion back into the
// model until nothing is left. Spinner ticks, timers and quits are dropped;
// start keeps the cursor steady so no blink timer is ever waited on.
func drain(t *testing.T, m appModel, cmd tea.Cmd) appModel {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 500 {
			t.Fatal("command queue did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case spinner.TickMsg:
		case actionMsg:
			updated, more := m.Update(msg)
			m = updated.(appModel)
			queue = append(queue, more)
		}
	}
	return m
}

func send(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	updated, cmd := m.Update(msg)
	return drain(t, updated.(appModel), cmd)
}

func press(t *testing.T, m appModel, keys ...string) appModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "backspace":
			msg = tea.KeyMsg{Type: tea.KeyBackspace}
		case "ctrl+n":
			msg = tea.KeyMsg{Type: tea.KeyCtrlN}
		case "ctrl+o":
			msg = tea.KeyMsg{Type: tea.KeyCtrlO}
		case "ctrl+x":
			msg = tea.KeyMsg{Type: tea.KeyCtrlX}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m = send(t, m, msg)
	}
	return m
}

func typeText(t *testing.T, m appModel, text string) appModel {
	t.Helper()
	for _, r := range text {
		if r == ' ' {
			m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
			continue
		}
		m = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestAnonymousStartsAtHome(t *testing.T) {
	m := start(t, newBackend(t), "")

	if m.path != route.PathHome {
		t.Fatalf("expected home, got %q", m.path)
	}
	if !strings.Contains(m.View(), "Welcome to Movix") {
		t.Fatalf("expected welcome panel, got %q", m.View())
	}
}

func TestProtectedPathRedirectsToLogin(t *testing.T) {
	m := start(t, newBackend(t), route.PathDashboard)

	if m.path != route.PathLogin {
		t.Fatalf("expected redirect to login, got %q", m.path)
	}
}

func TestLoginFormLandsOnDashboard(t *testing.T) {
	b := newBackend(t)
	m := start(t, b, "")

	m = press(t, m, "l")
	if m.path != route.PathLogin {
		t.Fatalf("expected login page, got %q", m.path)
	}
	m = typeText(t, m, fakeapi.SeedMemberUser)
	m = press(t, m, "tab")
	m = typeText(t, m, fakeapi.SeedMemberPass)
	m = press(t, m, "enter")

	if m.path != route.PathDashboard {
		t.Fatalf("expected dashboard, got %q (auth error %q)", m.path, b.store.Auth().Error)
	}
	if got := len(m.movieList.Items()); got != 3 {
		t.Fatalf("expected mount to fetch 3 movies, got %d", got)
	}
	if m.toast.text != "Welcome back, guest" || m.toast.isErr {
		t.Fatalf("unexpected toast %+v", m.toast)
	}
	if store.Token(b.storage) == "" {
		t.Fatal("expected session to be persisted")
	}
}

func TestLoginForm_WrongPasswordStaysOnLogin(t *testing.T) {
	b := newBackend(t)
	m := start(t, b, route.PathLogin)

	m = typeText(t, m, fakeapi.SeedMemberUser)
	m = press(t, m, "tab")
	m = typeText(t, m, "nope")
	m = press(t, m, "enter")

	if m.path != route.PathLogin {
		t.Fatalf("expected to stay on login, got %q", m.path)
	}
	if !strings.Contains(m.View(), "Incorrect username or password") {
		t.Fatalf("expected server message in view, got %q", m.View())
	}
}

func TestAdminLandsOnAdminDashboard(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedAdminUser, fakeapi.SeedAdminPassword)

	m := start(t, b, "")

	if m.path != route.PathAdmin {
		t.Fatalf("expected admin dashboard, got %q", m.path)
	}
	if len(m.movieList.Items()) != 3 {
		t.Fatalf("expected movies to be fetched, got %d", len(m.movieList.Items()))
	}
	if b.store.Bookings().Error != "" {
		t.Fatalf("unexpected bookings error %q", b.store.Bookings().Error)
	}
}

func TestMemberIsSentAwayFromAdmin(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)

	m := start(t, b, route.PathAdmin)

	if m.path != route.PathDashboard {
		t.Fatalf("expected member dashboard, got %q", m.path)
	}
}

func TestBookMovie_SoldOutShowsError(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)
	m := start(t, b, "")

	m.movieList.Select(2)
	m = press(t, m, "enter")
	if !m.booking.open || m.booking.movie.Title != "Heat" {
		t.Fatalf("expected booking dialog for Heat, got %+v", m.booking.movie)
	}
	m = press(t, m, "backspace", "5", "enter")

	if m.toast.text != "Sold out" || !m.toast.isErr {
		t.Fatalf("expected sold out toast, got %+v", m.toast)
	}
	if !m.booking.open {
		t.Fatal("expected dialog to stay open after a rejected booking")
	}
	if len(b.store.Bookings().Bookings) != 0 {
		t.Fatalf("expected no bookings, got %v", b.store.Bookings().Bookings)
	}
}

func TestBookMovie_InvalidSeatsIsLocal(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)
	m := start(t, b, "")

	m = press(t, m, "enter", "backspace", "1", "1", "enter")

	if m.toast.text != "number of seats must be at most 10" {
		t.Fatalf("expected validation toast, got %+v", m.toast)
	}
}

func TestBookThenCancelWithConfirmation(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)
	m := start(t, b, "")

	m = press(t, m, "enter", "backspace", "2", "enter")
	if m.toast.text != state.MsgMovieBooked {
		t.Fatalf("expected booked toast, got %+v", m.toast)
	}
	if m.booking.open {
		t.Fatal("expected dialog to close after booking")
	}
	if b.store.Bookings().Success != "" {
		t.Fatal("expected success message to be cleared after the toast")
	}
	if got := m.store.Movies().Movies[0].AvailableSeats; got != 78 {
		t.Fatalf("expected refreshed seat count 78, got %d", got)
	}

	m = press(t, m, "tab")
	if len(m.bookingList.Items()) != 1 {
		t.Fatalf("expected one booking, got %d", len(m.bookingList.Items()))
	}
	m = press(t, m, "ctrl+x")
	if len(b.store.Bookings().Bookings) != 1 {
		t.Fatal("expected first ctrl+x only to arm the confirmation")
	}
	if !strings.Contains(m.View(), "again") {
		t.Fatalf("expected confirmation prompt, got %q", m.View())
	}
	m = press(t, m, "ctrl+x")

	if len(b.store.Bookings().Bookings) != 0 {
		t.Fatalf("expected booking to be cancelled, got %v", b.store.Bookings().Bookings)
	}
	if m.toast.text != state.MsgBookingCancelled {
		t.Fatalf("expected cancelled toast, got %+v", m.toast)
	}
	if got := m.store.Movies().Movies[0].AvailableSeats; got != 80 {
		t.Fatalf("expected seats to be released after cancel, got %d", got)
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)
	m := start(t, b, "")

	m = press(t, m, "ctrl+o")

	if m.path != route.PathLogin {
		t.Fatalf("expected login page, got %q", m.path)
	}
	if store.Token(b.storage) != "" {
		t.Fatal("expected stored token to be cleared")
	}
	if b.store.Auth().IsAuthenticated {
		t.Fatal("expected anonymous session")
	}
}

func TestNotFoundOffersHome(t *testing.T) {
	m := start(t, newBackend(t), "/nowhere")

	if !strings.Contains(m.View(), "Page not found") {
		t.Fatalf("expected not found page, got %q", m.View())
	}
	m = press(t, m, "enter")
	if m.path != route.PathHome {
		t.Fatalf("expected home, got %q", m.path)
	}
}

func TestAdminAddMovie(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedAdminUser, fakeapi.SeedAdminPassword)
	m := start(t, b, "")

	m = press(t, m, "ctrl+n", "ctrl+n")
	if m.adminTab != adminTabAdd {
		t.Fatalf("expected add tab, got %d", m.adminTab)
	}
	for _, value := range []string{"Alien", "In space no one can hear you scream.", "117", "10", "2030-01-02 20:00", "30"} {
		m = typeText(t, m, value)
		m = press(t, m, "enter")
	}

	if m.toast.text != msgMovieAdded {
		t.Fatalf("expected added toast, got %+v (movie error %q)", m.toast, b.store.Movies().Error)
	}
	if m.adminTab != adminTabMovies {
		t.Fatalf("expected manage tab after adding, got %d", m.adminTab)
	}
	if got := len(b.store.Movies().Movies); got != 4 {
		t.Fatalf("expected 4 movies, got %d", got)
	}
}

func TestAdminAddMovie_BadNumberStaysInForm(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedAdminUser, fakeapi.SeedAdminPassword)
	m := start(t, b, "")

	m = press(t, m, "ctrl+n", "ctrl+n")
	for _, value := range []string{"Alien", "Scream", "long", "10", "2030-01-02 20:00", "30"} {
		m = typeText(t, m, value)
		m = press(t, m, "enter")
	}

	if m.movieForm.err != "duration must be a whole number of minutes" {
		t.Fatalf("unexpected form error %q", m.movieForm.err)
	}
	if len(b.store.Movies().Movies) != 3 {
		t.Fatal("expected no request to be made")
	}
}

func TestEditPagePrefillsAndSaves(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedAdminUser, fakeapi.SeedAdminPassword)
	m := start(t, b, route.MovieEdit(2))

	if !m.editLoaded {
		t.Fatalf("expected edit form to be prefilled (movie error %q)", b.store.Movies().Error)
	}
	if got := m.editForm.Value(fieldTitle); got != "Spirited Away" {
		t.Fatalf("expected prefilled title, got %q", got)
	}
	if got := m.editForm.Value(fieldDuration); got != "125" {
		t.Fatalf("expected prefilled duration, got %q", got)
	}

	m = typeText(t, m, " (dub)")
	for range 5 {
		m = press(t, m, "enter")
	}

	if m.toast.text != msgMovieUpdated {
		t.Fatalf("expected updated toast, got %+v (movie error %q)", m.toast, b.store.Movies().Error)
	}
	if m.path != route.PathAdmin {
		t.Fatalf("expected to return to admin, got %q", m.path)
	}
}

func TestDeleteMovie_GoneOnServerLeavesDetail(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedAdminUser, fakeapi.SeedAdminPassword)
	m := start(t, b, route.MovieDetail(2))
	if current := b.store.Movies().CurrentMovie; current == nil || current.ID != 2 {
		t.Fatalf("expected movie 2 to be loaded, got %+v", current)
	}

	other := service.NewClient(b.url, nil, service.WithTokenSource(func() string { return b.store.Auth().Token }))
	if err := service.NewMovieService(other).Delete(context.Background(), 2); err != nil {
		t.Fatalf("delete elsewhere: %v", err)
	}

	m = press(t, m, "ctrl+x", "ctrl+x")

	if !m.toast.isErr || m.toast.text != "Movie not found" {
		t.Fatalf("expected not found toast, got %+v", m.toast)
	}
	if m.path != route.PathAdmin {
		t.Fatalf("expected to leave the detail page, got %q", m.path)
	}
	if len(m.movieList.Items()) != 2 {
		t.Fatalf("expected catalogue to be reloaded, got %d movies", len(m.movieList.Items()))
	}
}

func TestMovieDetail_NotFound(t *testing.T) {
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)

	m := start(t, b, route.MovieDetail(404))

	if !strings.Contains(m.View(), "Movie not found") {
		t.Fatalf("expected server message, got %q", m.View())
	}
}

func newFilterModel(t *testing.T, items []list.Item) *appModel {
	t.Helper()
	b := newBackend(t)
	b.login(t, fakeapi.SeedMemberUser, fakeapi.SeedMemberPass)
	m := New(b.store, Options{}).(appModel)
	m.userTab = userTabMovies
	m.movieList = newList("Movies")
	m.movieList.SetItems(items)
	return &m
}

func TestHandleFilterInput_AppendsRunes(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "Heat"},
		testItem{value: "Spirited Away"},
	})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.movieList.FilterValue(); got != "h" {
		t.Fatalf("expected filter value to be %q, got %q", "h", got)
	}

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")}) {
		t.Fatal("expected filter input to be handled")
	}
	if got := m.movieList.FilterValue(); got != "he" {
		t.Fatalf("expected filter value to be %q, got %q", "he", got)
	}
}

func TestHandleFilterInput_Backspace(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "Heat"},
		testItem{value: "Spirited Away"},
	})

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h")})
	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeyBackspace}) {
		t.Fatal("expected backspace to be handled")
	}
	if got := m.movieList.FilterValue(); got != "h" {
		t.Fatalf("expected filter value to be %q, got %q", "h", got)
	}
}

func TestHandleFilterInput_Space(t *testing.T) {
	m := newFilterModel(t, []list.Item{
		testItem{value: "Spirited Away"},
	})

	_ = m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("spirited")})

	if !m.handleFilterInput(tea.KeyMsg{Type: tea.KeySpace}) {
		t.Fatal("expected space to be handled")
	}
	if got := m.movieList.FilterValue(); got != "spirited " {
		t.Fatalf("expected filter value to be %q, got %q", "spirited ", got)
	}
}

func TestHandleFilterInput_IgnoredOnForms(t *testing.T) {
	b := newBackend(t)
	m := New(b.store, Options{Path: route.PathLogin}).(appModel)

	if m.handleFilterInput(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}) {
		t.Fatal("expected runes on the login page to reach the form")
	}
}

func TestFormFocusCycles(t *testing.T) {
	f := newForm("test",
		fieldDef{label: "a"},
		fieldDef{label: "b"},
	)
	f.Focus()

	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focus != 1 {
		t.Fatalf("expected focus 1, got %d", f.focus)
	}
	f.Update(tea.KeyMsg{Type: tea.KeyTab})
	if f.focus != 0 {
		t.Fatalf("expected focus to wrap to 0, got %d", f.focus)
	}
	f.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if f.focus != 1 {
		t.Fatalf("expected shift+tab to wrap to 1, got %d", f.focus)
	}
	if _, submitted := f.Update(tea.KeyMsg{Type: tea.KeyEnter}); !submitted {
		t.Fatal("expected enter on the last field to submit")
	}
}
