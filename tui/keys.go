package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"movix-cli/model"
	"movix-cli/route"
)

func (m *appModel) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit, true
	}
	if m.booking.open {
		return m.handleBookingKey(msg), true
	}

	if key != "ctrl+x" {
		m.confirm = confirmation{}
	}

	switch key {
	case "esc":
		if listPtr := m.activeList(); listPtr != nil && listPtr.FilterValue() != "" {
			listPtr.ResetFilter()
			return nil, true
		}
		m.goBack()
		return nil, true
	case "ctrl+o":
		if m.store.Auth().IsAuthenticated {
			return m.dispatch(m.store.Logout()), true
		}
	case "ctrl+r":
		if m.store.Auth().IsAuthenticated {
			m.refresh()
			return nil, true
		}
	}

	res := m.resolve()
	if res.Decision.Kind == route.Loading {
		return nil, true
	}
	switch res.Page {
	case route.PageHome:
		return m.handleHomeKey(key)
	case route.PageLogin:
		return m.handleLoginKey(msg)
	case route.PageRegister:
		return m.handleRegisterKey(msg)
	case route.PageDashboard:
		return m.handleDashboardKey(msg)
	case route.PageBookingHistory:
		return m.handleHistoryKey(msg)
	case route.PageMovieDetail:
		return m.handleDetailKey(key, res)
	case route.PageMovieEdit:
		return m.handleEditKey(msg, res)
	case route.PageAdmin:
		return m.handleAdminKey(msg)
	default:
		if key == "enter" {
			m.navigate(route.PathHome)
			return nil, true
		}
		if key == "q" {
			return tea.Quit, true
		}
	}
	return nil, false
}

func (m *appModel) handleHomeKey(key string) (tea.Cmd, bool) {
	switch key {
	case "l", "enter":
		m.navigate(route.PathLogin)
	case "r":
		m.navigate(route.PathRegister)
	case "q":
		return tea.Quit, true
	default:
		return nil, false
	}
	return nil, true
}

func (m *appModel) handleLoginKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+r" {
		m.navigate(route.PathRegister)
		return nil, true
	}
	if m.store.Auth().Loading {
		return nil, true
	}
	cmd, submitted := m.loginForm.Update(msg)
	if !submitted {
		return cmd, true
	}
	creds := model.LoginCredentials{
		Username: m.loginForm.Value(0),
		Password: m.loginForm.Raw(1),
	}
	return m.dispatch(m.store.Login(creds)), true
}

func (m *appModel) handleRegisterKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+l" {
		m.navigate(route.PathLogin)
		return nil, true
	}
	if m.store.Auth().Loading {
		return nil, true
	}
	cmd, submitted := m.registerForm.Update(msg)
	if !submitted {
		return cmd, true
	}
	creds := model.RegisterCredentials{
		Username: m.registerForm.Value(0),
		Password: m.registerForm.Raw(1),
		IsAdmin:  parseYesNo(m.registerForm.Value(2)),
	}
	return m.dispatch(m.store.Register(creds)), true
}

func (m *appModel) handleDashboardKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "tab", "ctrl+n":
		m.userTab = (m.userTab + 1) % len(userTabNames)
		return nil, true
	case "shift+tab", "ctrl+p":
		m.userTab = (m.userTab + len(userTabNames) - 1) % len(userTabNames)
		return nil, true
	case "ctrl+y":
		m.navigate(route.PathBookingHistory)
		return nil, true
	}
	if m.handleFilterInput(msg) {
		return nil, true
	}

	if m.userTab == userTabBookings {
		if key == "ctrl+x" {
			return m.cancelSelected(m.bookingList), true
		}
		return nil, false
	}
	switch key {
	case "enter", "ctrl+b":
		movie, ok := m.selectedMovie(m.movieList)
		if !ok {
			return nil, true
		}
		return m.openBooking(movie), true
	case "ctrl+d":
		if movie, ok := m.selectedMovie(m.movieList); ok {
			m.navigate(route.MovieDetail(movie.ID))
		}
		return nil, true
	}
	return nil, false
}

func (m *appModel) handleHistoryKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.handleFilterInput(msg) {
		return nil, true
	}
	if msg.String() == "ctrl+x" {
		return m.cancelSelected(m.historyList), true
	}
	return nil, false
}

func (m *appModel) handleDetailKey(key string, res route.Resolution) (tea.Cmd, bool) {
	current := m.store.Movies().CurrentMovie
	id, _ := res.ID()
	if current == nil || current.ID != id {
		if key == "q" {
			return tea.Quit, true
		}
		return nil, false
	}
	admin := m.store.Auth().IsAdmin()
	switch key {
	case "enter", "b", "ctrl+b":
		return m.openBooking(*current), true
	case "e", "ctrl+e":
		if admin {
			m.navigate(route.MovieEdit(current.ID))
		}
		return nil, true
	case "ctrl+x":
		if admin {
			return m.confirmed(confirmDelete, current.ID, func() tea.Cmd {
				return m.dispatch(m.store.DeleteMovie(current.ID))
			}), true
		}
		return nil, true
	case "q":
		return tea.Quit, true
	}
	return nil, false
}

func (m *appModel) handleEditKey(msg tea.KeyMsg, res route.Resolution) (tea.Cmd, bool) {
	if !m.editLoaded || m.store.Movies().Loading {
		return nil, true
	}
	cmd, submitted := m.editForm.Update(msg)
	if !submitted {
		return cmd, true
	}
	id, ok := res.ID()
	if !ok {
		return nil, true
	}
	edit, err := parseMovieFields(m.editForm)
	if err != nil {
		m.editForm.err = err.Error()
		return nil, true
	}
	return m.dispatch(m.store.UpdateMovie(id, edit)), true
}

func (m *appModel) handleAdminKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	key := msg.String()
	switch key {
	case "ctrl+n":
		return m.switchAdminTab(1), true
	case "ctrl+p":
		return m.switchAdminTab(-1), true
	}

	if m.adminTab == adminTabAdd {
		if m.store.Movies().Loading {
			return nil, true
		}
		cmd, submitted := m.movieForm.Update(msg)
		if !submitted {
			return cmd, true
		}
		data, err := parseMovieForm(m.movieForm)
		if err != nil {
			m.movieForm.err = err.Error()
			return nil, true
		}
		return m.dispatch(m.store.AddMovie(data)), true
	}

	switch key {
	case "tab":
		return m.switchAdminTab(1), true
	case "shift+tab":
		return m.switchAdminTab(-1), true
	}
	if m.handleFilterInput(msg) {
		return nil, true
	}
	if m.adminTab != adminTabMovies {
		return nil, false
	}
	movie, ok := m.selectedMovie(m.movieList)
	switch key {
	case "enter":
		if ok {
			m.navigate(route.MovieDetail(movie.ID))
		}
		return nil, true
	case "ctrl+e":
		if ok {
			m.navigate(route.MovieEdit(movie.ID))
		}
		return nil, true
	case "ctrl+x":
		if !ok {
			return nil, true
		}
		return m.confirmed(confirmDelete, movie.ID, func() tea.Cmd {
			return m.dispatch(m.store.DeleteMovie(movie.ID))
		}), true
	}
	return nil, false
}

func (m *appModel) switchAdminTab(step int) tea.Cmd {
	n := len(adminTabNames)
	m.adminTab = (m.adminTab + step + n) % n
	if m.adminTab == adminTabAdd {
		return m.movieForm.Focus()
	}
	return nil
}

func (m *appModel) handleBookingKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.closeBooking()
		return nil
	case "enter":
		if m.store.Bookings().Loading {
			return nil
		}
		seats, err := strconv.Atoi(strings.TrimSpace(m.booking.seats.Value()))
		if err != nil {
			m.booking.err = "number of seats must be a whole number"
			return nil
		}
		m.booking.err = ""
		form := model.BookingFormData{NumSeats: seats}
		return m.dispatch(m.store.BookMovie(m.booking.movie.ID, form))
	}
	m.booking.err = ""
	var cmd tea.Cmd
	m.booking.seats, cmd = m.booking.seats.Update(msg)
	return cmd
}

// cancelSelected cancels by the selected booking's movie: the server removes
// every booking the user holds for that movie.
func (m *appModel) cancelSelected(l list.Model) tea.Cmd {
	booking, ok := m.selectedBooking(l)
	if !ok {
		return nil
	}
	return m.confirmed(confirmCancel, booking.MovieID, func() tea.Cmd {
		return m.dispatch(m.store.CancelBooking(booking.MovieID))
	})
}

// confirmed arms the confirmation on the first call and runs fire on the
// second call for the same target.
func (m *appModel) confirmed(kind confirmKind, id int, fire func() tea.Cmd) tea.Cmd {
	if m.confirm.kind == kind && m.confirm.id == id {
		m.confirm = confirmation{}
		return fire()
	}
	m.confirm = confirmation{kind: kind, id: id}
	return nil
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	listPtr.SetFilterText(listPtr.FilterValue() + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := trimLastRune(listPtr.FilterValue())
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}
