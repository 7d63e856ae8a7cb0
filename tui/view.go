package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"movix-cli/model"
	"movix-cli/route"
)

func (m appModel) View() string {
	res := m.resolve()
	header := m.headerView(res)

	var body string
	if res.Decision.Kind == route.Loading {
		body = m.loadingView("Checking session")
	} else {
		body = m.pageView(res)
	}

	out := header + "\n\n" + body
	if line := m.statusLine(); line != "" {
		out += "\n\n" + line
	}
	return out
}

func (m appModel) pageView(res route.Resolution) string {
	switch res.Page {
	case route.PageHome:
		return m.homeView()
	case route.PageLogin:
		return m.authFormView(m.loginForm, "ctrl+r create an account instead")
	case route.PageRegister:
		return m.authFormView(m.registerForm, "ctrl+l sign in instead")
	case route.PageDashboard:
		return m.dashboardView()
	case route.PageBookingHistory:
		return m.bookingsView(m.historyList, "You have no bookings yet.")
	case route.PageMovieDetail:
		return m.detailView(res)
	case route.PageMovieEdit:
		return m.editView()
	case route.PageAdmin:
		return m.adminView()
	default:
		return m.notFoundView(res.Path)
	}
}

func (m appModel) headerView(res route.Resolution) string {
	title := lipgloss.NewStyle().Bold(true).Render("Movix")
	auth := m.store.Auth()

	sub := []string{}
	if auth.IsAuthenticated {
		name := "there"
		if auth.User != nil && auth.User.Username != "" {
			name = auth.User.Username
		}
		greeting := "Hi, " + name
		if auth.IsAdmin() {
			greeting += " " + badgeStyle.Render("admin")
		}
		sub = append(sub, greeting)
	}
	sub = append(sub, res.Path)
	if m.apiURL != "" {
		sub = append(sub, m.apiURL)
	}
	meta := "\n" + hint(strings.Join(sub, " • "))

	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(m.hints(res))
}

func (m appModel) hints(res route.Resolution) string {
	base := "ctrl+c quit • esc back"
	if m.store.Auth().IsAuthenticated {
		base += " • ctrl+o logout • ctrl+r refresh"
	}
	if m.booking.open {
		return "enter confirm booking • esc close"
	}
	switch res.Page {
	case route.PageHome:
		return "l sign in • r register • q quit"
	case route.PageLogin, route.PageRegister:
		return base + " • tab next field • enter submit"
	case route.PageDashboard:
		if m.userTab == userTabBookings {
			return base + " • tab switch • type to filter • ctrl+x cancel booking • ctrl+y history"
		}
		return base + " • tab switch • type to filter • enter book • ctrl+d details • ctrl+y history"
	case route.PageBookingHistory:
		return base + " • type to filter • ctrl+x cancel booking"
	case route.PageMovieDetail:
		if m.store.Auth().IsAdmin() {
			return base + " • b book • e edit • ctrl+x delete"
		}
		return base + " • b book"
	case route.PageMovieEdit:
		return base + " • tab next field • enter save"
	case route.PageAdmin:
		if m.adminTab == adminTabAdd {
			return base + " • ctrl+n/ctrl+p switch • tab next field • enter save"
		}
		if m.adminTab == adminTabMovies {
			return base + " • tab switch • type to filter • enter details • ctrl+e edit • ctrl+x delete"
		}
		return base + " • tab switch • type to filter"
	default:
		return base + " • enter go home"
	}
}

func (m appModel) statusLine() string {
	lines := []string{}
	switch m.confirm.kind {
	case confirmDelete:
		lines = append(lines, errorText("Press ctrl+x again to delete this movie."))
	case confirmCancel:
		lines = append(lines, errorText("Press ctrl+x again to cancel every booking for this movie."))
	}
	if m.toast.text != "" {
		if m.toast.isErr {
			lines = append(lines, errorText(m.toast.text))
		} else {
			lines = append(lines, successText(m.toast.text))
		}
	}
	return strings.Join(lines, "\n")
}

func (m appModel) loadingView(title string) string {
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m appModel) homeView() string {
	lines := []string{
		titleStyle.Render("Welcome to Movix"),
		"",
		"Browse showtimes, book seats and keep track of your tickets.",
		"",
		hint("Press l to sign in or r to create an account."),
	}
	if m.version != "" {
		lines = append(lines, "", hint("version "+m.version))
	}
	return panel(strings.Join(lines, "\n"), m.width)
}

func (m appModel) authFormView(f form, alt string) string {
	auth := m.store.Auth()
	view := f.View(m.width)
	switch {
	case auth.Loading:
		view += "\n" + m.spinner.View() + " Submitting..."
	case auth.Error != "":
		view += "\n" + errorText(auth.Error)
	}
	return view + "\n" + hint(alt)
}

func (m appModel) dashboardView() string {
	out := tabsView(userTabNames, m.userTab) + "\n\n"
	if m.userTab == userTabBookings {
		out += m.bookingsView(m.bookingList, "You have no bookings yet.")
	} else {
		out += m.moviesView()
	}
	if m.booking.open {
		out += "\n\n" + m.bookingDialogView()
	}
	return out
}

func (m appModel) adminView() string {
	out := tabsView(adminTabNames, m.adminTab) + "\n\n"
	switch m.adminTab {
	case adminTabMovies:
		return out + m.moviesView()
	case adminTabBookings:
		return out + m.bookingsView(m.allBookingsList, "No bookings have been made.")
	default:
		view := m.movieForm.View(m.width)
		if m.store.Movies().Loading {
			view += "\n" + m.spinner.View() + " Saving..."
		}
		return out + view
	}
}

func (m appModel) moviesView() string {
	movies := m.store.Movies()
	if movies.Error != "" && len(movies.Movies) == 0 {
		return errorBlock(movies.Error, m.width)
	}
	if movies.Loading && len(movies.Movies) == 0 {
		return m.loadingView("Loading movies")
	}
	if len(movies.Movies) == 0 {
		return hint("No movies scheduled yet.")
	}
	return m.listView(m.movieList)
}

func (m appModel) bookingsView(l list.Model, empty string) string {
	bookings := m.store.Bookings()
	if bookings.Error != "" && len(l.Items()) == 0 {
		return errorBlock(bookings.Error, m.width)
	}
	if bookings.Loading && len(l.Items()) == 0 {
		return m.loadingView("Loading bookings")
	}
	if len(l.Items()) == 0 {
		return hint(empty)
	}
	return m.listView(l)
}

func (m appModel) listView(l list.Model) string {
	if m.width == 0 || m.height == 0 {
		// No size yet: render a plain summary so the page is never blank.
		rows := make([]string, 0, len(l.Items())+1)
		rows = append(rows, titleStyle.Render(l.Title))
		for _, item := range l.Items() {
			if d, ok := item.(list.DefaultItem); ok {
				rows = append(rows, "  "+d.Title()+"  "+hint(d.Description()))
			}
		}
		return strings.Join(rows, "\n")
	}
	return l.View()
}

func (m appModel) bookingDialogView() string {
	movie := m.booking.movie
	lines := []string{
		titleStyle.Render("Book " + movie.Title),
		hint(movie.Showtime.Display() + " • " + model.FormatPrice(movie.Price) + " per seat • " + movie.SeatsLabel() + " seats left"),
		"",
		m.booking.seats.View(),
		hint(fmt.Sprintf("%d to %d seats per booking", model.MinSeatsPerBooking, model.MaxSeatsPerBooking)),
	}
	bookings := m.store.Bookings()
	switch {
	case m.booking.err != "":
		lines = append(lines, "", errorText(m.booking.err))
	case bookings.Loading:
		lines = append(lines, "", m.spinner.View()+" Booking...")
	case bookings.Error != "":
		lines = append(lines, "", errorText(bookings.Error))
	}
	return panel(strings.Join(lines, "\n"), m.width)
}

func (m appModel) detailView(res route.Resolution) string {
	movies := m.store.Movies()
	id, ok := res.ID()
	if !ok {
		return m.notFoundView(res.Path)
	}
	current := movies.CurrentMovie
	if current == nil || current.ID != id {
		if movies.Error != "" {
			return errorBlock(movies.Error, m.width)
		}
		return m.loadingView("Loading movie")
	}

	seats := current.SeatsLabel() + " seats available"
	if current.AvailableSeats == 0 {
		seats = errorText("Sold out")
	}
	lines := []string{
		titleStyle.Render(current.Title),
		"",
		current.Description,
		"",
		"Showtime: " + current.Showtime.Display(),
		"Duration: " + model.FormatDuration(current.DurationMinutes),
		"Price:    " + model.FormatPrice(current.Price),
		"Seats:    " + seats,
	}
	out := panel(strings.Join(lines, "\n"), m.width)
	if m.booking.open {
		out += "\n\n" + m.bookingDialogView()
	}
	return out
}

func (m appModel) editView() string {
	movies := m.store.Movies()
	if !m.editLoaded {
		if movies.Error != "" {
			return errorBlock(movies.Error, m.width)
		}
		return m.loadingView("Loading movie")
	}
	view := m.editForm.View(m.width)
	if movies.Loading {
		view += "\n" + m.spinner.View() + " Saving..."
	}
	return view + "\n" + hint("Seat capacity is fixed when a movie is created.")
}

func (m appModel) notFoundView(path string) string {
	lines := []string{
		errorText("Page not found"),
		"",
		fmt.Sprintf("Nothing lives at %s.", path),
		"",
		hint("Press enter to go home."),
	}
	return panel(strings.Join(lines, "\n"), m.width)
}
