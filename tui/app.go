// Package tui is the interactive Movix client. Every update re-resolves the
// current path against the session, so guards and redirects always reflect
// the latest auth state.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"movix-cli/logging"
	"movix-cli/model"
	"movix-cli/route"
	"movix-cli/service"
	"movix-cli/state"
)

const defaultToastTTL = 4 * time.Second

const (
	msgMovieAdded   = "Movie added successfully!"
	msgMovieUpdated = "Movie updated successfully!"
	msgMovieDeleted = "Movie deleted successfully!"
	msgLoggedOut    = "Logged out"
)

// Dashboard tabs.
const (
	userTabMovies = iota
	userTabBookings
)

const (
	adminTabMovies = iota
	adminTabBookings
	adminTabAdd
)

var (
	userTabNames  = []string{"Book a movie", "My bookings"}
	adminTabNames = []string{"Manage movies", "All bookings", "Add movie"}
)

// Movie form field order, shared by the add and edit forms.
const (
	fieldTitle = iota
	fieldDescription
	fieldDuration
	fieldPrice
	fieldShowtime
	fieldTotalSeats
)

const showtimeLayout = "2006-01-02 15:04"

type Options struct {
	Logger  *log.Logger
	APIURL  string
	Version string
	// Path is the starting route; guards still apply. Defaults to the
	// session's home.
	Path     string
	ToastTTL time.Duration
	// CursorMode applies to every text input. The zero value blinks.
	CursorMode cursor.Mode
}

type actionMsg struct {
	action state.Action
}

type clearToastMsg struct {
	id int
}

type toast struct {
	id    int
	text  string
	isErr bool
}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmCancel
)

// confirmation is armed by the first press of a destructive key and fired
// by the second press on the same target.
type confirmation struct {
	kind confirmKind
	id   int
}

type bookingDialog struct {
	open  bool
	movie model.Movie
	seats textinput.Model
	err   string
}

type appModel struct {
	store   *state.Store
	logger  *log.Logger
	ctx     context.Context
	apiURL  string
	version string

	path    string
	mounted string
	history []string

	width  int
	height int

	spinner  spinner.Model
	spinning bool

	userTab  int
	adminTab int

	movieList       list.Model
	bookingList     list.Model
	historyList     list.Model
	allBookingsList list.Model

	loginForm    form
	registerForm form
	movieForm    form
	editForm     form
	editLoaded   bool

	booking bookingDialog
	confirm confirmation

	toast    toast
	toastSeq int
	toastTTL time.Duration

	cursorMode cursor.Mode

	initCmd tea.Cmd
}

func New(st *state.Store, opts Options) tea.Model {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	ttl := opts.ToastTTL
	if ttl <= 0 {
		ttl = defaultToastTTL
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))

	m := appModel{
		store:           st,
		logger:          logger,
		ctx:             context.Background(),
		apiURL:          opts.APIURL,
		version:         opts.Version,
		path:            route.PathHome,
		spinner:         s,
		toastTTL:        ttl,
		cursorMode:      opts.CursorMode,
		movieList:       newList("Movies"),
		bookingList:     newList("My bookings"),
		historyList:     newList("Booking history"),
		allBookingsList: newList("All bookings"),
		loginForm: newForm("Sign in",
			fieldDef{label: "Username", placeholder: "username", limit: 64},
			fieldDef{label: "Password", placeholder: "password", secret: true, limit: 128},
		),
		registerForm: newForm("Create an account",
			fieldDef{label: "Username", placeholder: "username", limit: 64},
			fieldDef{label: "Password", placeholder: "password", secret: true, limit: 128},
			fieldDef{label: "Admin account (y/N)", placeholder: "n", limit: 3},
		),
		movieForm: newForm("Add movie", movieFieldDefs(true)...),
		editForm:  newForm("Edit movie", movieFieldDefs(false)...),
	}
	for _, f := range []*form{&m.loginForm, &m.registerForm, &m.movieForm, &m.editForm} {
		f.SetCursorMode(opts.CursorMode)
	}
	m.booking.seats = newSeatsInput(opts.CursorMode)
	switch {
	case opts.Path != "":
		m.path = route.Clean(opts.Path)
	case st.Auth().IsAuthenticated:
		m.path = route.Home(st.Auth())
	}
	m.initCmd = m.settle()
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.initCmd
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	settled := m.settle()
	return m, tea.Batch(cmd, settled)
}

func (m *appModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return nil
	case spinner.TickMsg:
		if !m.anyLoading() {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd
	case clearToastMsg:
		if msg.id == m.toast.id {
			m.toast = toast{}
		}
		return nil
	case actionMsg:
		m.store.Dispatch(msg.action)
		cmd := m.afterAction(msg.action)
		return tea.Batch(cmd, m.syncLists())
	case tea.KeyMsg:
		cmd, handled := m.handleKey(msg)
		if handled {
			return cmd
		}
		if listPtr := m.activeList(); listPtr != nil {
			var listCmd tea.Cmd
			*listPtr, listCmd = listPtr.Update(msg)
			return tea.Batch(cmd, listCmd)
		}
		return cmd
	}
	return m.forward(msg)
}

// forward hands messages the model does not own (cursor blinks, list status
// ticks) to whichever component is active.
func (m *appModel) forward(msg tea.Msg) tea.Cmd {
	if m.booking.open {
		var cmd tea.Cmd
		m.booking.seats, cmd = m.booking.seats.Update(msg)
		return cmd
	}
	if f := m.activeForm(); f != nil {
		return f.Forward(msg)
	}
	if listPtr := m.activeList(); listPtr != nil {
		var cmd tea.Cmd
		*listPtr, cmd = listPtr.Update(msg)
		return cmd
	}
	return nil
}

// dispatch applies the pending action now and runs the request as a command.
func (m *appModel) dispatch(thunk state.Thunk) tea.Cmd {
	m.store.Dispatch(thunk.Pending)
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{action: thunk.Run(ctx)}
	}
}

// settle resolves the current path, follows redirects, runs the page's
// mount fetches when the rendered path changes and keeps the spinner alive
// while anything is loading.
func (m *appModel) settle() tea.Cmd {
	var cmds []tea.Cmd
	res := m.resolve()
	if res.Decision.Kind != route.Loading {
		if res.Path != m.path {
			m.logger.Debug("redirect", "from", m.path, "to", res.Path)
			m.path = res.Path
		}
		if m.mounted != m.path {
			m.mounted = m.path
			cmds = append(cmds, m.mount(res))
		}
	}
	if !m.spinning && m.anyLoading() {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

func (m appModel) resolve() route.Resolution {
	return route.Resolve(m.path, m.store.Auth())
}

func (m *appModel) mount(res route.Resolution) tea.Cmd {
	m.confirm = confirmation{}
	m.closeBooking()
	m.logger.Debug("mount", "page", res.Page, "path", res.Path)

	switch res.Page {
	case route.PageLogin:
		m.store.Dispatch(state.ClearAuthError{})
		m.loginForm.Reset()
		return m.loginForm.Focus()
	case route.PageRegister:
		m.store.Dispatch(state.ClearAuthError{})
		m.registerForm.Reset()
		return m.registerForm.Focus()
	case route.PageDashboard:
		m.movieList.ResetFilter()
		m.bookingList.ResetFilter()
		return tea.Batch(
			m.dispatch(m.store.FetchMovies()),
			m.dispatch(m.store.FetchUserBookings()),
		)
	case route.PageBookingHistory:
		m.historyList.ResetFilter()
		return m.dispatch(m.store.FetchUserBookings())
	case route.PageMovieDetail, route.PageMovieEdit:
		id, ok := res.ID()
		if !ok {
			return nil
		}
		m.store.Dispatch(state.ClearCurrentMovie{})
		m.editLoaded = false
		m.editForm.Reset()
		return m.dispatch(m.store.FetchMovie(id))
	case route.PageAdmin:
		m.movieList.ResetFilter()
		m.allBookingsList.ResetFilter()
		m.movieForm.Reset()
		if m.adminTab == adminTabAdd {
			m.movieForm.Focus()
		}
		return tea.Batch(
			m.dispatch(m.store.FetchMovies()),
			m.dispatch(m.store.FetchAllBookings()),
		)
	}
	return nil
}

// afterAction reacts to a terminal action once the reducers have run.
func (m *appModel) afterAction(a state.Action) tea.Cmd {
	la, ok := a.(state.LifecycleAction)
	if !ok {
		return nil
	}
	status := la.Status()
	if status.Phase == state.Rejected {
		return m.afterRejection(a, status.Failure)
	}
	if status.Phase != state.Fulfilled {
		return nil
	}

	switch a := a.(type) {
	case state.Login:
		m.history = nil
		return m.showToast("Welcome back, "+a.Response.User.Username, false)
	case state.Register:
		m.history = nil
		return m.showToast("Welcome, "+a.Response.User.Username, false)
	case state.Logout:
		m.history = nil
		m.path = route.PathLogin
		return m.showToast(msgLoggedOut, false)
	case state.FetchMovie:
		if res := m.resolve(); res.Page == route.PageMovieEdit && !m.editLoaded {
			if id, ok := res.ID(); ok && id == a.ID {
				m.prefillEdit(a.Movie)
			}
		}
	case state.AddMovie:
		m.movieForm.Reset()
		m.adminTab = adminTabMovies
		return m.showToast(msgMovieAdded, false)
	case state.UpdateMovie:
		m.navigate(route.Home(m.store.Auth()))
		return m.showToast(msgMovieUpdated, false)
	case state.DeleteMovie:
		if res := m.resolve(); res.Page == route.PageMovieDetail {
			m.leave()
		}
		return m.showToast(msgMovieDeleted, false)
	case state.BookMovie:
		m.closeBooking()
		cmd := m.showToast(m.successAndClear(), false)
		return tea.Batch(cmd, m.refetchSeats(a.MovieID))
	case state.CancelBooking:
		cmd := m.showToast(m.successAndClear(), false)
		return tea.Batch(cmd, m.refetchSeats(a.MovieID))
	}
	return nil
}

// refetchSeats reloads whatever the current page shows of movieID so seat
// counts come from the server after a booking change.
func (m *appModel) refetchSeats(movieID int) tea.Cmd {
	if res := m.resolve(); res.Page == route.PageMovieDetail {
		if id, ok := res.ID(); ok && id == movieID {
			return m.dispatch(m.store.FetchMovie(movieID))
		}
	}
	return m.dispatch(m.store.FetchMovies())
}

// afterRejection reports the failure. An update or delete of a movie the
// server no longer has leaves its page and reloads the catalogue.
func (m *appModel) afterRejection(a state.Action, failure *service.Failure) tea.Cmd {
	cmd := m.showToast(m.errorFor(a), true)
	switch a.(type) {
	case state.UpdateMovie, state.DeleteMovie:
		if !service.IsNotFound(failure) {
			return cmd
		}
		switch m.resolve().Page {
		case route.PageMovieDetail, route.PageMovieEdit:
			m.leave()
		}
		return tea.Batch(cmd, m.dispatch(m.store.FetchMovies()))
	}
	return cmd
}

// successAndClear takes the booking slice's success message and resets it.
func (m *appModel) successAndClear() string {
	text := m.store.Bookings().Success
	m.store.Dispatch(state.ClearBookingSuccess{})
	return text
}

func (m appModel) errorFor(a state.Action) string {
	var text string
	switch a.(type) {
	case state.Login, state.Register, state.Logout:
		text = m.store.Auth().Error
	case state.FetchMovies, state.FetchMovie, state.AddMovie, state.UpdateMovie, state.DeleteMovie:
		text = m.store.Movies().Error
	default:
		text = m.store.Bookings().Error
	}
	if text == "" {
		text = "Something went wrong"
	}
	return text
}

func (m *appModel) showToast(text string, isErr bool) tea.Cmd {
	if text == "" {
		return nil
	}
	m.toastSeq++
	m.toast = toast{id: m.toastSeq, text: text, isErr: isErr}
	id := m.toastSeq
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg {
		return clearToastMsg{id: id}
	})
}

func (m *appModel) navigate(path string) {
	path = route.Clean(path)
	if path == m.path {
		return
	}
	m.history = append(m.history, m.path)
	m.path = path
}

func (m *appModel) goBack() {
	if len(m.history) == 0 {
		return
	}
	last := len(m.history) - 1
	m.path = m.history[last]
	m.history = m.history[:last]
}

// leave goes back, or home when there is nowhere to go back to.
func (m *appModel) leave() {
	if len(m.history) == 0 {
		m.navigate(route.Home(m.store.Auth()))
		return
	}
	m.goBack()
}

// refresh remounts the current page on the next settle.
func (m *appModel) refresh() {
	m.mounted = ""
}

// syncLists copies the store's collections into the lists. The returned
// command re-runs any active filter.
func (m *appModel) syncLists() tea.Cmd {
	movies := m.store.Movies().Movies
	bookings := m.store.Bookings()
	return tea.Batch(
		m.movieList.SetItems(buildMovieItems(movies)),
		m.bookingList.SetItems(buildBookingItems(bookings.Bookings, false)),
		m.historyList.SetItems(buildBookingItems(bookings.Bookings, false)),
		m.allBookingsList.SetItems(buildBookingItems(bookings.AllBookings, true)),
	)
}

func (m appModel) anyLoading() bool {
	return m.store.Auth().Loading || m.store.Movies().Loading || m.store.Bookings().Loading
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 9
	if h < 6 {
		h = 6
	}
	m.movieList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
	m.historyList.SetSize(m.width, h)
	m.allBookingsList.SetSize(m.width, h)
}

// activeList is the list receiving navigation and filter keys, if any.
func (m *appModel) activeList() *list.Model {
	if m.booking.open {
		return nil
	}
	switch m.resolve().Page {
	case route.PageDashboard:
		if m.userTab == userTabBookings {
			return &m.bookingList
		}
		return &m.movieList
	case route.PageBookingHistory:
		return &m.historyList
	case route.PageAdmin:
		switch m.adminTab {
		case adminTabMovies:
			return &m.movieList
		case adminTabBookings:
			return &m.allBookingsList
		}
	}
	return nil
}

// activeForm is the form receiving text input, if any.
func (m *appModel) activeForm() *form {
	switch m.resolve().Page {
	case route.PageLogin:
		return &m.loginForm
	case route.PageRegister:
		return &m.registerForm
	case route.PageMovieEdit:
		if m.editLoaded {
			return &m.editForm
		}
	case route.PageAdmin:
		if m.adminTab == adminTabAdd {
			return &m.movieForm
		}
	}
	return nil
}

func (m appModel) selectedMovie(l list.Model) (model.Movie, bool) {
	item, ok := l.SelectedItem().(movieItem)
	if !ok {
		return model.Movie{}, false
	}
	return item.movie, true
}

func (m appModel) selectedBooking(l list.Model) (model.Booking, bool) {
	item, ok := l.SelectedItem().(bookingItem)
	if !ok {
		return model.Booking{}, false
	}
	return item.booking, true
}

func (m *appModel) openBooking(movie model.Movie) tea.Cmd {
	m.booking = bookingDialog{open: true, movie: movie, seats: newSeatsInput(m.cursorMode)}
	m.booking.seats.SetValue("1")
	m.store.Dispatch(state.ClearBookingError{})
	return m.booking.seats.Focus()
}

func (m *appModel) closeBooking() {
	m.booking.open = false
	m.booking.err = ""
}

func newSeatsInput(mode cursor.Mode) textinput.Model {
	input := textinput.New()
	input.Prompt = "Seats > "
	input.Placeholder = "1"
	input.CharLimit = 2
	input.Cursor.SetMode(mode)
	return input
}

func movieFieldDefs(withSeats bool) []fieldDef {
	defs := []fieldDef{
		{label: "Title", placeholder: "Spirited Away", limit: 120},
		{label: "Description", placeholder: "A short synopsis", limit: 500},
		{label: "Duration (minutes)", placeholder: "125", limit: 4},
		{label: "Price", placeholder: "9.50", limit: 8},
		{label: "Showtime (YYYY-MM-DD HH:MM)", placeholder: "2026-11-01 19:30", limit: 25},
	}
	if withSeats {
		defs = append(defs, fieldDef{label: "Total seats", placeholder: "80", limit: 5})
	}
	return defs
}

func (m *appModel) prefillEdit(movie model.Movie) {
	edit, err := model.MovieEditFromMovie(movie)
	if err != nil {
		m.logger.Warn("could not prefill edit form", "id", movie.ID, "err", err)
		return
	}
	m.editForm.Reset()
	m.editForm.SetValue(fieldTitle, edit.Title)
	m.editForm.SetValue(fieldDescription, edit.Description)
	m.editForm.SetValue(fieldDuration, strconv.Itoa(edit.DurationMinutes))
	m.editForm.SetValue(fieldPrice, strconv.FormatFloat(edit.Price, 'f', 2, 64))
	if !edit.Showtime.IsZero() {
		m.editForm.SetValue(fieldShowtime, edit.Showtime.UTC().Format(showtimeLayout))
	}
	m.editForm.Focus()
	m.editLoaded = true
}

// parseMovieFields reads the shared movie fields. Empty numbers stay zero so
// the form validation reports them as required.
func parseMovieFields(f form) (model.MovieEdit, error) {
	edit := model.MovieEdit{
		Title:       f.Value(fieldTitle),
		Description: f.Value(fieldDescription),
	}
	var err error
	if raw := f.Value(fieldDuration); raw != "" {
		if edit.DurationMinutes, err = strconv.Atoi(raw); err != nil {
			return model.MovieEdit{}, errors.New("duration must be a whole number of minutes")
		}
	}
	if raw := f.Value(fieldPrice); raw != "" {
		if edit.Price, err = strconv.ParseFloat(strings.TrimPrefix(raw, "$"), 64); err != nil {
			return model.MovieEdit{}, errors.New("price must be a number")
		}
	}
	if raw := f.Value(fieldShowtime); raw != "" {
		if edit.Showtime, err = model.ParseTimestamp(raw); err != nil {
			return model.MovieEdit{}, fmt.Errorf("showtime must look like %s", showtimeLayout)
		}
	}
	return edit, nil
}

func parseMovieForm(f form) (model.MovieFormData, error) {
	edit, err := parseMovieFields(f)
	if err != nil {
		return model.MovieFormData{}, err
	}
	data := model.MovieFormData{
		Title:           edit.Title,
		Description:     edit.Description,
		DurationMinutes: edit.DurationMinutes,
		Price:           edit.Price,
		Showtime:        edit.Showtime,
	}
	if raw := f.Value(fieldTotalSeats); raw != "" {
		if data.TotalSeats, err = strconv.Atoi(raw); err != nil {
			return model.MovieFormData{}, errors.New("total seats must be a whole number")
		}
	}
	return data, nil
}

func parseYesNo(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "true":
		return true
	}
	return false
}
