// Package route decides which page a session may see. Every function here is
// a pure function of the auth slice and is meant to be called on each render.
package route

import (
	"strconv"
	"strings"

	"movix-cli/state"
)

const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathDashboard      = "/dashboard"
	PathBookingHistory = "/booking-history"
	PathAdmin          = "/admin"
)

// maxHops bounds redirect chains; the table below never needs more than two.
const maxHops = 4

type DecisionKind int

const (
	Render DecisionKind = iota
	Loading
	Redirect
)

func (k DecisionKind) String() string {
	switch k {
	case Render:
		return "render"
	case Loading:
		return "loading"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Decision is the outcome of a guard. To is set only for Redirect.
type Decision struct {
	Kind DecisionKind
	To   string
}

func render() Decision            { return Decision{Kind: Render} }
func loading() Decision           { return Decision{Kind: Loading} }
func redirect(to string) Decision { return Decision{Kind: Redirect, To: to} }

// RequireAuth lets authenticated sessions through and sends the rest to login.
func RequireAuth(s state.AuthState) Decision {
	if s.Loading {
		return loading()
	}
	if !s.IsAuthenticated {
		return redirect(PathLogin)
	}
	return render()
}

// RequireAdmin is RequireAuth plus a role check; non-admins go home.
func RequireAdmin(s state.AuthState) Decision {
	if d := RequireAuth(s); d.Kind != Render {
		return d
	}
	if !s.IsAdmin() {
		return redirect(PathHome)
	}
	return render()
}

// guestOnly renders public pages for anonymous sessions and sends signed in
// users to their dashboard.
func guestOnly(s state.AuthState) Decision {
	if s.IsAuthenticated {
		return redirect(Home(s))
	}
	return render()
}

func public(state.AuthState) Decision { return render() }

// Home returns the dashboard path for the session's role.
func Home(s state.AuthState) string {
	if s.IsAdmin() {
		return PathAdmin
	}
	return PathDashboard
}

type Page int

const (
	PageNotFound Page = iota
	PageHome
	PageLogin
	PageRegister
	PageDashboard
	PageBookingHistory
	PageMovieDetail
	PageMovieEdit
	PageAdmin
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageLogin:
		return "login"
	case PageRegister:
		return "register"
	case PageDashboard:
		return "dashboard"
	case PageBookingHistory:
		return "booking-history"
	case PageMovieDetail:
		return "movie-detail"
	case PageMovieEdit:
		return "movie-edit"
	case PageAdmin:
		return "admin"
	default:
		return "not-found"
	}
}

type entry struct {
	pattern string
	page    Page
	guard   func(state.AuthState) Decision
}

var table = []entry{
	{PathHome, PageHome, guestOnly},
	{PathLogin, PageLogin, guestOnly},
	{PathRegister, PageRegister, guestOnly},
	{PathDashboard, PageDashboard, RequireAuth},
	{PathBookingHistory, PageBookingHistory, RequireAuth},
	{"/movies/:id", PageMovieDetail, RequireAuth},
	{"/admin/movies/edit/:id", PageMovieEdit, RequireAuth},
	{PathAdmin, PageAdmin, RequireAdmin},
}

// Resolution is where a path ends up for a session. Path is the final path
// after redirects; Decision is Render or Loading unless the hop limit was hit.
type Resolution struct {
	Page     Page
	Params   map[string]string
	Path     string
	Decision Decision
}

// ID returns the numeric :id parameter, or false when absent or malformed.
func (r Resolution) ID() (int, bool) {
	raw, ok := r.Params["id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Resolve matches path against the route table and follows guard redirects.
// Unknown paths resolve to PageNotFound and always render.
func Resolve(path string, s state.AuthState) Resolution {
	path = Clean(path)
	var res Resolution
	for hop := 0; hop < maxHops; hop++ {
		res = match(path)
		res.Decision = render()
		if res.Page == PageNotFound {
			return res
		}
		res.Decision = guardFor(res.Page)(s)
		if res.Decision.Kind != Redirect {
			return res
		}
		path = res.Decision.To
	}
	return res
}

// MovieDetail and MovieEdit build the parameterized paths.
func MovieDetail(id int) string { return "/movies/" + strconv.Itoa(id) }
func MovieEdit(id int) string   { return "/admin/movies/edit/" + strconv.Itoa(id) }

// Clean normalizes a path: leading slash, no trailing slash, no empty segments.
func Clean(path string) string {
	parts := splitPath(path)
	if len(parts) == 0 {
		return PathHome
	}
	return "/" + strings.Join(parts, "/")
}

func match(path string) Resolution {
	segments := splitPath(path)
	for _, e := range table {
		if params, ok := matchPattern(splitPath(e.pattern), segments); ok {
			return Resolution{Page: e.page, Params: params, Path: path}
		}
	}
	return Resolution{Page: PageNotFound, Path: path}
}

func matchPattern(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if params == nil {
				params = map[string]string{}
			}
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func guardFor(p Page) func(state.AuthState) Decision {
	for _, e := range table {
		if e.page == p {
			return e.guard
		}
	}
	return public
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	out := raw[:0]
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
