package route

import (
	"testing"

	"movix-cli/model"
	"movix-cli/state"
)

func anonymous() state.AuthState { return state.AuthState{} }

func member() state.AuthState {
	return state.AuthState{User: &model.User{ID: 1, Username: "a"}, Token: "tok", IsAuthenticated: true}
}

func admin() state.AuthState {
	return state.AuthState{User: &model.User{ID: 2, Username: "root", IsAdmin: true}, Token: "tok", IsAuthenticated: true}
}

func TestRequireAdmin(t *testing.T) {
	cases := []struct {
		name    string
		session state.AuthState
		want    Decision
	}{
		{"anonymous", anonymous(), Decision{Kind: Redirect, To: PathLogin}},
		{"member", member(), Decision{Kind: Redirect, To: PathHome}},
		{"admin", admin(), Decision{Kind: Render}},
		{"loading", state.AuthState{Loading: true}, Decision{Kind: Loading}},
		{"token without user", state.AuthState{Token: "tok", IsAuthenticated: true}, Decision{Kind: Redirect, To: PathHome}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RequireAdmin(tc.session); got != tc.want {
				t.Fatalf("expected %+v, got %+v", tc.want, got)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	if got := RequireAuth(anonymous()); got.Kind != Redirect || got.To != PathLogin {
		t.Fatalf("unexpected decision: %+v", got)
	}
	if got := RequireAuth(member()); got.Kind != Render {
		t.Fatalf("unexpected decision: %+v", got)
	}
	loadingMember := member()
	loadingMember.Loading = true
	if got := RequireAuth(loadingMember); got.Kind != Loading {
		t.Fatalf("unexpected decision: %+v", got)
	}
}

func TestResolve(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		session  state.AuthState
		wantPage Page
		wantPath string
	}{
		{"anonymous home", "/", anonymous(), PageHome, "/"},
		{"anonymous dashboard", "/dashboard", anonymous(), PageLogin, "/login"},
		{"anonymous admin", "/admin", anonymous(), PageLogin, "/login"},
		{"member home", "/", member(), PageDashboard, "/dashboard"},
		{"member login", "/login", member(), PageDashboard, "/dashboard"},
		{"member register", "/register", member(), PageDashboard, "/dashboard"},
		{"member admin", "/admin", member(), PageDashboard, "/dashboard"},
		{"admin home", "/", admin(), PageAdmin, "/admin"},
		{"admin login", "/login", admin(), PageAdmin, "/admin"},
		{"member history", "/booking-history", member(), PageBookingHistory, "/booking-history"},
		{"member movie", "/movies/7", member(), PageMovieDetail, "/movies/7"},
		{"member edit", "/admin/movies/edit/7", member(), PageMovieEdit, "/admin/movies/edit/7"},
		{"trailing slash", "/dashboard/", member(), PageDashboard, "/dashboard"},
		{"unknown", "/nope", anonymous(), PageNotFound, "/nope"},
		{"unknown nested", "/movies/7/extra", member(), PageNotFound, "/movies/7/extra"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.path, tc.session)
			if got.Page != tc.wantPage || got.Path != tc.wantPath {
				t.Fatalf("expected %s at %s, got %s at %s", tc.wantPage, tc.wantPath, got.Page, got.Path)
			}
			if got.Decision.Kind != Render {
				t.Fatalf("expected render decision, got %+v", got.Decision)
			}
		})
	}
}

func TestResolve_LoadingStopsOnGuardedPage(t *testing.T) {
	got := Resolve("/dashboard", state.AuthState{Loading: true})
	if got.Page != PageDashboard || got.Decision.Kind != Loading {
		t.Fatalf("unexpected resolution: %+v", got)
	}
}

func TestResolution_ID(t *testing.T) {
	if id, ok := Resolve(MovieDetail(12), member()).ID(); !ok || id != 12 {
		t.Fatalf("expected id 12, got %d ok=%v", id, ok)
	}
	if _, ok := Resolve("/movies/abc", member()).ID(); ok {
		t.Fatal("expected malformed id to be rejected")
	}
	if _, ok := Resolve("/dashboard", member()).ID(); ok {
		t.Fatal("expected no id on dashboard")
	}
}

func TestHome(t *testing.T) {
	if Home(admin()) != PathAdmin || Home(member()) != PathDashboard {
		t.Fatal("unexpected home paths")
	}
}

func TestClean(t *testing.T) {
	for in, want := range map[string]string{"": "/", "/": "/", "admin": "/admin", "//movies//3/": "/movies/3"} {
		if got := Clean(in); got != want {
			t.Fatalf("Clean(%q): expected %q, got %q", in, want, got)
		}
	}
}
