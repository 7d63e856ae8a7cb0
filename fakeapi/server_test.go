package fakeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"movix-cli/model"
	"movix-cli/service"
	"movix-cli/state"
	"movix-cli/store"
)

type harness struct {
	api     *Server
	server  *httptest.Server
	storage *store.MemoryStorage
	store   *state.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := New("test-secret", nil)
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
	return &harness{api: api, server: server, storage: storage, store: st}
}

func (h *harness) login(t *testing.T, username, password string) {
	t.Helper()
	h.store.Run(context.Background(), h.store.Login(model.LoginCredentials{Username: username, Password: password}))
	if auth := h.store.Auth(); !auth.IsAuthenticated {
		t.Fatalf("login as %s failed: %q", username, auth.Error)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)

	h.store.Run(context.Background(), h.store.Login(model.LoginCredentials{Username: SeedMemberUser, Password: "nope"}))

	auth := h.store.Auth()
	if auth.IsAuthenticated || auth.Error != "Incorrect username or password" {
		t.Fatalf("unexpected session: %+v", auth)
	}
}

func TestRegister_StartsSession(t *testing.T) {
	h := newHarness(t)

	h.store.Run(context.Background(), h.store.Register(model.RegisterCredentials{Username: "newbie", Password: "pw"}))

	auth := h.store.Auth()
	if !auth.IsAuthenticated || auth.User == nil || auth.User.Username != "newbie" || auth.IsAdmin() {
		t.Fatalf("unexpected session: %+v", auth)
	}
	if store.Token(h.storage) == "" {
		t.Fatal("expected token to be persisted")
	}

	h.store.Run(context.Background(), h.store.Register(model.RegisterCredentials{Username: "newbie", Password: "pw"}))
	if h.store.Auth().Error != "Username already registered" {
		t.Fatalf("expected duplicate error, got %q", h.store.Auth().Error)
	}
}

func TestBookAndCancel_SeatAccounting(t *testing.T) {
	h := newHarness(t)
	h.login(t, SeedMemberUser, SeedMemberPass)
	ctx := context.Background()

	h.store.Run(ctx, h.store.FetchMovies())
	movies := h.store.Movies().Movies
	if len(movies) != 3 {
		t.Fatalf("expected seeded movies, got %d", len(movies))
	}
	movie := movies[0]

	h.store.Run(ctx, h.store.BookMovie(movie.ID, model.BookingFormData{NumSeats: 2}))
	h.store.Run(ctx, h.store.BookMovie(movie.ID, model.BookingFormData{NumSeats: 3}))
	if got := h.store.Bookings(); len(got.Bookings) != 2 || got.Success != state.MsgMovieBooked {
		t.Fatalf("unexpected booking state: %+v", got)
	}

	h.store.Run(ctx, h.store.FetchMovie(movie.ID))
	if seats := h.store.Movies().CurrentMovie.AvailableSeats; seats != movie.TotalSeats-5 {
		t.Fatalf("expected %d seats left, got %d", movie.TotalSeats-5, seats)
	}

	h.store.Run(ctx, h.store.CancelBooking(movie.ID))
	if got := h.store.Bookings(); len(got.Bookings) != 0 || got.Success != state.MsgBookingCancelled {
		t.Fatalf("unexpected booking state: %+v", got)
	}
	h.store.Run(ctx, h.store.FetchUserBookings())
	if got := h.store.Bookings().Bookings; len(got) != 0 {
		t.Fatalf("expected history to be empty, got %+v", got)
	}
	h.store.Run(ctx, h.store.FetchMovie(movie.ID))
	if seats := h.store.Movies().CurrentMovie.AvailableSeats; seats != movie.TotalSeats {
		t.Fatalf("expected seats restored, got %d", seats)
	}
}

func TestBook_SoldOut(t *testing.T) {
	h := newHarness(t)
	h.login(t, SeedMemberUser, SeedMemberPass)
	ctx := context.Background()

	h.store.Run(ctx, h.store.FetchMovies())
	var small model.Movie
	for _, m := range h.store.Movies().Movies {
		if m.TotalSeats == 4 {
			small = m
		}
	}

	h.store.Run(ctx, h.store.BookMovie(small.ID, model.BookingFormData{NumSeats: 5}))

	got := h.store.Bookings()
	if got.Error != "Sold out" || got.Loading || len(got.Bookings) != 0 {
		t.Fatalf("unexpected booking state: %+v", got)
	}
}

func TestAdminEndpoints_RequireAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(t, SeedMemberUser, SeedMemberPass)
	ctx := context.Background()

	h.store.Run(ctx, h.store.FetchAllBookings())
	if got := h.store.Bookings().Error; got != "Admin privileges required" {
		t.Fatalf("expected admin error, got %q", got)
	}
	h.store.Run(ctx, h.store.DeleteMovie(1))
	if got := h.store.Movies().Error; got != "Admin privileges required" {
		t.Fatalf("expected admin error, got %q", got)
	}
}

func TestAdminMovieLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t, SeedAdminUser, SeedAdminPassword)
	ctx := context.Background()

	showtime := model.NewTimestamp(time.Date(2030, 1, 2, 20, 0, 0, 0, time.UTC))
	h.store.Run(ctx, h.store.AddMovie(model.MovieFormData{
		Title: "Alien", Description: "In space", DurationMinutes: 117, Price: 7, Showtime: showtime, TotalSeats: 30,
	}))
	movies := h.store.Movies()
	if movies.Error != "" || len(movies.Movies) != 1 {
		t.Fatalf("unexpected movie state: %+v", movies)
	}
	added := movies.Movies[0]
	if added.AvailableSeats != 30 {
		t.Fatalf("expected all seats available, got %d", added.AvailableSeats)
	}

	h.store.Run(ctx, h.store.FetchMovie(added.ID))
	edit, err := model.MovieEditFromMovie(*h.store.Movies().CurrentMovie)
	if err != nil {
		t.Fatalf("prefill: %v", err)
	}
	edit.Title = "Aliens"
	h.store.Run(ctx, h.store.UpdateMovie(added.ID, edit))
	movies = h.store.Movies()
	if movies.CurrentMovie.Title != "Aliens" || movies.CurrentMovie.TotalSeats != 30 {
		t.Fatalf("unexpected current movie: %+v", movies.CurrentMovie)
	}

	h.store.Run(ctx, h.store.DeleteMovie(added.ID))
	movies = h.store.Movies()
	if len(movies.Movies) != 0 || movies.CurrentMovie != nil {
		t.Fatalf("unexpected movie state after delete: %+v", movies)
	}

	h.store.Run(ctx, h.store.FetchMovie(added.ID))
	if got := h.store.Movies().Error; got != "Movie not found" {
		t.Fatalf("expected not found, got %q", got)
	}
}

func TestStaleToken_SurfacesAsUnauthorized(t *testing.T) {
	h := newHarness(t)
	if err := store.SaveSession(h.storage, "garbage", model.User{ID: 1}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	st := state.Bootstrap(h.storage, nil)
	if !st.IsAuthenticated {
		t.Fatal("expected bootstrapped session")
	}

	result := h.store.Run(context.Background(), h.store.FetchUserBookings())

	status := result.(state.LifecycleAction).Status()
	if status.Failure == nil || status.Failure.Kind != service.KindUnauthorized {
		t.Fatalf("expected unauthorized failure, got %+v", status)
	}
}

func TestRawEndpoints(t *testing.T) {
	h := newHarness(t)

	res, err := http.Get(h.server.URL + "/movies/history")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.StatusCode)
	}

	res, err = http.Post(h.server.URL+"/auth/login/", "application/x-www-form-urlencoded", strings.NewReader("username=admin"))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.StatusCode)
	}
}

func TestExpiredToken(t *testing.T) {
	api := New("secret", nil)
	user, err := api.AddUser("a", "b", false)
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	token, err := api.issueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	api.now = func() time.Time { return time.Now().Add(2 * tokenTTL) }

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/movies/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	api.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", rec.Code)
	}
}
