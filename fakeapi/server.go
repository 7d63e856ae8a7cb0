// Package fakeapi is an in-memory implementation of the Movix REST backend.
// It backs the devserver command and the end-to-end tests of the client.
package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/maps"

	"movix-cli/logging"
	"movix-cli/model"
)

const tokenTTL = 24 * time.Hour

type account struct {
	user model.User
	hash []byte
}

type Server struct {
	secret []byte
	logger *log.Logger
	router chi.Router
	now    func() time.Time

	mu        sync.Mutex
	accounts  map[int]*account
	movies    map[int]*model.Movie
	bookings  map[int]*model.Booking
	nextUser  int
	nextMovie int
	nextBook  int
}

// New returns an empty backend signing tokens with secret.
func New(secret string, logger *log.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		secret:    []byte(secret),
		logger:    logger,
		now:       time.Now,
		accounts:  map[int]*account{},
		movies:    map[int]*model.Movie{},
		bookings:  map[int]*model.Booking{},
		nextUser:  1,
		nextMovie: 1,
		nextBook:  1,
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/auth/login/", s.handleLogin)
	r.Post("/auth/register/", s.handleRegister)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/movies/history", s.handleHistory)
		r.Post("/movies/{id}/book/", s.handleBook)
		r.Delete("/movies/{id}/cancel/", s.handleCancel)

		// Members browse the catalogue through the admin listing.
		r.Get("/admin/movies/", s.handleListMovies)
		r.Get("/admin/movies/{id}/", s.handleGetMovie)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/admin/movies/", s.handleAddMovie)
			r.Put("/admin/movies/{id}/", s.handleUpdateMovie)
			r.Delete("/admin/movies/{id}/", s.handleDeleteMovie)
			r.Get("/admin/bookings/", s.handleAllBookings)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-Id"),
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	})
}

// AddUser registers an account directly, bypassing HTTP.
func (s *Server) AddUser(username, password string, isAdmin bool) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(username, password, isAdmin)
}

var errUsernameTaken = errors.New("username already registered")

func (s *Server) addUserLocked(username, password string, isAdmin bool) (model.User, error) {
	username = strings.TrimSpace(username)
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Username, username) {
			return model.User{}, errUsernameTaken
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}
	user := model.User{ID: s.nextUser, Username: username, IsAdmin: isAdmin}
	s.nextUser++
	s.accounts[user.ID] = &account{user: user, hash: hash}
	return user, nil
}

// AddMovie stores a movie with every seat available.
func (s *Server) AddMovie(form model.MovieFormData) model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMovieLocked(form)
}

func (s *Server) addMovieLocked(form model.MovieFormData) model.Movie {
	movie := model.Movie{
		ID:              s.nextMovie,
		Title:           form.Title,
		Description:     form.Description,
		DurationMinutes: form.DurationMinutes,
		Price:           form.Price,
		Showtime:        form.Showtime,
		TotalSeats:      form.TotalSeats,
		AvailableSeats:  form.TotalSeats,
	}
	s.nextMovie++
	s.movies[movie.ID] = &movie
	return movie
}

func (s *Server) findAccount(username string) *account {
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.user.Username, username) {
			return acc
		}
	}
	return nil
}

func (s *Server) sortedMovies() []model.Movie {
	ids := maps.Keys(s.movies)
	slices.Sort(ids)
	out := make([]model.Movie, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.movies[id])
	}
	return out
}

func (s *Server) sortedBookings(keep func(model.Booking) bool) []model.Booking {
	ids := maps.Keys(s.bookings)
	slices.Sort(ids)
	out := make([]model.Booking, 0, len(ids))
	for _, id := range ids {
		if b := *s.bookings[id]; keep(b) {
			out = append(out, b)
		}
	}
	return out
}

type claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

func (s *Server) issueToken(user model.User) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (*claims, error) {
	parsed := &claims{}
	token, err := jwt.ParseWithClaims(raw, parsed, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return parsed, nil
}

type ctxKey struct{}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		c, err := s.parseToken(strings.TrimSpace(raw))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		id, err := strconv.Atoi(c.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		s.mu.Lock()
		acc, found := s.accounts[id]
		s.mu.Unlock()
		if !found {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, acc.user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !currentUser(r).IsAdmin {
			writeError(w, http.StatusForbidden, "Admin privileges required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) model.User {
	user, _ := r.Context().Value(ctxKey{}).(model.User)
	return user
}
