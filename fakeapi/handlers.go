package fakeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"movix-cli/model"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return
	}
	creds := model.LoginCredentials{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
	}
	if err := model.ValidateForm(creds); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	acc := s.findAccount(creds.Username)
	s.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	s.writeSession(w, http.StatusOK, "Login successful", acc.user)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds model.RegisterCredentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if err := model.ValidateForm(creds); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	user, err := s.addUserLocked(creds.Username, creds.Password, creds.IsAdmin)
	s.mu.Unlock()
	if errors.Is(err, errUsernameTaken) {
		writeError(w, http.StatusBadRequest, "Username already registered")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not create user")
		return
	}
	s.writeSession(w, http.StatusCreated, "User registered successfully", user)
}

func (s *Server) writeSession(w http.ResponseWriter, status int, message string, user model.User) {
	token, err := s.issueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, status, model.AuthResponse{
		Message:     message,
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	})
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	movies := s.sortedMovies()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, movies)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	movie, found := s.movies[id]
	var out model.Movie
	if found {
		out = *movie
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddMovie(w http.ResponseWriter, r *http.Request) {
	var form model.MovieFormData
	if !decodeBody(w, r, &form) {
		return
	}
	if err := model.ValidateForm(form); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s.AddMovie(form))
}

// handleUpdateMovie never touches the seat counters.
func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var edit model.MovieEdit
	if !decodeBody(w, r, &edit) {
		return
	}
	if err := model.ValidateForm(edit); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mu.Lock()
	movie, found := s.movies[id]
	var out model.Movie
	if found {
		movie.Title = edit.Title
		movie.Description = edit.Description
		movie.DurationMinutes = edit.DurationMinutes
		movie.Price = edit.Price
		movie.Showtime = edit.Showtime
		for _, b := range s.bookings {
			if b.MovieID == id {
				b.MovieTitle = movie.Title
				b.Showtime = movie.Showtime
			}
		}
		out = *movie
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	_, found := s.movies[id]
	if found {
		delete(s.movies, id)
		for bookingID, b := range s.bookings {
			if b.MovieID == id {
				delete(s.bookings, bookingID)
			}
		}
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	s.mu.Lock()
	bookings := s.sortedBookings(func(b model.Booking) bool { return b.UserID == user.ID })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleAllBookings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	bookings := s.sortedBookings(func(model.Booking) bool { return true })
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, bookings)
}

func (s *Server) handleBook(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(w, r)
	if !ok {
		return
	}
	var form model.BookingFormData
	if !decodeBody(w, r, &form) {
		return
	}
	if err := model.ValidateForm(form); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	user := currentUser(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	movie, found := s.movies[movieID]
	if !found {
		writeError(w, http.StatusNotFound, "Movie not found")
		return
	}
	if movie.AvailableSeats < form.NumSeats {
		writeError(w, http.StatusBadRequest, "Sold out")
		return
	}
	movie.AvailableSeats -= form.NumSeats
	booking := model.Booking{
		ID:         s.nextBook,
		UserID:     user.ID,
		UserName:   user.Username,
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		Showtime:   movie.Showtime,
		NumSeats:   form.NumSeats,
	}
	s.nextBook++
	s.bookings[booking.ID] = &booking
	writeJSON(w, http.StatusCreated, booking)
}

// handleCancel drops every booking the caller holds for the movie and puts
// the seats back.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(w, r)
	if !ok {
		return
	}
	user := currentUser(r)

	s.mu.Lock()
	removed := 0
	for id, b := range s.bookings {
		if b.MovieID != movieID || b.UserID != user.ID {
			continue
		}
		if movie, found := s.movies[movieID]; found {
			movie.AvailableSeats = min(movie.TotalSeats, movie.AvailableSeats+b.NumSeats)
		}
		delete(s.bookings, id)
		removed++
	}
	s.mu.Unlock()
	if removed == 0 {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Message: message})
}
