package state

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"movix-cli/logging"
	"movix-cli/model"
	"movix-cli/store"
)

type AuthAPI interface {
	Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error)
	Register(ctx context.Context, creds model.RegisterCredentials) (model.AuthResponse, error)
}

type MovieAPI interface {
	List(ctx context.Context) ([]model.Movie, error)
	Get(ctx context.Context, id int) (model.Movie, error)
	Add(ctx context.Context, form model.MovieFormData) (model.Movie, error)
	Update(ctx context.Context, id int, edit model.MovieEdit) (model.Movie, error)
	Delete(ctx context.Context, id int) error
}

type BookingAPI interface {
	History(ctx context.Context) ([]model.Booking, error)
	All(ctx context.Context) ([]model.Booking, error)
	Book(ctx context.Context, movieID int, form model.BookingFormData) (model.Booking, error)
	Cancel(ctx context.Context, movieID int) error
}

// Services groups the domain services the thunks call.
type Services struct {
	Auth     AuthAPI
	Movies   MovieAPI
	Bookings BookingAPI
}

// Store is the application state container. Each slice is changed only by
// its own reducer, reached through Dispatch.
type Store struct {
	mu       sync.RWMutex
	auth     AuthState
	movies   MovieState
	bookings BookingState

	storage   store.Storage
	services  Services
	logger    *log.Logger
	listeners map[int]func()
	nextID    int
}

// New builds a Store whose session is seeded from storage before returning.
func New(storage store.Storage, services Services, logger *log.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		auth:      Bootstrap(storage, logger),
		storage:   storage,
		services:  services,
		logger:    logger,
		listeners: map[int]func(){},
	}
}

// Bootstrap reads the persisted session. It never fails: unreadable storage
// and corrupt user records both yield an anonymous session. No request is made.
func Bootstrap(storage store.Storage, logger *log.Logger) AuthState {
	if logger == nil {
		logger = logging.Discard()
	}
	token, user, status, err := store.LoadSession(storage)
	if err != nil {
		logger.Warn("session storage unreadable", "err", err)
		return AuthState{}
	}
	if status == store.UserDiscarded {
		logger.Debug("dropped corrupt persisted user")
	}
	return AuthState{
		User:            user,
		Token:           token,
		IsAuthenticated: token != "",
	}
}

func (s *Store) Auth() AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Store) Movies() MovieState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movies
}

func (s *Store) Bookings() BookingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bookings
}

// Subscribe registers fn to run after every dispatch. The returned function
// removes it.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Dispatch routes a to the reducer of the slice it belongs to.
func (s *Store) Dispatch(a Action) {
	switch sliceOf(a) {
	case sliceAuth:
		s.DispatchAuth(a)
	case sliceMovies:
		s.DispatchMovies(a)
	case sliceBookings:
		s.DispatchBookings(a)
	default:
		s.logger.Warn("dropped action of unknown slice", "type", a.Type())
	}
}

func (s *Store) DispatchAuth(a Action) {
	s.apply(a, func() { s.auth = ReduceAuth(s.auth, a) })
}

func (s *Store) DispatchMovies(a Action) {
	s.apply(a, func() { s.movies = ReduceMovies(s.movies, a) })
}

func (s *Store) DispatchBookings(a Action) {
	s.apply(a, func() { s.bookings = ReduceBookings(s.bookings, a) })
}

func (s *Store) apply(a Action, reduce func()) {
	s.logAction(a)

	s.mu.Lock()
	reduce()
	listeners := make([]func(), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (s *Store) logAction(a Action) {
	la, ok := a.(LifecycleAction)
	if !ok {
		s.logger.Debug("dispatch", "type", a.Type())
		return
	}
	status := la.Status()
	if status.Phase == Rejected && status.Failure != nil {
		s.logger.Warn("operation rejected", "type", a.Type(), "kind", status.Failure.Kind, "err", status.Failure)
		return
	}
	s.logger.Debug("dispatch", "type", a.Type(), "phase", status.Phase)
}

// Run drives thunk through its lifecycle synchronously: the pending action is
// applied before the request starts and the terminal action after it ends.
func (s *Store) Run(ctx context.Context, thunk Thunk) Action {
	s.Dispatch(thunk.Pending)
	result := thunk.Run(ctx)
	s.Dispatch(result)
	return result
}
