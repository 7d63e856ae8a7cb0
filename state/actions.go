// Package state holds the client's application state: one slice per domain
// (auth, movies, bookings), the pure reducers that update them, and the
// thunks that drive each remote operation through its request lifecycle.
package state

import (
	"strings"

	"movix-cli/model"
	"movix-cli/service"
)

// Phase is the stage of a remote operation's request lifecycle.
type Phase int

const (
	Pending Phase = iota + 1
	Fulfilled
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Pending:
		return "pending"
	case Fulfilled:
		return "fulfilled"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Action is a message applied to the state by a reducer.
type Action interface {
	Type() string
}

// Lifecycle is embedded by every action that belongs to a remote operation.
// Failure is set only in the Rejected phase.
type Lifecycle struct {
	Phase   Phase
	Failure *service.Failure
}

// Status exposes the lifecycle of an operation action.
func (l Lifecycle) Status() Lifecycle {
	return l
}

// LifecycleAction is an Action that carries a request lifecycle.
type LifecycleAction interface {
	Action
	Status() Lifecycle
}

func pending() Lifecycle {
	return Lifecycle{Phase: Pending}
}

func fulfilled() Lifecycle {
	return Lifecycle{Phase: Fulfilled}
}

func rejected(failure *service.Failure) Lifecycle {
	return Lifecycle{Phase: Rejected, Failure: failure}
}

const (
	sliceAuth     = "auth"
	sliceMovies   = "movies"
	sliceBookings = "bookings"
)

func sliceOf(a Action) string {
	kind, _, _ := strings.Cut(a.Type(), "/")
	return kind
}

// Auth actions.

type Login struct {
	Lifecycle
	Response model.AuthResponse
}

type Register struct {
	Lifecycle
	Response model.AuthResponse
}

type Logout struct {
	Lifecycle
}

type ClearAuthError struct{}

func (Login) Type() string          { return "auth/login" }
func (Register) Type() string       { return "auth/register" }
func (Logout) Type() string         { return "auth/logout" }
func (ClearAuthError) Type() string { return "auth/clearError" }

// Movie actions.

type FetchMovies struct {
	Lifecycle
	Movies []model.Movie
}

type FetchMovie struct {
	Lifecycle
	ID    int
	Movie model.Movie
}

type AddMovie struct {
	Lifecycle
	Movie model.Movie
}

type UpdateMovie struct {
	Lifecycle
	ID    int
	Movie model.Movie
}

type DeleteMovie struct {
	Lifecycle
	ID int
}

type ClearMovieError struct{}

type ClearCurrentMovie struct{}

func (FetchMovies) Type() string       { return "movies/fetchAll" }
func (FetchMovie) Type() string        { return "movies/fetchOne" }
func (AddMovie) Type() string          { return "movies/add" }
func (UpdateMovie) Type() string       { return "movies/update" }
func (DeleteMovie) Type() string       { return "movies/delete" }
func (ClearMovieError) Type() string   { return "movies/clearError" }
func (ClearCurrentMovie) Type() string { return "movies/clearCurrent" }

// Booking actions.

type FetchUserBookings struct {
	Lifecycle
	Bookings []model.Booking
}

type FetchAllBookings struct {
	Lifecycle
	Bookings []model.Booking
}

type BookMovie struct {
	Lifecycle
	MovieID int
	Booking model.Booking
}

// CancelBooking removes the caller's bookings for MovieID.
type CancelBooking struct {
	Lifecycle
	MovieID int
}

type ClearBookingError struct{}

type ClearBookingSuccess struct{}

func (FetchUserBookings) Type() string   { return "bookings/fetchUserBookings" }
func (FetchAllBookings) Type() string    { return "bookings/fetchAllBookings" }
func (BookMovie) Type() string           { return "bookings/bookMovie" }
func (CancelBooking) Type() string       { return "bookings/cancelBooking" }
func (ClearBookingError) Type() string   { return "bookings/clearError" }
func (ClearBookingSuccess) Type() string { return "bookings/clearSuccess" }
