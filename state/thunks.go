package state

import (
	"context"

	"movix-cli/model"
	"movix-cli/service"
	"movix-cli/store"
)

// Thunk is one remote operation: the action to apply when it starts and the
// request that produces its terminal (fulfilled or rejected) action.
// Run does not touch the Store, so it can execute off the UI loop.
type Thunk struct {
	Pending Action
	Run     func(ctx context.Context) Action
}

// Login authenticates and, on success, persists the token and user.
func (s *Store) Login(creds model.LoginCredentials) Thunk {
	return Thunk{
		Pending: Login{Lifecycle: pending()},
		Run: func(ctx context.Context) Action {
			if err := model.ValidateForm(creds); err != nil {
				return Login{Lifecycle: rejected(service.Invalid(err))}
			}
			r := service.Capture(s.services.Auth.Login(ctx, creds))
			if !r.OK() {
				return Login{Lifecycle: rejected(r.Err)}
			}
			s.persistSession(r.Value)
			return Login{Lifecycle: fulfilled(), Response: r.Value}
		},
	}
}

// Register creates an account and starts a session with the returned token.
func (s *Store) Register(creds model.RegisterCredentials) Thunk {
	return Thunk{
		Pending: Register{Lifecycle: pending()},
		Run: func(ctx context.Context) Action {
			if err := model.ValidateForm(creds); err != nil {
				return Register{Lifecycle: rejected(service.Invalid(err))}
			}
			r := service.Capture(s.services.Auth.Register(ctx, creds))
			if !r.OK() {
				return Register{Lifecycle: rejected(r.Err)}
			}
			s.persistSession(r.Value)
			return Register{Lifecycle: fulfilled(), Response: r.Value}
		},
	}
}

// Logout clears the persisted session. It makes no request.
func (s *Store) Logout() Thunk {
	return Thunk{
		Pending: Logout{Lifecycle: pending()},
		Run: func(context.Context) Action {
			if err := store.ClearSession(s.storage); err != nil {
				return Logout{Lifecycle: rejected(&service.Failure{Kind: service.KindStorage, Err: err})}
			}
			return Logout{Lifecycle: fulfilled()}
		},
	}
}

func (s *Store) persistSession(res model.AuthResponse) {
	if err := store.SaveSession(s.storage, res.AccessToken, res.User); err != nil {
		s.logger.Warn("could not persist session", "err", err)
	}
}

func (s *Store) FetchMovies() Thunk {
	return Thunk{
		Pending: FetchMovies{Lifecycle: pending()},
		Run: func(ctx context.Context) Action {
			r := service.Capture(s.services.Movies.List(ctx))
			if !r.OK() {
				return FetchMovies{Lifecycle: rejected(r.Err)}
			}
			return FetchMovies{Lifecycle: fulfilled(), Movies: r.Value}
		},
	}
}

func (s *Store) FetchMovie(id int) Thunk {
	return Thunk{
		Pending: FetchMovie{Lifecycle: pending(), ID: id},
		Run: func(ctx context.Context) Action {
			r := service.Capture(s.services.Movies.Get(ctx, id))
			if !r.OK() {
				return FetchMovie{Lifecycle: rejected(r.Err), ID: id}
			}
			return FetchMovie{Lifecycle: fulfilled(), ID: id, Movie: r.Value}
		},
	}
}

func (s *Store) AddMovie(form model.MovieFormData) Thunk {
	return Thunk{
		Pending: AddMovie{Lifecycle: pending()},
		Run: func(ctx context.Context) Action {
			if err := model.ValidateForm(form); err != nil {
				return AddMovie{Lifecycle: rejected(service.Invalid(err))}
			}
			r := service.Capture(s.services.Movies.Add(ctx, form))
			if !r.OK() {
				return AddMovie{Lifecycle: rejected(r.Err)}
			}
			return AddMovie{Lifecycle: fulfilled(), Movie: r.Value}
		},
	}
}

func (s *Store) UpdateMovie(id int, edit model.MovieEdit) Thunk {
	return Thunk{
		Pending: UpdateMovie{Lifecycle: pending(), ID: id},
		Run: func(ctx context.Context) Action {
			if err := model.ValidateForm(edit); err != nil {
				return UpdateMovie{Lifecycle: rejected(service.Invalid(err)), ID: id}
			}
			r := service.Capture(s.services.Movies.Update(ctx, id, edit))
			if !r.OK() {
				return UpdateMovie{Lifecycle: rejected(r.Err), ID: id}
			}
			return UpdateMovie{Lifecycle: fulfilled(), ID: id, Movie: r.Value}
		},
	}
}

func (s *Store) DeleteMovie(id int) Thunk {
	return Thunk{
		Pending: DeleteMovie{Lifecycle: pending(), ID: id},
		Run: func(ctx context.Context) Action {
			if err := s.services.Movies.Delete(ctx, id); err != nil {
				return DeleteMovie{Lifecycle: rejected(service.Classify(err)), ID: id}
			}
			return DeleteMovie{Lifecycle: fulfilled(), ID: id}
		},
	}
}

func (s *Store) FetchUserBookings() Thunk {
	return Thunk{
		Pending: FetchUserBookings{Lifecycle: pending()},
		Run: func(ctx context.Context) Action {
			r := service.Capture(s.services.Bookings.History(ctx))
			if !r.OK() {
				return FetchUserBookings{Lifecycle: rejected(r.Err)}
			}
			return FetchUserBookings{Lifecycle: fulfilled(), Bookings: r.Value}
		},
	}
}

func (s *Store) FetchAllBookings() Thunk {
	return Thunk{
		Pending: FetchAllBookings{Lifecycle: pending()},
		Run: func(ctx context.Context) Action {
			r := service.Capture(s.services.Bookings.All(ctx))
			if !r.OK() {
				return FetchAllBookings{Lifecycle: rejected(r.Err)}
			}
			return FetchAllBookings{Lifecycle: fulfilled(), Bookings: r.Value}
		},
	}
}

// BookMovie books form.NumSeats seats (1 to 10) for movieID.
func (s *Store) BookMovie(movieID int, form model.BookingFormData) Thunk {
	return Thunk{
		Pending: BookMovie{Lifecycle: pending(), MovieID: movieID},
		Run: func(ctx context.Context) Action {
			if err := model.ValidateForm(form); err != nil {
				return BookMovie{Lifecycle: rejected(service.Invalid(err)), MovieID: movieID}
			}
			r := service.Capture(s.services.Bookings.Book(ctx, movieID, form))
			if !r.OK() {
				return BookMovie{Lifecycle: rejected(r.Err), MovieID: movieID}
			}
			return BookMovie{Lifecycle: fulfilled(), MovieID: movieID, Booking: r.Value}
		},
	}
}

// CancelBooking cancels by movie id; on success every booking for that movie
// leaves the user's collection.
func (s *Store) CancelBooking(movieID int) Thunk {
	return Thunk{
		Pending: CancelBooking{Lifecycle: pending(), MovieID: movieID},
		Run: func(ctx context.Context) Action {
			if err := s.services.Bookings.Cancel(ctx, movieID); err != nil {
				return CancelBooking{Lifecycle: rejected(service.Classify(err)), MovieID: movieID}
			}
			return CancelBooking{Lifecycle: fulfilled(), MovieID: movieID}
		},
	}
}
