package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"movix-cli/config"
	"movix-cli/logging"
	"movix-cli/service"
	"movix-cli/state"
	"movix-cli/store"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg     config.Config
	logger  *log.Logger
	closer  io.Closer
	storage store.Storage
	client  *service.Client
	store   *state.Store
}

func newApp(cfg config.Config, debug bool, version string) (*app, error) {
	logger, closer, err := logging.New(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel, Debug: debug})
	if err != nil {
		return nil, err
	}
	storage, err := store.NewFileStorage(cfg.ConfigDir)
	if err != nil {
		closer.Close()
		return nil, err
	}

	// The bearer token follows the in-memory session, so a login still
	// authenticates requests when the session file cannot be written.
	var st *state.Store
	client := service.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout},
		service.WithTokenSource(func() string {
			if st == nil {
				return store.Token(storage)
			}
			return st.Auth().Token
		}),
		service.WithLogger(logger),
		service.WithUserAgent("movix-cli/"+version),
	)
	st = state.New(storage, state.Services{
		Auth:     service.NewAuthService(client),
		Movies:   service.NewMovieService(client),
		Bookings: service.NewBookingService(client),
	}, logger)
	st.Subscribe(func() { logSnapshot(logger, st) })

	logger.Debug("app ready", "api", client.BaseURL(), "session", storage.Path())
	return &app{cfg: cfg, logger: logger, closer: closer, storage: storage, client: client, store: st}, nil
}

func (a *app) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// run drives thunk to completion and turns a rejected outcome into an error
// carrying the slice's message.
func (a *app) run(ctx context.Context, thunk state.Thunk, sliceError func() string) error {
	result := a.store.Run(ctx, thunk)
	la, ok := result.(state.LifecycleAction)
	if !ok || la.Status().Phase != state.Rejected {
		return nil
	}
	if msg := sliceError(); msg != "" {
		return errors.New(msg)
	}
	if f := la.Status().Failure; f != nil {
		return f
	}
	return fmt.Errorf("%s failed", result.Type())
}

func logSnapshot(logger *log.Logger, st *state.Store) {
	auth, movies, bookings := st.Auth(), st.Movies(), st.Bookings()
	logger.Debug("state",
		"authenticated", auth.IsAuthenticated,
		"movies", len(movies.Movies),
		"bookings", len(bookings.Bookings),
		"loading", auth.Loading || movies.Loading || bookings.Loading,
	)
}

func (a *app) authError() string    { return a.store.Auth().Error }
func (a *app) movieError() string   { return a.store.Movies().Error }
func (a *app) bookingError() string { return a.store.Bookings().Error }

var errNotLoggedIn = errors.New("not logged in; run \"movix-cli login\" first")

func (a *app) requireSession() error {
	if !a.store.Auth().IsAuthenticated {
		return errNotLoggedIn
	}
	return nil
}
