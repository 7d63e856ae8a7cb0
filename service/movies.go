package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"movix-cli/model"
)

var errSeatCounts = errors.New("available seats outside 0..total_seats")

// MovieService maps the admin movie endpoints. Movies whose seat counters
// are inconsistent are reported as decode errors.
type MovieService struct {
	client *Client
}

func NewMovieService(client *Client) *MovieService {
	return &MovieService{client: client}
}

func (s *MovieService) List(ctx context.Context) ([]model.Movie, error) {
	var movies []model.Movie
	if err := s.client.getJSON(ctx, "/admin/movies/", &movies); err != nil {
		return nil, err
	}
	for _, movie := range movies {
		if !movie.Valid() {
			return nil, &DecodeError{Endpoint: "/admin/movies/", Err: fmt.Errorf("movie %d: %w", movie.ID, errSeatCounts)}
		}
	}
	if movies == nil {
		movies = []model.Movie{}
	}
	return movies, nil
}

func (s *MovieService) Get(ctx context.Context, id int) (model.Movie, error) {
	if id <= 0 {
		return model.Movie{}, errors.New("movie id is required")
	}
	endpoint := fmt.Sprintf("/admin/movies/%d/", id)
	var movie model.Movie
	if err := s.client.getJSON(ctx, endpoint, &movie); err != nil {
		return model.Movie{}, err
	}
	if !movie.Valid() {
		return model.Movie{}, &DecodeError{Endpoint: endpoint, Err: errSeatCounts}
	}
	return movie, nil
}

func (s *MovieService) Add(ctx context.Context, form model.MovieFormData) (model.Movie, error) {
	var movie model.Movie
	if err := s.client.sendJSON(ctx, http.MethodPost, "/admin/movies/", form, &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

func (s *MovieService) Update(ctx context.Context, id int, edit model.MovieEdit) (model.Movie, error) {
	if id <= 0 {
		return model.Movie{}, errors.New("movie id is required")
	}
	var movie model.Movie
	if err := s.client.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/admin/movies/%d/", id), edit, &movie); err != nil {
		return model.Movie{}, err
	}
	return movie, nil
}

func (s *MovieService) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return errors.New("movie id is required")
	}
	return s.client.delete(ctx, fmt.Sprintf("/admin/movies/%d/", id))
}
