package state

import "movix-cli/model"

const (
	msgFetchMoviesFailed = "Failed to fetch movies"
	msgFetchMovieFailed  = "Failed to fetch movie"
	msgAddMovieFailed    = "Failed to add movie"
	msgUpdateMovieFailed = "Failed to update movie"
	msgDeleteMovieFailed = "Failed to delete movie"
)

type MovieState struct {
	Movies       []model.Movie
	CurrentMovie *model.Movie
	Loading      bool
	Error        string
}

// ReduceMovies applies a to the movie slice. Actions of other slices are ignored.
func ReduceMovies(s MovieState, a Action) MovieState {
	switch a := a.(type) {
	case FetchMovies:
		s = movieLifecycle(s, a.Lifecycle, msgFetchMoviesFailed)
		if a.Phase == Fulfilled {
			s.Movies = cloneMovies(a.Movies)
		}
	case FetchMovie:
		s = movieLifecycle(s, a.Lifecycle, msgFetchMovieFailed)
		if a.Phase == Fulfilled {
			movie := a.Movie
			s.CurrentMovie = &movie
		}
	case AddMovie:
		s = movieLifecycle(s, a.Lifecycle, msgAddMovieFailed)
		if a.Phase == Fulfilled {
			movies := make([]model.Movie, 0, len(s.Movies)+1)
			s.Movies = append(append(movies, s.Movies...), a.Movie)
		}
	case UpdateMovie:
		s = movieLifecycle(s, a.Lifecycle, msgUpdateMovieFailed)
		if a.Phase == Fulfilled {
			movies := cloneMovies(s.Movies)
			for i := range movies {
				if movies[i].ID == a.Movie.ID {
					movies[i] = a.Movie
					break
				}
			}
			s.Movies = movies
			if s.CurrentMovie != nil && s.CurrentMovie.ID == a.Movie.ID {
				movie := a.Movie
				s.CurrentMovie = &movie
			}
		}
	case DeleteMovie:
		s = movieLifecycle(s, a.Lifecycle, msgDeleteMovieFailed)
		if a.Phase == Fulfilled {
			movies := make([]model.Movie, 0, len(s.Movies))
			for _, movie := range s.Movies {
				if movie.ID != a.ID {
					movies = append(movies, movie)
				}
			}
			s.Movies = movies
			if s.CurrentMovie != nil && s.CurrentMovie.ID == a.ID {
				s.CurrentMovie = nil
			}
		}
	case ClearMovieError:
		s.Error = ""
	case ClearCurrentMovie:
		s.CurrentMovie = nil
	}
	return s
}

func movieLifecycle(s MovieState, l Lifecycle, fallback string) MovieState {
	switch l.Phase {
	case Pending:
		s.Loading = true
		s.Error = ""
	case Fulfilled:
		s.Loading = false
	case Rejected:
		s.Loading = false
		s.Error = l.Failure.MessageOr(fallback)
	}
	return s
}

func cloneMovies(movies []model.Movie) []model.Movie {
	out := make([]model.Movie, len(movies))
	copy(out, movies)
	return out
}
