package model

import "github.com/jinzhu/copier"

type Movie struct {
	ID              int       `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           float64   `json:"price"`
	Showtime        Timestamp `json:"showtime"`
	TotalSeats      int       `json:"total_seats"`
	AvailableSeats  int       `json:"available_seats"`
}

// Valid reports whether the seat counters are consistent.
func (m Movie) Valid() bool {
	return m.AvailableSeats >= 0 && m.AvailableSeats <= m.TotalSeats
}

// MovieFormData is the creation form. TotalSeats can only be chosen here.
type MovieFormData struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	Price           float64   `json:"price" validate:"min=0"`
	Showtime        Timestamp `json:"showtime" validate:"required"`
	TotalSeats      int       `json:"total_seats" validate:"required,min=1"`
}

// MovieEdit is the update form. It carries no seat total, so an update can
// never change the capacity chosen at creation.
type MovieEdit struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
	Price           float64   `json:"price" validate:"min=0"`
	Showtime        Timestamp `json:"showtime" validate:"required"`
}

// MovieEditFromMovie prefills the edit form with the movie's current values.
func MovieEditFromMovie(movie Movie) (MovieEdit, error) {
	var edit MovieEdit
	if err := copier.Copy(&edit, &movie); err != nil {
		return MovieEdit{}, err
	}
	return edit, nil
}
