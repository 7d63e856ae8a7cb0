package model

const (
	MinSeatsPerBooking = 1
	MaxSeatsPerBooking = 10
)

type Booking struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	UserName   string    `json:"user_name"`
	MovieID    int       `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	Showtime   Timestamp `json:"showtime"`
	NumSeats   int       `json:"num_seats"`
}

type BookingFormData struct {
	NumSeats int `json:"num_seats" validate:"min=1,max=10"`
}
