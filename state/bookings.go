package state

import "movix-cli/model"

const (
	msgFetchBookingsFailed    = "Failed to fetch bookings"
	msgFetchAllBookingsFailed = "Failed to fetch all bookings"
	msgBookMovieFailed        = "Failed to book movie"
	msgCancelBookingFailed    = "Failed to cancel booking"

	MsgMovieBooked      = "Movie booked successfully!"
	MsgBookingCancelled = "Booking cancelled successfully!"
)

type BookingState struct {
	Bookings    []model.Booking
	AllBookings []model.Booking
	Loading     bool
	Error       string
	Success     string
}

// ReduceBookings applies a to the booking slice. Actions of other slices are ignored.
func ReduceBookings(s BookingState, a Action) BookingState {
	switch a := a.(type) {
	case FetchUserBookings:
		s = bookingLifecycle(s, a.Lifecycle, msgFetchBookingsFailed, false)
		if a.Phase == Fulfilled {
			s.Bookings = cloneBookings(a.Bookings)
		}
	case FetchAllBookings:
		s = bookingLifecycle(s, a.Lifecycle, msgFetchAllBookingsFailed, false)
		if a.Phase == Fulfilled {
			s.AllBookings = cloneBookings(a.Bookings)
		}
	case BookMovie:
		s = bookingLifecycle(s, a.Lifecycle, msgBookMovieFailed, true)
		if a.Phase == Fulfilled {
			bookings := make([]model.Booking, 0, len(s.Bookings)+1)
			s.Bookings = append(append(bookings, s.Bookings...), a.Booking)
			s.Success = MsgMovieBooked
		}
	case CancelBooking:
		s = bookingLifecycle(s, a.Lifecycle, msgCancelBookingFailed, true)
		if a.Phase == Fulfilled {
			kept := make([]model.Booking, 0, len(s.Bookings))
			for _, booking := range s.Bookings {
				if booking.MovieID != a.MovieID {
					kept = append(kept, booking)
				}
			}
			s.Bookings = kept
			s.Success = MsgBookingCancelled
		}
	case ClearBookingError:
		s.Error = ""
	case ClearBookingSuccess:
		s.Success = ""
	}
	return s
}

// bookingLifecycle applies the shared loading/error transitions. Mutations
// also clear the previous success message when they start.
func bookingLifecycle(s BookingState, l Lifecycle, fallback string, mutation bool) BookingState {
	switch l.Phase {
	case Pending:
		s.Loading = true
		s.Error = ""
		if mutation {
			s.Success = ""
		}
	case Fulfilled:
		s.Loading = false
	case Rejected:
		s.Loading = false
		s.Error = l.Failure.MessageOr(fallback)
	}
	return s
}

func cloneBookings(bookings []model.Booking) []model.Booking {
	out := make([]model.Booking, len(bookings))
	copy(out, bookings)
	return out
}
