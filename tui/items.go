package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"movix-cli/model"
)

type movieItem struct {
	movie model.Movie
}

func (m movieItem) Title() string {
	return m.movie.Title
}

func (m movieItem) Description() string {
	parts := []string{
		m.movie.Showtime.Display(),
		model.FormatDuration(m.movie.DurationMinutes),
		model.FormatPrice(m.movie.Price),
	}
	if m.movie.AvailableSeats == 0 {
		parts = append(parts, "Sold out")
	} else {
		parts = append(parts, m.movie.SeatsLabel()+" seats")
	}
	return strings.Join(parts, " • ")
}

func (m movieItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{m.movie.Title, m.movie.Description}, " "))
}

type bookingItem struct {
	booking  model.Booking
	showUser bool
}

func (b bookingItem) Title() string {
	if b.booking.MovieTitle == "" {
		return fmt.Sprintf("Movie #%d", b.booking.MovieID)
	}
	return b.booking.MovieTitle
}

func (b bookingItem) Description() string {
	seats := "seats"
	if b.booking.NumSeats == 1 {
		seats = "seat"
	}
	parts := []string{
		b.booking.Showtime.Display(),
		fmt.Sprintf("%d %s", b.booking.NumSeats, seats),
		fmt.Sprintf("booking #%d", b.booking.ID),
	}
	if b.showUser {
		parts = append(parts, "by "+b.booking.UserName)
	}
	return strings.Join(parts, " • ")
}

func (b bookingItem) FilterValue() string {
	return strings.ToLower(strings.Join([]string{b.booking.MovieTitle, b.booking.UserName}, " "))
}

func buildMovieItems(movies []model.Movie) []list.Item {
	items := make([]list.Item, 0, len(movies))
	for _, movie := range movies {
		items = append(items, movieItem{movie: movie})
	}
	return items
}

func buildBookingItems(bookings []model.Booking, showUser bool) []list.Item {
	items := make([]list.Item, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, bookingItem{booking: booking, showUser: showUser})
	}
	return items
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}
