package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"movix-cli/model"
)

// BookingService maps the booking endpoints for users and admins.
type BookingService struct {
	client *Client
}

func NewBookingService(client *Client) *BookingService {
	return &BookingService{client: client}
}

// History returns the bookings of the logged in user.
func (s *BookingService) History(ctx context.Context) ([]model.Booking, error) {
	return s.list(ctx, "/movies/history")
}

// All returns every booking in the system (admin only).
func (s *BookingService) All(ctx context.Context) ([]model.Booking, error) {
	return s.list(ctx, "/admin/bookings/")
}

func (s *BookingService) Book(ctx context.Context, movieID int, form model.BookingFormData) (model.Booking, error) {
	if movieID <= 0 {
		return model.Booking{}, errors.New("movie id is required")
	}
	var booking model.Booking
	if err := s.client.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/movies/%d/book/", movieID), form, &booking); err != nil {
		return model.Booking{}, err
	}
	return booking, nil
}

// Cancel cancels the caller's booking for the given movie.
func (s *BookingService) Cancel(ctx context.Context, movieID int) error {
	if movieID <= 0 {
		return errors.New("movie id is required")
	}
	return s.client.delete(ctx, fmt.Sprintf("/movies/%d/cancel/", movieID))
}

func (s *BookingService) list(ctx context.Context, path string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.client.getJSON(ctx, path, &bookings); err != nil {
		return nil, err
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	return bookings, nil
}
