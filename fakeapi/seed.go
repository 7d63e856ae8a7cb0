package fakeapi

import (
	"time"

	"movix-cli/model"
)

const (
	SeedAdminUser     = "admin"
	SeedAdminPassword = "admin123"
	SeedMemberUser    = "guest"
	SeedMemberPass    = "guest123"
)

// Seed adds one admin, one member and a few upcoming screenings.
func (s *Server) Seed() error {
	if _, err := s.AddUser(SeedAdminUser, SeedAdminPassword, true); err != nil {
		return err
	}
	if _, err := s.AddUser(SeedMemberUser, SeedMemberPass, false); err != nil {
		return err
	}

	day := s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	s.AddMovie(model.MovieFormData{
		Title:           "The Grand Budapest Hotel",
		Description:     "A concierge and his lobby boy are framed for murder.",
		DurationMinutes: 99,
		Price:           9.5,
		Showtime:        model.NewTimestamp(day.Add(19 * time.Hour)),
		TotalSeats:      80,
	})
	s.AddMovie(model.MovieFormData{
		Title:           "Spirited Away",
		Description:     "A girl wanders into a world of spirits.",
		DurationMinutes: 125,
		Price:           8,
		Showtime:        model.NewTimestamp(day.Add(17*time.Hour + 30*time.Minute)),
		TotalSeats:      60,
	})
	s.AddMovie(model.MovieFormData{
		Title:           "Heat",
		Description:     "A detective hunts a crew of professional thieves.",
		DurationMinutes: 170,
		Price:           11,
		Showtime:        model.NewTimestamp(day.Add(45*time.Hour + 15*time.Minute)),
		TotalSeats:      4,
	})
	return nil
}
