package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"movix-cli/model"
)

func newBookingsCmd(o *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Show your booking history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			if err := a.requireSession(); err != nil {
				return err
			}
			if all {
				if err := a.run(cmd.Context(), a.store.FetchAllBookings(), a.bookingError); err != nil {
					return err
				}
				renderBookings(cmd.OutOrStdout(), a.store.Bookings().AllBookings, true)
				return nil
			}
			if err := a.run(cmd.Context(), a.store.FetchUserBookings(), a.bookingError); err != nil {
				return err
			}
			renderBookings(cmd.OutOrStdout(), a.store.Bookings().Bookings, false)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every booking (admin only)")
	return cmd
}

func newBookCmd(o *rootOptions) *cobra.Command {
	var seats int
	cmd := &cobra.Command{
		Use:   "book <movie-id>",
		Short: "Book seats for a screening",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.run(cmd.Context(), a.store.BookMovie(id, model.BookingFormData{NumSeats: seats}), a.bookingError); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.store.Bookings().Success)
			return nil
		},
	}
	cmd.Flags().IntVarP(&seats, "seats", "n", model.MinSeatsPerBooking,
		fmt.Sprintf("number of seats (%d-%d)", model.MinSeatsPerBooking, model.MaxSeatsPerBooking))
	return cmd
}

func newCancelCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <movie-id>",
		Short: "Cancel your bookings for a screening",
		Long:  `Cancel removes every booking you hold for the given movie.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			if err := a.requireSession(); err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.run(cmd.Context(), a.store.CancelBooking(id), a.bookingError); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.store.Bookings().Success)
			return nil
		},
	}
}

func renderBookings(out io.Writer, bookings []model.Booking, withUser bool) {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "No bookings found.")
		return
	}
	header := table.Row{"Booking", "Movie ID", "Movie", "Showtime", "Seats"}
	if withUser {
		header = append(header, "User")
	}

	rowConfigAutoMerge := table.RowConfig{AutoMerge: true}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(header, rowConfigAutoMerge)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, AutoMerge: true, WidthMax: 32},
		{Number: 5, Align: text.AlignRight},
	})
	for _, b := range bookings {
		row := table.Row{b.ID, b.MovieID, b.MovieTitle, b.Showtime.Display(), b.NumSeats}
		if withUser {
			row = append(row, b.UserName)
		}
		t.AppendRow(row, rowConfigAutoMerge)
	}
	t.Render()
}
