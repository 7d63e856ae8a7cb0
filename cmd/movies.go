package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"movix-cli/model"
)

func newMoviesCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movies [id]",
		Short: "List screenings, or show one by id",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := o.app
			if err := a.requireSession(); err != nil {
				return err
			}
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.run(cmd.Context(), a.store.FetchMovie(id), a.movieError); err != nil {
					return err
				}
				renderMovie(cmd.OutOrStdout(), *a.store.Movies().CurrentMovie)
				return nil
			}
			if err := a.run(cmd.Context(), a.store.FetchMovies(), a.movieError); err != nil {
				return err
			}
			renderMovies(cmd.OutOrStdout(), a.store.Movies().Movies)
			return nil
		},
	}
	return cmd
}

func renderMovies(out io.Writer, movies []model.Movie) {
	if len(movies) == 0 {
		fmt.Fprintln(out, "No movies available.")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"ID", "Title", "Showtime", "Duration", "Price", "Seats"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 32},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	for _, m := range movies {
		t.AppendRow(table.Row{
			m.ID,
			m.Title,
			m.Showtime.Display(),
			model.FormatDuration(m.DurationMinutes),
			model.FormatPrice(m.Price),
			m.SeatsLabel(),
		})
	}
	t.Render()
}

func renderMovie(out io.Writer, m model.Movie) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
	t.AppendRows([]table.Row{
		{"ID", m.ID},
		{"Title", m.Title},
		{"Description", m.Description},
		{"Showtime", m.Showtime.Display()},
		{"Duration", model.FormatDuration(m.DurationMinutes)},
		{"Price", model.FormatPrice(m.Price)},
		{"Available", fmt.Sprintf("%d of %d seats", m.AvailableSeats, m.TotalSeats)},
	})
	t.Style().Options.SeparateRows = true
	t.Render()
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
