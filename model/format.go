package model

import (
	"fmt"
	"strconv"
)

const showtimeLayout = "Mon 02 Jan 2006 15:04"

// Display formats the timestamp in local time for listings; zero shows "-".
func (t Timestamp) Display() string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(showtimeLayout)
}

func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh%02dm", minutes/60, minutes%60)
}

func FormatPrice(price float64) string {
	return "$" + strconv.FormatFloat(price, 'f', 2, 64)
}

// SeatsLabel renders available over total seats.
func (m Movie) SeatsLabel() string {
	return fmt.Sprintf("%d/%d", m.AvailableSeats, m.TotalSeats)
}
