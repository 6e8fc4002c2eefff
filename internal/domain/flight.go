package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type FlightStatus string

const (
	FlightStatusScheduled FlightStatus = "SCHEDULED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusCompleted FlightStatus = "COMPLETED"
)

type Flight struct {
	ID             int64
	FlightNumber   string
	AirlineID      int64
	Airline        *Airline
	FromLocation   string
	ToLocation     string
	DepartureTime  time.Time
	ArrivalTime    time.Time
	TotalSeats     int
	AvailableSeats int
	BasePrice      decimal.Decimal
	Status         FlightStatus
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Bookable reports whether new bookings may be taken on the flight.
func (f *Flight) Bookable() bool {
	return f.IsActive && f.Status == FlightStatusScheduled
}

// Duration renders the scheduled block time as "Xh Ym".
func (f *Flight) Duration() string {
	d := f.ArrivalTime.Sub(f.DepartureTime)
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func (f *Flight) AirlineName() string {
	if f.Airline == nil {
		return ""
	}
	return f.Airline.Name
}

func (f *Flight) AirlineCode() string {
	if f.Airline == nil {
		return ""
	}
	return f.Airline.Code
}
