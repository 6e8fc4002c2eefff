package api

import (
	"encoding/json"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/shopspring/decimal"
)

// localTimeLayout renders wall-clock times in the service zone without an
// offset.
const localTimeLayout = "2006-01-02T15:04:05"

type airlineView struct {
	ID            int64  `json:"id"`
	AirlineName   string `json:"airlineName"`
	AirlineCode   string `json:"airlineCode"`
	ContactNumber string `json:"contactNumber,omitempty"`
	IsActive      bool   `json:"isActive"`
}

type flightView struct {
	FlightID       int64       `json:"flightId"`
	FlightNumber   string      `json:"flightNumber"`
	AirlineName    string      `json:"airlineName"`
	AirlineCode    string      `json:"airlineCode"`
	FromLocation   string      `json:"fromLocation"`
	ToLocation     string      `json:"toLocation"`
	DepartureTime  string      `json:"departureTime"`
	ArrivalTime    string      `json:"arrivalTime"`
	AvailableSeats int         `json:"availableSeats"`
	BasePrice      json.Number `json:"basePrice"`
	Duration       string      `json:"duration"`
}

type bookedFlightView struct {
	FlightID      int64  `json:"flightId"`
	FlightNumber  string `json:"flightNumber"`
	AirlineName   string `json:"airlineName"`
	FromLocation  string `json:"fromLocation"`
	ToLocation    string `json:"toLocation"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
}

type passengerView struct {
	PassengerName  string `json:"passengerName"`
	Gender         string `json:"gender"`
	Age            int    `json:"age"`
	SeatNumber     string `json:"seatNumber"`
	MealPreference string `json:"mealPreference"`
}

type bookingView struct {
	BookingID     int64             `json:"bookingId"`
	PNR           string            `json:"pnr"`
	ContactName   string            `json:"contactName"`
	Email         string            `json:"email"`
	NumberOfSeats int               `json:"numberOfSeats"`
	TotalAmount   json.Number       `json:"totalAmount"`
	BookingStatus string            `json:"bookingStatus"`
	BookingDate   string            `json:"bookingDate"`
	Flight        *bookedFlightView `json:"flight,omitempty"`
	Passengers    []passengerView   `json:"passengers"`
}

type presenter struct {
	loc *time.Location
}

func (p presenter) localTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(p.loc).Format(localTimeLayout)
}

func amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toAirlineView(a *domain.Airline) airlineView {
	return airlineView{
		ID:            a.ID,
		AirlineName:   a.Name,
		AirlineCode:   a.Code,
		ContactNumber: a.ContactNumber,
		IsActive:      a.IsActive,
	}
}

func (p presenter) flight(f *domain.Flight) flightView {
	return flightView{
		FlightID:       f.ID,
		FlightNumber:   f.FlightNumber,
		AirlineName:    f.AirlineName(),
		AirlineCode:    f.AirlineCode(),
		FromLocation:   f.FromLocation,
		ToLocation:     f.ToLocation,
		DepartureTime:  p.localTime(f.DepartureTime),
		ArrivalTime:    p.localTime(f.ArrivalTime),
		AvailableSeats: f.AvailableSeats,
		BasePrice:      amount(f.BasePrice),
		Duration:       f.Duration(),
	}
}

func (p presenter) booking(b *domain.Booking) bookingView {
	view := bookingView{
		BookingID:     b.ID,
		PNR:           b.Code,
		ContactName:   b.ContactName,
		Email:         b.Email,
		NumberOfSeats: b.SeatCount,
		TotalAmount:   amount(b.TotalAmount),
		BookingStatus: string(b.Status),
		BookingDate:   p.localTime(b.CreatedAt),
		Passengers:    make([]passengerView, 0, len(b.Passengers)),
	}
	if f := b.Flight; f != nil {
		view.Flight = &bookedFlightView{
			FlightID:      f.ID,
			FlightNumber:  f.FlightNumber,
			AirlineName:   f.AirlineName(),
			FromLocation:  f.FromLocation,
			ToLocation:    f.ToLocation,
			DepartureTime: p.localTime(f.DepartureTime),
			ArrivalTime:   p.localTime(f.ArrivalTime),
		}
	}
	for _, ps := range b.Passengers {
		view.Passengers = append(view.Passengers, passengerView{
			PassengerName:  ps.Name,
			Gender:         string(ps.Gender),
			Age:            ps.Age,
			SeatNumber:     ps.SeatNumber,
			MealPreference: string(ps.MealPreference),
		})
	}
	return view
}
