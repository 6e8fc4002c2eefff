package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type MealPreference string

const (
	MealVeg    MealPreference = "VEG"
	MealNonVeg MealPreference = "NON_VEG"
	MealNone   MealPreference = "NONE"
)

// Passenger belongs to exactly one booking and is persisted with it.
type Passenger struct {
	ID             int64
	BookingID      int64
	Name           string
	Gender         Gender
	Age            int
	MealPreference MealPreference
	SeatNumber     string
}

type Booking struct {
	ID          int64
	Code        string
	FlightID    int64
	Flight      *Flight
	ContactName string
	Email       string
	SeatCount   int
	TotalAmount decimal.Decimal
	Status      BookingStatus
	Passengers  []Passenger
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SeatNumbers lists the seat labels held by the booking's passengers.
func (b *Booking) SeatNumbers() []string {
	seats := make([]string, 0, len(b.Passengers))
	for _, p := range b.Passengers {
		seats = append(seats, p.SeatNumber)
	}
	return seats
}
