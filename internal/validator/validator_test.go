package validator

import (
	"testing"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPassenger struct {
	Name string `json:"name" validate:"required,min=2,max=100,person_name"`
	Seat string `json:"seatNumber" validate:"required,seat_label"`
}

type testRequest struct {
	FlightNumber string          `json:"flightNumber" validate:"required,flight_number"`
	AirlineCode  string          `json:"airlineCode" validate:"required,airline_code"`
	Contact      string          `json:"contactNumber" validate:"omitempty,contact_number"`
	Price        decimal.Decimal `json:"basePrice" validate:"required,gte=0.01,lte=1000000"`
	Passengers   []testPassenger `json:"passengers" validate:"dive"`
}

func validRequest() testRequest {
	return testRequest{
		FlightNumber: "AI2024",
		AirlineCode:  "AI",
		Price:        decimal.RequireFromString("4500.50"),
		Passengers:   []testPassenger{{Name: "Asha Rao", Seat: "12A"}},
	}
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(r *testRequest)
		details []string
	}{
		{name: "valid", mutate: func(r *testRequest) {}},
		{
			name:    "lowercase flight number",
			mutate:  func(r *testRequest) { r.FlightNumber = "ai2024" },
			details: []string{"flightNumber: must be 4-10 uppercase letters or digits"},
		},
		{
			name:    "short contact number",
			mutate:  func(r *testRequest) { r.Contact = "12345" },
			details: []string{"contactNumber: must be 10 digits"},
		},
		{
			name:    "price below minimum",
			mutate:  func(r *testRequest) { r.Price = decimal.RequireFromString("0.001") },
			details: []string{"basePrice: must be at least 0.01"},
		},
		{
			name:    "price above maximum",
			mutate:  func(r *testRequest) { r.Price = decimal.NewFromInt(1000001) },
			details: []string{"basePrice: must be at most 1000000"},
		},
		{
			name: "nested passenger fields",
			mutate: func(r *testRequest) {
				r.Passengers = append(r.Passengers, testPassenger{Name: "R2D2", Seat: "12a"})
			},
			details: []string{
				"passengers[1].name: must contain only letters and spaces",
				"passengers[1].seatNumber: must be 2-5 uppercase letters or digits (e.g. 12A)",
			},
		},
		{
			name:    "missing airline code",
			mutate:  func(r *testRequest) { r.AirlineCode = "" },
			details: []string{"airlineCode: is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Struct(req)
			if tt.details == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, domain.KindValidation, de.Kind)
			assert.Equal(t, "Validation failed", de.Message)
			assert.ElementsMatch(t, tt.details, de.Details)
		})
	}
}
