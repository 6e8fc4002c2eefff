package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/flightapp/internal/domain"
	"github.com/Domenick1991/flightapp/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) AddFlightInventory(ctx context.Context, input flights.AddFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(ctx context.Context, input flights.SearchInput) ([]domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

var ist = time.FixedZone("IST", 5*3600+1800)

func sampleFlight() *domain.Flight {
	dep := time.Date(2026, 10, 20, 3, 0, 0, 0, time.UTC)
	return &domain.Flight{
		ID:             3,
		FlightNumber:   "AI2024",
		Airline:        &domain.Airline{ID: 1, Name: "Air India", Code: "AI"},
		FromLocation:   "Delhi",
		ToLocation:     "Mumbai",
		DepartureTime:  dep,
		ArrivalTime:    dep.Add(2*time.Hour + 15*time.Minute),
		TotalSeats:     180,
		AvailableSeats: 178,
		BasePrice:      decimal.RequireFromString("4500.5"),
		Status:         domain.FlightStatusScheduled,
		IsActive:       true,
	}
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, ist)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "flightId", Value: "3"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1.0/flight/3", nil)

	mockService.On("GetByID", c.Request.Context(), int64(3)).Return(sampleFlight(), nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"success": true,
		"message": "Success",
		"data": {
			"flightId": 3,
			"flightNumber": "AI2024",
			"airlineName": "Air India",
			"airlineCode": "AI",
			"fromLocation": "Delhi",
			"toLocation": "Mumbai",
			"departureTime": "2026-10-20T08:30:00",
			"arrivalTime": "2026-10-20T10:45:00",
			"availableSeats": 178,
			"basePrice": 4500.50,
			"duration": "2h 15m"
		}
	}`, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get_NotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, ist)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "flightId", Value: "99"}}
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1.0/flight/99", nil)

	mockService.On("GetByID", c.Request.Context(), int64(99)).Return(nil, domain.NotFound("Flight", "id", 99))

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "RESOURCE_NOT_FOUND", response.ErrorCode)
	assert.Equal(t, "Flight not found with id: 99", response.Message)
	assert.Equal(t, []string{"Flight not found with id: 99"}, response.Errors)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_addInventory(t *testing.T) {
	mockService := &MockFlightUseCase{}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFlightHandler(mockService, ist).Register(router.Group("/api/v1.0/flight"))

	body := `{
		"flightNumber": "AI2024",
		"airlineCode": "AI",
		"fromLocation": "Delhi",
		"toLocation": "Mumbai",
		"departureTime": "2026-10-20T08:30:00",
		"arrivalTime": "2026-10-20T10:45:00",
		"totalSeats": 180,
		"basePrice": 4500.50
	}`
	expected := flights.AddFlightInput{
		FlightNumber:  "AI2024",
		AirlineCode:   "AI",
		FromLocation:  "Delhi",
		ToLocation:    "Mumbai",
		DepartureTime: "2026-10-20T08:30:00",
		ArrivalTime:   "2026-10-20T10:45:00",
		TotalSeats:    180,
	}
	mockService.On("AddFlightInventory", mock.Anything, mock.MatchedBy(func(in flights.AddFlightInput) bool {
		price := in.BasePrice
		in.BasePrice = decimal.Decimal{}
		return in == expected && price.Equal(decimal.RequireFromString("4500.5"))
	})).Return(sampleFlight(), nil).Once()
	mockService.On("AddFlightInventory", mock.Anything, mock.Anything).
		Return(nil, domain.Duplicate("Flight", "flight number", "AI2024")).Once()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1.0/flight/airline/inventory/add", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Flight inventory added successfully"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1.0/flight/airline/inventory/add", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Flight already exists with flight number: AI2024")

	mockService.AssertExpectations(t)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFlightHandler(mockService, ist).Register(router.Group("/api/v1.0/flight"))

	query := flights.SearchInput{FromLocation: "Delhi", ToLocation: "Mumbai", TravelDate: "2026-10-20", NumberOfPassengers: 2}
	mockService.On("Search", mock.Anything, query).Return([]domain.Flight{*sampleFlight()}, nil).Once()
	mockService.On("Search", mock.Anything, query).Return([]domain.Flight{}, nil).Once()
	mockService.On("Search", mock.Anything, mock.Anything).
		Return(nil, domain.ValidationError("Validation failed", "numberOfPassengers: must be at most 9")).Once()

	send := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1.0/flight/search", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		return w
	}
	body := `{"fromLocation":"Delhi","toLocation":"Mumbai","travelDate":"2026-10-20","numberOfPassengers":2}`

	w := send(body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Found 1 flight(s) matching your search"`)
	assert.Contains(t, w.Body.String(), `"duration":"2h 15m"`)

	w = send(body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"No flights found matching your search criteria"`)

	w = send(`{"fromLocation":"Delhi","toLocation":"Mumbai","travelDate":"2026-10-20","numberOfPassengers":12}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Validation failed", response.Message)
	assert.Equal(t, []string{"numberOfPassengers: must be at most 9"}, response.Errors)

	mockService.AssertExpectations(t)
}
